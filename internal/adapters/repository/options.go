package repository

// Option configures a store at construction.
type Option func(*settings)

type settings struct {
	now      clock
	path     string
	inMemory bool
}

func newSettings(opts []Option) settings {
	s := settings{now: utcNow}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock overrides the creation timestamp source.
func WithClock(now clock) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPath sets the on-disk directory for the badger store.
func WithPath(path string) Option {
	return func(s *settings) {
		s.path = path
	}
}

// WithInMemory runs the badger store without a disk footprint.
func WithInMemory() Option {
	return func(s *settings) {
		s.inMemory = true
	}
}
