package emotion

// FallbackColor is used for names outside the taxonomy.
const FallbackColor = "#9e9e9e"

// mainColors is the static palette keyed by main emotion name.
var mainColors = map[string]string{
	"happy":     "#f6c445",
	"sad":       "#5b7fd4",
	"angry":     "#d64545",
	"surprised": "#9b59d0",
	"disgusted": "#5fae5f",
	"fearful":   "#e08a3c",
	"tired":     "#7a8699",
}

// Color returns the display color for any emotion name by resolving it
// to its main emotion first.
func (r *Resolver) Color(name string) string {
	if c, ok := mainColors[r.Parent(name)]; ok {
		return c
	}
	return FallbackColor
}
