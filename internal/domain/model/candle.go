// Package model holds the core candle types shared by the store, the
// aggregation engine, and the HTTP surface.
package model

import (
	"fmt"
	"time"
)

// Web Mercator clamps: latitudes beyond these project off the map.
const (
	MinLat = -85.0511
	MaxLat = 85.0511
	MinLon = -180.0
	MaxLon = 180.0
)

// Position is a point on the world map.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects positions outside the projectable range.
func (p Position) Validate() error {
	if p.Lat < MinLat || p.Lat > MaxLat {
		return fmt.Errorf("%w: lat %v out of [%v, %v]", ErrInvalidPosition, p.Lat, MinLat, MaxLat)
	}
	if p.Lon < MinLon || p.Lon > MaxLon {
		return fmt.Errorf("%w: lon %v out of [%v, %v]", ErrInvalidPosition, p.Lon, MinLon, MaxLon)
	}
	return nil
}

// Clamp snaps the position into the projectable range.
func (p Position) Clamp() Position {
	if p.Lat < MinLat {
		p.Lat = MinLat
	}
	if p.Lat > MaxLat {
		p.Lat = MaxLat
	}
	if p.Lon < MinLon {
		p.Lon = MinLon
	}
	if p.Lon > MaxLon {
		p.Lon = MaxLon
	}
	return p
}

// Candle is one emotion marker on the map. Immutable after creation;
// the owner may delete it, nothing updates it.
type Candle struct {
	// ID is server-assigned.
	ID string `json:"id"`

	Position Position `json:"position"`

	// Emotion is a single taxonomy name at any level.
	Emotion string `json:"emotion"`

	// CreatedAt is the server-assigned UTC instant.
	CreatedAt time.Time `json:"created_at"`

	// ViewerLocal is the creator's wall-clock instant, zero when the
	// client did not report one. Daypart and weekday views prefer it
	// over CreatedAt.
	ViewerLocal time.Time `json:"viewer_local,omitzero"`

	// OwnerID ties the candle to the anonymous session that made it.
	OwnerID string `json:"owner_id"`
}

// Validate checks the fields a client controls.
func (c Candle) Validate() error {
	if c.Emotion == "" {
		return fmt.Errorf("%w: empty emotion", ErrInvalidCandle)
	}
	if err := c.Position.Validate(); err != nil {
		return err
	}
	return nil
}

// ObservedAt returns the instant aggregations should bucket by:
// ViewerLocal when present, otherwise CreatedAt. The zero time means
// neither was set and the record should be skipped.
func (c Candle) ObservedAt() time.Time {
	if !c.ViewerLocal.IsZero() {
		return c.ViewerLocal
	}
	return c.CreatedAt
}
