package seed

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
)

const randomFloatDivisor = 1000000

// Draft is one generated candle awaiting submission.
type Draft struct {
	Emotion     string         `json:"emotion"`
	Position    model.Position `json:"position"`
	ViewerLocal time.Time      `json:"viewer_local"`
}

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// leafEmotions flattens the taxonomy to its leaf names.
func leafEmotions() []string {
	var leaves []string
	for _, main := range emotion.Default().Mains {
		for _, mid := range main.Mids {
			leaves = append(leaves, mid.Leaves...)
		}
	}
	return leaves
}

// generateDrafts produces NumCandles random drafts: a random leaf
// emotion, a position (worldwide or spread around a center), and a
// viewer-local timestamp within the last DaysBack days.
func generateDrafts(cfg *Config) []Draft {
	leaves := leafEmotions()
	drafts := make([]Draft, cfg.NumCandles)
	for i := range drafts {
		drafts[i] = Draft{
			Emotion:     leaves[int(randomFloat()*float64(len(leaves)))%len(leaves)],
			Position:    randomPosition(cfg),
			ViewerLocal: randomTimestamp(cfg.DaysBack),
		}
	}
	return drafts
}

func randomPosition(cfg *Config) model.Position {
	var p model.Position
	if cfg.Worldwide {
		p = model.Position{
			Lat: model.MinLat + randomFloat()*(model.MaxLat-model.MinLat),
			Lon: model.MinLon + randomFloat()*(model.MaxLon-model.MinLon),
		}
	} else {
		p = model.Position{
			Lat: cfg.CenterLat + (randomFloat()*2-1)*cfg.Spread,
			Lon: cfg.CenterLon + (randomFloat()*2-1)*cfg.Spread,
		}
	}
	return p.Clamp()
}

func randomTimestamp(daysBack int) time.Time {
	if daysBack <= 0 {
		daysBack = 1
	}
	window := time.Duration(daysBack) * 24 * time.Hour
	offset := time.Duration(randomFloat() * float64(window))
	return time.Now().UTC().Add(-offset)
}
