package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lumenmap/candles/internal/audit"
	"github.com/lumenmap/candles/internal/domain/model"
)

type logRejectionRequest struct {
	Reason  string  `json:"reason"`
	Emotion string  `json:"emotion"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// handleLogRejection is the best-effort audit intake. It always
// answers 202: the caller's flow must never hinge on this landing, so
// even a malformed body is acknowledged and dropped.
func (s *Server) handleLogRejection(w http.ResponseWriter, r *http.Request) {
	var req logRejectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Reason != "" {
		rej := audit.Rejection{
			Reason:     req.Reason,
			Emotion:    req.Emotion,
			Position:   model.Position{Lat: req.Lat, Lon: req.Lon},
			OccurredAt: time.Now().UTC(),
		}
		// Identity is optional here; a bad token is not worth a 401 on
		// a fire-and-forget endpoint.
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
			if id, err := s.deps.VerifyToken(r.Context(), token); err == nil {
				rej.UserID = id.UserID
			}
		}
		s.deps.ReportRejection(r.Context(), rej)
	}
	w.WriteHeader(http.StatusAccepted)
}
