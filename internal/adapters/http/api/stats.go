package api

import (
	"net/http"

	"github.com/lumenmap/candles/pkg/logger"
)

type serviceStatsResponse struct {
	TotalCandles int `json:"total_candles"`
}

func (s *Server) handleServiceStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.deps.CandleCount(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "candle count failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not count candles")
		return
	}
	writeJSON(w, http.StatusOK, serviceStatsResponse{TotalCandles: count})
}

func (s *Server) handleStatsParents(w http.ResponseWriter, r *http.Request) {
	counts, err := s.deps.StatsParents(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "parent stats failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not aggregate")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleStatsBreakdown(w http.ResponseWriter, r *http.Request) {
	bd, err := s.deps.StatsBreakdown(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "breakdown stats failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not aggregate")
		return
	}
	writeJSON(w, http.StatusOK, bd)
}

func (s *Server) handleStatsDayparts(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.deps.StatsDayparts(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "daypart stats failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not aggregate")
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleStatsWeekdays(w http.ResponseWriter, r *http.Request) {
	matrix, err := s.deps.StatsWeekdays(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "weekday stats failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not aggregate")
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}
