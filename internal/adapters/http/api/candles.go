package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumenmap/candles/internal/adapters/repository"
	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/pkg/logger"
	"github.com/lumenmap/candles/pkg/metrics"
)

type createCandleRequest struct {
	Emotion string  `json:"emotion" validate:"required"`
	Lat     float64 `json:"lat" validate:"gte=-85.0511,lte=85.0511"`
	Lon     float64 `json:"lon" validate:"gte=-180,lte=180"`

	// ViewerLocal is the creator's wall-clock instant, RFC3339.
	ViewerLocal string `json:"viewer_local,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type listCandlesResponse struct {
	Candles []model.Candle `json:"candles"`
}

func (s *Server) handleListCandles(w http.ResponseWriter, r *http.Request) {
	limit := s.pageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "limit must be a positive integer")
			return
		}
		if n > s.maxPageSize {
			n = s.maxPageSize
		}
		limit = n
	}

	page, err := s.deps.ListCandles(r.Context(), r.URL.Query().Get("after"), limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "unknown after cursor")
			return
		}
		s.log.Error(r.Context(), "list candles failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not list candles")
		return
	}
	if page == nil {
		page = []model.Candle{}
	}
	writeJSON(w, http.StatusOK, listCandlesResponse{Candles: page})
}

func (s *Server) handleCreateCandle(w http.ResponseWriter, r *http.Request) {
	var req createCandleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	candle := model.Candle{
		Emotion:  req.Emotion,
		Position: model.Position{Lat: req.Lat, Lon: req.Lon},
	}
	if req.ViewerLocal != "" {
		// Validated above; parse cannot fail here.
		candle.ViewerLocal, _ = time.Parse(time.RFC3339, req.ViewerLocal)
	}

	created, err := s.deps.CreateCandle(r.Context(), identityFrom(r.Context()), candle)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCandle) || errors.Is(err, model.ErrInvalidPosition) {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		s.log.Error(r.Context(), "create candle failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not create candle")
		return
	}

	metrics.RecordCandleCreated()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteCandle(w http.ResponseWriter, r *http.Request) {
	candleID := chi.URLParam(r, "id")

	err := s.deps.DeleteCandle(r.Context(), candleID, identityFrom(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, codeNotFound, "no such candle")
		case errors.Is(err, repository.ErrNotOwner):
			writeError(w, http.StatusForbidden, codeForbidden, "not your candle")
		default:
			s.log.Error(r.Context(), "delete candle failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, codeInternal, "could not delete candle")
		}
		return
	}

	metrics.RecordCandleDeleted()
	w.WriteHeader(http.StatusNoContent)
}
