package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/lumenmap/candles/internal/session"
	"github.com/lumenmap/candles/pkg/logger"
	"github.com/lumenmap/candles/pkg/metrics"
)

type issueSessionRequest struct {
	// ChallengeToken is the opaque token from the verification widget.
	ChallengeToken string `json:"challenge_token"`
}

type issueSessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (s *Server) handleIssueSession(w http.ResponseWriter, r *http.Request) {
	var req issueSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed JSON body")
		return
	}

	id, token, err := s.deps.IssueSession(r.Context(), req.ChallengeToken, remoteIP(r))
	if err != nil {
		if errors.Is(err, session.ErrChallengeFailed) {
			writeError(w, http.StatusForbidden, codeForbidden, "challenge verification failed")
			return
		}
		s.log.Error(r.Context(), "session issuance failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not issue session")
		return
	}

	metrics.RecordSessionIssued()
	writeJSON(w, http.StatusOK, issueSessionResponse{Token: token, UserID: id.UserID})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
