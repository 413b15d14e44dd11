package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumenmap/candles/pkg/errs"
	"github.com/lumenmap/candles/pkg/metrics"
)

// ChallengeVerifier checks the opaque human-verification token a
// client presents before a session is issued.
type ChallengeVerifier interface {
	VerifyChallenge(ctx context.Context, token, remoteIP string) error
}

// PermissiveVerifier accepts everything. Used when no challenge secret
// is configured (local development, tests).
type PermissiveVerifier struct{}

func (PermissiveVerifier) VerifyChallenge(context.Context, string, string) error {
	return nil
}

// HTTPVerifier validates challenge tokens against a siteverify-style
// endpoint: POST form with secret, response, and remoteip; JSON reply
// with a success flag.
type HTTPVerifier struct {
	endpoint string
	secret   string
	client   *http.Client
}

// NewHTTPVerifier creates a verifier against the given endpoint.
func NewHTTPVerifier(endpoint, secret string) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *HTTPVerifier) VerifyChallenge(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		metrics.RecordChallengeFailure()
		return errs.NewKind("session.challenge", ErrChallengeFailed)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errs.Wrap("session.challenge", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		metrics.RecordChallengeFailure()
		return errs.WrapKind("session.challenge", ErrChallengeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.RecordChallengeFailure()
		return errs.WrapKind("session.challenge", ErrChallengeFailed, err)
	}
	if !body.Success {
		metrics.RecordChallengeFailure()
		return errs.NewKind("session.challenge", ErrChallengeFailed)
	}
	return nil
}
