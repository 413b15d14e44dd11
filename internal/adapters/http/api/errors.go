package api

// Error codes carried in the error envelope. Clients branch on these,
// not on messages.
const (
	codeInvalidRequest = "invalid_request"
	codeUnauthorized   = "unauthorized"
	codeForbidden      = "forbidden"
	codeNotFound       = "not_found"
	codeRateLimited    = "rate_limited"
	codeInternal       = "internal_error"
)
