package types

// SuccessEnvelope wraps every 2xx payload under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Message is the client-safe text and
// Details carries field errors for validation and checkout rejections.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorEnvelope wraps every non-2xx payload under "error".
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RequestIDHeader carries the request ID set by the API middleware and echoed
// in error bodies so support can match a failed checkout to its log lines.
const RequestIDHeader = "X-Request-Id"
