package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidJsonError      = "invalid_json"
	HttpInvalidFormError      = "invalid_form"
	HttpInvalidSignatureError = "invalid_signature"
	HttpUnsupportedMediaError = "unsupported_media_type"
	HttpNotFoundError         = "not_found"
)

// ErrorResponse is the error response body for the webhook receiver, the
// checkout redirect and the payment query API.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
