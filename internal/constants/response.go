package constants

// APIResponse is the uniform envelope for every handler reply. Success
// responses carry Data; error responses may carry Errors and Stack, but only
// when the service runs outside production.
type APIResponse struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Stack      string   `json:"stack,omitempty"`
}

func BuildSuccessResponse(statusCode int, message string, data any) APIResponse {
	return APIResponse{
		Success:    true,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	}
}

// BuildErrorResponse builds the error envelope. Errors and stack detail are
// attached only when includeDetail is true (non-production environments).
func BuildErrorResponse(statusCode int, message string, errs []string, stack string, includeDetail bool) APIResponse {
	response := APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
	}

	if includeDetail {
		response.Errors = errs
		response.Stack = stack
	}

	return response
}
