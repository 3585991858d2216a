package handler

const (
	msgPromptRequired   = "Prompt is required in the request body."
	msgGenerationFailed = "An error occurred while processing your request. Please try again later."
	msgMethodNotAllowed = "Method Not Allowed"
)

// RequestPayload represents the expected JSON structure in the request body.
type RequestPayload struct {
	Prompt string `json:"prompt"`
}

// AnalysisResponse is the success body.
type AnalysisResponse struct {
	Analysis string `json:"analysis"`
}

// ErrorResponse is the body of every 4xx/5xx JSON answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
