package handler

// RequestPayload represents the expected JSON structure in the request body.
type RequestPayload struct {
	ImageBase64 string `json:"imageBase64"`
}

// SuccessResponse is returned when the colors were extracted.
type SuccessResponse struct {
	Success bool     `json:"success"`
	Colors  []string `json:"colors"`
}

// ErrorResponse is returned on every failure. Details carries the provider's
// message, Message the underlying error of an unexpected failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}
