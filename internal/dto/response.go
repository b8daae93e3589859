package dto

import "time"

// Response is the envelope every successful API response is wrapped in
type Response struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Body      any       `json:"body,omitempty"`
}

// NewResponse creates a Response stamped with the current time
func NewResponse(message string, body any) Response {
	return Response{
		Timestamp: time.Now(),
		Message:   message,
		Body:      body,
	}
}
