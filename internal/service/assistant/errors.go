package assistant

import "fmt"

// APIError carries the upstream status and message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assistant api error: %d - %s", e.Status, e.Message)
}

func (e *APIError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}
