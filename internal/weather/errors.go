package weather

import "fmt"

// FetchError is returned when current conditions could not be loaded. Its
// message is already localized for the user; the cause is kept for logs.
type FetchError struct {
	City    string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Detail renders the error with its cause for logging.
func (e *FetchError) Detail() string {
	return fmt.Sprintf("fetch weather for %s: %v", e.City, e.Err)
}
