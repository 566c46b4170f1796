package registry

import "fmt"

// NetworkError reports a transport failure talking to the registry.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("could not reach registry at %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError reports that the registry did not return usable version
// information for a template.
type NotFoundError struct {
	Template string
	Status   int
	Reason   string
}

func (e *NotFoundError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("template %q not found in registry (status %d)", e.Template, e.Status)
	}
	return fmt.Sprintf("template %q has no usable latest version: %s", e.Template, e.Reason)
}

// StreamOpenError reports that the template archive could not be opened.
// Status is zero when the request never produced a response.
type StreamOpenError struct {
	URL    string
	Status int
	Err    error
}

func (e *StreamOpenError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("archive %s returned status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("opening archive %s: %v", e.URL, e.Err)
}

func (e *StreamOpenError) Unwrap() error { return e.Err }
