package llm

import "fmt"

// InvocationError indicates the completion collaborator could not be
// invoked or returned an unusable response.
type InvocationError struct {
	Provider string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("llm invocation failed (%s): %v", e.Provider, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// NewInvocationError creates a new InvocationError.
func NewInvocationError(provider string, err error) *InvocationError {
	return &InvocationError{Provider: provider, Err: err}
}
