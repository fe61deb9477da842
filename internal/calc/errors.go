package calc

import "fmt"

// NotFoundError reports a request for an unregistered calculation method or
// version. This is a programming or configuration error, not a data error;
// it is never swallowed.
type NotFoundError struct {
	Kind string // "calculation method" or "calculation version"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not registered", e.Kind, e.Name)
}

func methodNotFound(m Method) *NotFoundError {
	return &NotFoundError{Kind: "calculation method", Name: string(m)}
}

func versionNotFound(v string) *NotFoundError {
	return &NotFoundError{Kind: "calculation version", Name: v}
}
