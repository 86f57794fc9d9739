package catalog

import "fmt"

// NotFoundError is returned when an operation name is not in the catalog.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("operation %q not found in catalog", e.Name)
}

// ValidationError reports arguments that do not satisfy an operation's
// parameter definitions. It is raised before any data access happens.
type ValidationError struct {
	Operation string
	Param     string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("invalid arguments for %s: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("invalid argument %q for %s: %s", e.Param, e.Operation, e.Reason)
}
