package schema

import (
	"fmt"
	"strings"
)

// SchemaError means a required canonical field matched no column.
type SchemaError struct {
	Profile   string
	Field     string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: no column found for %s (available columns: %s)",
		e.Profile, e.Field, strings.Join(e.Available, ", "))
}
