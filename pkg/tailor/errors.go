package tailor

import "fmt"

// ArchiveError represents a fatal problem with the zip container or one of
// its required parts. It aborts the operation before any mutation happens.
type ArchiveError struct {
	Op    string
	Path  string
	Cause error
}

func (e *ArchiveError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("archive error during %s of '%s': %v", e.Op, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("archive error during %s of '%s'", e.Op, e.Path)
	}
	return fmt.Sprintf("archive error during %s: %v", e.Op, e.Cause)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

// NewArchiveError creates a new archive error
func NewArchiveError(op, path string, cause error) error {
	return &ArchiveError{
		Op:    op,
		Path:  path,
		Cause: cause,
	}
}

// XMLError represents malformed XML inside a document part. Fatal.
type XMLError struct {
	Part  string
	Cause error
}

func (e *XMLError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("xml error in part '%s': %v", e.Part, e.Cause)
	}
	return fmt.Sprintf("xml error: %v", e.Cause)
}

func (e *XMLError) Unwrap() error {
	return e.Cause
}

// NewXMLError creates a new XML error for the given part
func NewXMLError(part string, cause error) error {
	return &XMLError{
		Part:  part,
		Cause: cause,
	}
}

// SchemaError represents an invalid content schema. It is raised during
// validation, before any table is touched.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("schema error: %s", e.Message)
}

// NewSchemaError creates a new schema validation error
func NewSchemaError(field, message string) error {
	return &SchemaError{
		Field:   field,
		Message: message,
	}
}

// TemplateRowError is returned when a section needs more rows than the table
// has and no existing bullet row is available to clone as a formatting
// template.
type TemplateRowError struct {
	Section string
}

func (e *TemplateRowError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("no template row available to synthesize rows for section '%s'", e.Section)
	}
	return "no template row available to synthesize rows"
}

// NewTemplateRowError creates a new template row error
func NewTemplateRowError(section string) error {
	return &TemplateRowError{Section: section}
}

// IsArchiveError checks if an error is an archive error
func IsArchiveError(err error) bool {
	_, ok := err.(*ArchiveError)
	return ok
}

// IsXMLError checks if an error is an XML error
func IsXMLError(err error) bool {
	_, ok := err.(*XMLError)
	return ok
}

// IsSchemaError checks if an error is a schema validation error
func IsSchemaError(err error) bool {
	_, ok := err.(*SchemaError)
	return ok
}

// IsTemplateRowError checks if an error is a template row error
func IsTemplateRowError(err error) bool {
	_, ok := err.(*TemplateRowError)
	return ok
}
