package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Well-known diagnostic codes emitted by schema compilation.
const (
	CodeNotAStruct    = "not-a-struct"
	CodeAnonymousType = "anonymous-type"
	CodeMixedKeys     = "mixed-keys"
	CodeDuplicateKey  = "duplicate-key"
	CodeBadIndexTag   = "bad-index-tag"
	CodeEmbeddedField = "embedded-field"
)

// Diagnostics holds all diagnostic information from one compilation batch.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// TypeName identifies which record type this relates to.
	TypeName string
	// FieldName identifies which field this relates to (if any).
	FieldName string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typeName, fieldName string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:  SeverityError,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldName: fieldName,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typeName, fieldName string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity:  SeverityWarning,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldName: fieldName,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var sb strings.Builder
	for i, diag := range d.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(diag.String())
	}
	return errors.New(sb.String())
}

// String formats one diagnostic for human consumption.
func (g Diagnostic) String() string {
	where := g.TypeName
	if g.FieldName != "" {
		where += "." + g.FieldName
	}
	return fmt.Sprintf("%s[%s] %s: %s", g.Severity, g.Code, where, g.Message)
}
