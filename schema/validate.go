package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/syssam/litedao/schema/field"
)

// ValidationError represents a rejected record type or field.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema: %s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("schema: %s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of validating a record type.
type ValidationResult struct {
	Table  string
	Errors []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error implements the error interface.
func (r *ValidationResult) Error() string {
	if len(r.Errors) == 1 {
		return r.Errors[0].Error()
	}
	return r.String()
}

// Unwrap returns the individual validation errors.
func (r *ValidationResult) Unwrap() []error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errs
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	if !r.HasErrors() {
		return "No issues found"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "schema: %s: %d errors:\n", r.Table, len(r.Errors))
	for _, e := range r.Errors {
		sb.WriteString("  - ")
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *ValidationResult) add(column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{
		Table:   r.Table,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	})
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidIdentifier checks if the string can be used unquoted as a table or column name.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && identRe.MatchString(s)
}

// Validate checks a record type descriptor. It returns nil or a
// *ValidationResult holding every problem found.
func Validate(t *Type) error {
	r := &ValidationResult{Table: t.Name}
	if !isValidIdentifier(t.Name) {
		r.add("", "type %s does not have a valid table name", t.GoType)
	}
	var (
		ids       int
		names     = make(map[string]bool)
		columns   = make(map[string]bool)
		junctions = make(map[string]string)
	)
	for i, f := range t.Fields {
		if f == nil {
			r.add("", "field at position %d has no descriptor", i)
			continue
		}
		if f.Err != nil {
			r.add(f.Name, "%v", f.Err)
		}
		if f.Owner != t.GoType {
			r.add(f.Name, "field was declared for type %s", f.Owner)
		}
		if !isValidIdentifier(f.Name) {
			r.add(f.Name, "invalid field name")
		}
		dup := names[f.Name]
		if dup {
			r.add(f.Name, "duplicate field name")
		}
		names[f.Name] = true
		if f.PrimaryKey {
			ids++
		} else if f.Name == field.IDName {
			r.add(f.Name, "field name is reserved for the identifier")
		}
		if c := f.Column(); c != "" {
			if columns[c] && !dup {
				r.add(f.Name, "column %q is already used", c)
			}
			columns[c] = true
		}
		switch f.Role {
		case field.RoleScalar:
			if f.Info == nil || !f.Info.Type.Valid() {
				r.add(f.Name, "scalar field without a column type")
			}
		case field.RoleNested, field.RoleForeignKey, field.RoleRepeated:
			if f.Ref == nil || f.Ref.Type == nil {
				r.add(f.Name, "%s field without a related type", f.Role)
				continue
			}
			if !isValidIdentifier(f.Ref.Table()) {
				r.add(f.Name, "related type %s does not have a valid table name", f.Ref.Type)
			}
		}
		if f.Role != field.RoleRepeated {
			continue
		}
		if k := f.Ref.Type.Kind(); k == reflect.Slice || k == reflect.Array {
			r.add(f.Name, "repeated field of %s: elements must be records, not collections", f.Ref.Type)
		}
		if f.Ref.Type == t.GoType {
			r.add(f.Name, "repeated field of its own type: junction columns would collide")
		}
		jt := t.JunctionTable(f)
		if other, ok := junctions[jt]; ok {
			r.add(f.Name, "junction table %s is already used by field %q", jt, other)
		}
		junctions[jt] = f.Name
	}
	switch {
	case ids == 0:
		r.add(field.IDName, "missing identifier field")
	case ids > 1:
		r.add(field.IDName, "identifier field declared %d times", ids)
	}
	if r.HasErrors() {
		return r
	}
	return nil
}
