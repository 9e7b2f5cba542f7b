package view

import "github.com/utafrali/litreads/pkg/validator"

// FormState is the re-render model of a posted form: what was typed, what
// was wrong with it, and which field gets focus.
type FormState struct {
	Values    map[string]string
	Errors    map[string]string
	Focus     string
	Confirmed bool
}

// Invalid builds the state for a rejected submission. The first invalid
// field in declaration order receives focus.
func Invalid(values map[string]string, err *validator.ValidationError) FormState {
	return FormState{
		Values: values,
		Errors: err.Fields(),
		Focus:  err.FirstField(),
	}
}

// Confirmed is the state after a successful submission: empty fields and
// the confirmation panel shown.
func Confirmed() FormState {
	return FormState{Confirmed: true}
}

// Value returns the submitted value of field.
func (f FormState) Value(field string) string {
	return f.Values[field]
}

// Error returns the message for field, if any.
func (f FormState) Error(field string) string {
	return f.Errors[field]
}

// Invalid reports whether field failed validation.
func (f FormState) Invalid(field string) bool {
	_, bad := f.Errors[field]
	return bad
}

// Autofocus reports whether field should carry the autofocus attribute.
func (f FormState) Autofocus(field string) bool {
	return f.Focus != "" && f.Focus == field
}

// HasErrors reports whether any field failed.
func (f FormState) HasErrors() bool {
	return len(f.Errors) > 0
}

// Field pairs a form state with one field name for the shared input partials.
type Field struct {
	Name string
	Form FormState
}
