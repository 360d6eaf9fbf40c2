// Package form is a controlled-form state container: it holds field values,
// per-field validation rules, the current error for each field, and the
// overall validity of the form.
//
// Validity has two tiers. Change validates only the changed field and never
// touches Valid; Valid is recomputed only by ValidateAll, which Submit runs.
// A submit control bound to Valid therefore lags behind live field errors
// until the next full validation.
package form

import (
	"errors"
	"sort"
)

// ErrInvalid is returned by Submit when full validation fails.
var ErrInvalid = errors.New("form: validation failed")

// Values maps field names to their current values: strings, numbers or
// booleans.
type Values map[string]any

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Rules maps a field name to the one rule that validates it. Fields without a
// rule are never validated.
type Rules map[string]Rule

// SubmitFunc receives a copy of the form data after a successful validation.
type SubmitFunc func(data Values) error

// Form holds the state of one form instance. A Form is owned by a single
// caller and is not safe for concurrent use.
type Form struct {
	data     Values
	rules    Rules
	errors   map[string]string
	valid    bool
	onSubmit SubmitFunc
}

// New returns a form seeded with a copy of initial, with no errors and
// Valid false.
func New(initial Values, onSubmit SubmitFunc, rules Rules) *Form {
	r := make(Rules, len(rules))
	for name, rule := range rules {
		r[name] = rule
	}
	return &Form{
		data:     initial.Clone(),
		rules:    r,
		errors:   make(map[string]string),
		onSubmit: onSubmit,
	}
}

// Change sets the field's value and validates only that field. A passing
// value clears the field's error; a failing one records the message. Other
// fields' errors and Valid are untouched.
func (f *Form) Change(name string, value any) {
	f.data[name] = value
	f.validateField(name, value)
}

// Fill applies Change to every entry of values in name order.
func (f *Form) Fill(values Values) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Change(name, values[name])
	}
}

func (f *Form) validateField(name string, value any) bool {
	rule, ok := f.rules[name]
	if !ok {
		return true
	}
	if err := rule.Check(value); err != nil {
		f.errors[name] = err.Error()
		return false
	}
	delete(f.errors, name)
	return true
}

// ValidateAll checks every field that has a rule against its current value,
// replaces the error map with the result, records validity, and returns it.
func (f *Form) ValidateAll() bool {
	errs := make(map[string]string)
	for name, rule := range f.rules {
		if err := rule.Check(f.data[name]); err != nil {
			errs[name] = err.Error()
		}
	}
	f.errors = errs
	f.valid = len(errs) == 0
	return f.valid
}

// Submit runs ValidateAll. When it passes, Submit calls the submit function
// once with a copy of the data and returns its result. When it fails, Submit
// returns ErrInvalid and the submit function is not called.
func (f *Form) Submit() error {
	if !f.ValidateAll() {
		return ErrInvalid
	}
	if f.onSubmit == nil {
		return nil
	}
	return f.onSubmit(f.data.Clone())
}

// Data returns a copy of the current values.
func (f *Form) Data() Values {
	return f.data.Clone()
}

// Value returns the current value of a field.
func (f *Form) Value(name string) any {
	return f.data[name]
}

// Errors returns a copy of the current error map.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Error returns the current error for a field.
func (f *Form) Error(name string) (string, bool) {
	msg, ok := f.errors[name]
	return msg, ok
}

// Valid reports the result of the last ValidateAll. It is false until the
// first full validation.
func (f *Form) Valid() bool {
	return f.valid
}

// Fields returns the names of every field with a value, sorted.
func (f *Form) Fields() []string {
	names := make([]string, 0, len(f.data))
	for name := range f.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
