package validator

// Result is the outcome of a validation. On success Data holds the
// normalized value; on failure Error and InvalidFields are set. Validation
// stops at the first failing field, so InvalidFields has a single entry.
type Result struct {
	Data          any               `json:"data,omitempty"`
	Error         string            `json:"error,omitempty"`
	InvalidFields map[string]string `json:"invalid_fields,omitempty"`
}

// OK reports whether validation succeeded.
func (r *Result) OK() bool { return r.Error == "" }

// Err returns the failure as a *ValidatorError, or nil on success.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidatorError{Info: *r}
}
