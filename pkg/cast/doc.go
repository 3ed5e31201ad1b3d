// Package cast converts string input into booleans and numbers.
//
// It exists for values that arrive as text (query strings, CLI flags,
// environment variables) but are declared as boolean or number in a scheme.
// Both conversions are pure: they never fail loudly. A declined conversion
// is reported through the second return value, and callers keep the
// original value in that case.
//
//	v, ok := cast.Number("42", cast.Options{})   // 42.0, true
//	v, ok = cast.Boolean("yes", cast.Options{Strict: true}) // nil, false
package cast
