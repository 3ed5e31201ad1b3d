// Package validator applies schema declarations to data.
//
// Validate dispatches on the shape of the data: arrays are checked against a
// tuple or a value scheme, objects against a value scheme (dictionary mode)
// or a named scheme, and scalars are returned unchanged. Each field goes
// through the same pipeline: cast, preprocess, type check, default, charset,
// enum, verify and postprocess. The first failing field stops the walk.
//
//	res, err := validator.Validate(input,
//	    validator.WithScheme(user),
//	    validator.Strict(),
//	    validator.WithErrorPrefix("Invalid user: "),
//	)
//	if err != nil {
//	    return err // *InvalidUsageError: the scheme does not fit the data
//	}
//	if !res.OK() {
//	    fmt.Println(res.InvalidFields)
//	}
//
// The input is copied first, so the caller's maps and slices are left as
// they were; the normalized output is Result.Data.
package validator
