/*
Package dsl provides a fluent Go API for declaring vali schemes.

It is an alternative to YAML or JSON definitions when schemes live next to
the code that uses them, and keeps hooks as plain Go functions instead of
registry names.

Example usage:

	user := dsl.Fields(
		dsl.F("name", dsl.String().Min(1).Alias("full_name")),
		dsl.F("age", dsl.Number().Cast().Default(18)),
		dsl.F("role", dsl.String().Enum("admin", "user").Optional()),
		dsl.F("address", dsl.Object(dsl.Fields(
			dsl.F("zip", dsl.String().Charset(`[0-9]{5}`)),
		))),
		dsl.F("tags", dsl.ArrayOf(dsl.String()).Default([]string{})),
		dsl.F("point", dsl.Tuple(dsl.Number(), dsl.Number())),
	).MustBuild()

	res, err := validator.Validate(input, validator.WithScheme(user))
*/
package dsl
