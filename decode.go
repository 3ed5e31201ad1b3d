package vali

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

// Validate validates data against s. It is shorthand for
// validator.Validate with WithScheme.
func Validate(data any, s *schema.Scheme, opts ...validator.Option) (*validator.Result, error) {
	return validator.Validate(data, append([]validator.Option{validator.WithScheme(s)}, opts...)...)
}

// Decode validates data against s and decodes the normalized output into
// out, which must be a pointer. Struct fields are matched by their json
// tag, or by name when untagged. A validation failure is returned as a
// *validator.ValidatorError.
func Decode(data any, s *schema.Scheme, out any, opts ...validator.Option) error {
	opts = append(opts, validator.WithThrow(true))
	res, err := Validate(data, s, opts...)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: false,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(res.Data); err != nil {
		return fmt.Errorf("failed to decode validated data: %w", err)
	}
	return nil
}
