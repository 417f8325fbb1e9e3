package validator

import (
	playground "github.com/go-playground/validator/v10"

	"github.com/clinicore/clinic-api/pkg/apperror"
)

// Validator checks request shapes before any authorization decision runs.
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	return &Validator{v: playground.New(playground.WithRequiredStructEnabled())}
}

// Validate returns a typed validation error describing the first offending
// field, or nil when the input shape is well formed.
func (val *Validator) Validate(obj interface{}) error {
	if err := val.v.Struct(obj); err != nil {
		if fieldErrs, ok := err.(playground.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperror.Validation("invalid field "+fe.Field()+": failed "+fe.Tag(), err)
		}
		return apperror.Validation("invalid request", err)
	}
	return nil
}
