package serverutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs the `validate` struct tags of req.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}
