package utils

import (
	"Food-Rescue-Coordinator/domain"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	Validate     *validator.Validate
	validateOnce sync.Once
)

func InitValidator() {
	validateOnce.Do(func() {
		Validate = validator.New(validator.WithRequiredStructEnabled())
	})
}

// ValidateStruct checks the validate tags of s and reports failures as
// domain.ErrInvalidRequest.
func ValidateStruct(s interface{}) error {
	InitValidator()
	if err := Validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}
