package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a loaded configuration against its struct tags. It is
// called by Load; exported so applications building a Config by hand can
// validate before passing it to the client.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("config field %s failed %q validation", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("config validation failed: %w", err)
}
