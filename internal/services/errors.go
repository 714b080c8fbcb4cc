package services

import (
	"errors"
	"fmt"
)

// ValidationError — запрос неверной формы или недопустимый список порядка.
// Отдаётся клиенту как 400 и не повторяется.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
