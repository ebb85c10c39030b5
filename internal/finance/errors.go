package finance

import (
	"errors"
	"fmt"
)

// MaxAmount: наибольшая сумма, которую вмещает NUMERIC(14, 2).
const MaxAmount = 999_999_999_999.99

// ValidationError описывает некорректный ввод калькулятора.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError сообщает, является ли ошибка ошибкой валидации ввода.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// AsValidationError извлекает ошибку валидации из цепочки.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
