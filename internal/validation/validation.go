// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"
	"unicode"
)

// FieldErrors содержит ошибки валидации по именам полей формы.
type FieldErrors map[string]string

// Valid сообщает, прошла ли форма валидацию без ошибок.
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// ValidateCredentials проверяет поля формы входа. При ошибках сетевой
// запрос не выполняется, ошибки привязываются к полям формы.
func ValidateCredentials(employeeID, password string) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(employeeID) == "" {
		errs["employeeId"] = "employee id is required"
	}
	if password == "" {
		errs["password"] = "password is required"
	}

	return errs
}

// IsValidBinCode проверяет формат кода ячейки: зона, ряд и позиция,
// разделённые дефисами, например A-01-03.
func IsValidBinCode(code string) bool {
	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		return false
	}

	zone, aisle, position := parts[0], parts[1], parts[2]

	if zone == "" || aisle == "" || position == "" {
		return false
	}
	for _, ch := range zone {
		if !unicode.IsUpper(ch) {
			return false
		}
	}
	for _, ch := range aisle + position {
		if !unicode.IsDigit(ch) {
			return false
		}
	}

	return true
}

// IsValidQuantity проверяет количество для операций с остатками.
func IsValidQuantity(quantity int) bool {
	return quantity > 0
}
