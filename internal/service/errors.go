package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation некорректные входные данные
	ErrValidation = errors.New("validation failed")
	// ErrBusinessRule операция нарушает правила записи
	ErrBusinessRule = errors.New("business rule violated")
	// ErrNotFound заявка или шаблон не найдены или принадлежат другому пользователю.
	// Такие ошибки также являются ErrBusinessRule.
	ErrNotFound = errors.New("not found")
	// ErrConflict параллельная операция уже выполняется
	ErrConflict = errors.New("operation in progress")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func businessError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBusinessRule, fmt.Sprintf(format, args...))
}

func notFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrBusinessRule, ErrNotFound, fmt.Sprintf(format, args...))
}
