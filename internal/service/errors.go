package service

import "errors"

var (
	// ErrInvalidInput некорректный URL или пользовательский код.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict код уже занят.
	ErrConflict = errors.New("code already exists")
	// ErrNotFound ссылки с таким кодом нет.
	ErrNotFound = errors.New("link not found")
	// ErrStorage хранилище недоступно или запрос завершился ошибкой.
	ErrStorage = errors.New("storage error")
)

// IsNotFound сообщает, что ошибка означает отсутствие ссылки.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict сообщает, что ошибка означает занятый код.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsInvalidInput сообщает, что ошибка вызвана входными данными.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
