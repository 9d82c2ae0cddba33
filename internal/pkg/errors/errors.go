package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия
	// (например, категория викторины не входит в его тарифный план).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredCode используется, когда OTP-код сброса пароля истек.
	ErrExpiredCode = errors.New("code is expired")

	// ErrConflict используется для конфликтов состояния (например, email уже занят).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable используется, когда бэкенд лидерборда (Redis) недоступен.
	// Чтения лидерборда при этой ошибке отвечают 503, а не выдумывают ранги.
	ErrUnavailable = errors.New("service unavailable")
)
