package appointments

import "errors"

var (
	// ErrAppointmentNotFound запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrBusinessNotFound компания не найдена
	ErrBusinessNotFound = errors.New("business not found")

	// ErrAccessDenied у пользователя нет прав на запись или компанию
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel запись уже в терминальном статусе
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrInvalidTransition переход из текущего статуса запрещен
	ErrInvalidTransition = errors.New("status transition is not allowed")

	// ErrInvalidInput некорректный запрос
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange дата начала позже даты окончания
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = errors.New("service: internal error")
)
