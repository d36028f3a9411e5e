package schedule

import "errors"

var (
	// ErrBusinessNotFound компания не найдена
	ErrBusinessNotFound = errors.New("business not found")

	// ErrStaffNotFound мастер не найден в компании
	ErrStaffNotFound = errors.New("staff not found")

	// ErrAccessDenied расписание может менять только владелец или сам мастер
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidSchedule расписание не прошло валидацию
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = errors.New("service: internal error")
)
