package appointment

import "errors"

var (
	// ErrAppointmentNotFound запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrOverlap вставка нарушила exclusion constraint на пересечение записей мастера
	ErrOverlap = errors.New("appointment.repository: staff interval overlaps an active appointment")

	// ErrBuildQuery ошибка построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery ошибка выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow ошибка сканирования строки результата
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
