package catalog

import "errors"

var (
	// ErrBusinessNotFound компания не найдена
	ErrBusinessNotFound = errors.New("catalog.repository: business not found")

	// ErrStaffNotFound мастер не найден в компании
	ErrStaffNotFound = errors.New("catalog.repository: staff not found")

	// ErrBuildQuery ошибка построения SQL запроса
	ErrBuildQuery = errors.New("catalog.repository: failed to build query")

	// ErrExecQuery ошибка выполнения SQL запроса
	ErrExecQuery = errors.New("catalog.repository: failed to execute query")

	// ErrScanRow ошибка сканирования строки результата
	ErrScanRow = errors.New("catalog.repository: failed to scan row")
)
