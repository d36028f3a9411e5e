package get_available_slots

import "errors"

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrBusinessNotFound компания не найдена
	ErrBusinessNotFound = errors.New("business not found")

	// ErrServiceNotFound услуга не найдена или принадлежит другой компании
	ErrServiceNotFound = errors.New("service not found")

	// ErrStaffNotCapable выбранный мастер не выполняет все запрошенные услуги
	ErrStaffNotCapable = errors.New("staff member cannot perform the requested services")

	// ErrInvalidDate дата в прошлом
	ErrInvalidDate = errors.New("invalid booking date")

	// ErrDateTooFarInFuture дата дальше разрешенного окна бронирования
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("usecase: internal error")
)
