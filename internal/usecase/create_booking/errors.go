package create_booking

import "errors"

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrBusinessNotFound компания не найдена
	ErrBusinessNotFound = errors.New("create_booking: business not found")

	// ErrServiceNotFound услуга не найдена, неактивна или принадлежит другой компании
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrStaffNotCapable выбранный мастер не выполняет все запрошенные услуги
	ErrStaffNotCapable = errors.New("create_booking: staff cannot perform the requested services")

	// ErrInvalidDate дата в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture дата дальше разрешенного окна бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrTooLateToBook время начала сегодня уже прошло
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrInvalidTimeSlot время не на сетке слотов, мастер не работает или у него перерыв
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrSlotTaken интервал пересекается с существующей записью.
	// Клиенту нужно выбрать другое время.
	ErrSlotTaken = errors.New("create_booking: slot taken")

	// ErrBookingInProgress блокировку на этот день компании держит другое бронирование
	ErrBookingInProgress = errors.New("create_booking: another booking is in progress, retry")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("create_booking: internal error")
)
