package notifier

import "time"

// EventAppointmentCreated тип события новой записи
const EventAppointmentCreated = "appointment.created"

// AppointmentCreatedEvent payload для сервиса уведомлений
type AppointmentCreatedEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	AppointmentID int64     `json:"appointment_id"`
	BusinessID    int64     `json:"business_id"`
	StaffID       int64     `json:"staff_id"`
	CustomerID    int64     `json:"customer_id"`
	Date          string    `json:"date"`       // YYYY-MM-DD
	StartTime     string    `json:"start_time"` // HH:MM по времени компании
	EndTime       string    `json:"end_time"`
	ServiceIDs    []int64   `json:"service_ids"`
	TotalPrice    float64   `json:"total_price"`
}
