package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/randevux/booking-service/internal/domain"
)

// KafkaNotifier публикует события бронирования в Kafka.
// Ключ сообщения - id компании, события одной компании идут по порядку.
type KafkaNotifier struct {
	writer MessageWriter
	log    Logger
	now    func() time.Time
}

// NewKafkaWriter создает writer для topic с hash-балансировкой
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewKafkaNotifier создает нотификатор поверх writer
func NewKafkaNotifier(writer MessageWriter, log Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer: writer,
		log:    log,
		now:    time.Now,
	}
}

// AppointmentCreated публикует событие appointment.created
func (n *KafkaNotifier) AppointmentCreated(ctx context.Context, appt *domain.Appointment) error {
	event := newCreatedEvent(appt, n.now())

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(appt.BusinessID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: appointment=%d: %v", ErrPublish, appt.ID, err)
	}

	n.log.Info("Notifier: published %s id=%s appointment=%d", event.EventType, event.EventID, appt.ID)
	return nil
}

// Close отправляет накопленные сообщения
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// LogNotifier пишет события в лог вместо брокера
type LogNotifier struct {
	log Logger
}

// NewLogNotifier нотификатор для случая, когда Kafka выключена
func NewLogNotifier(log Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// AppointmentCreated логирует событие
func (n *LogNotifier) AppointmentCreated(_ context.Context, appt *domain.Appointment) error {
	n.log.Info("Notifier: %s appointment=%d business=%d staff=%d customer=%d at %s %s",
		EventAppointmentCreated, appt.ID, appt.BusinessID, appt.StaffID, appt.CustomerID,
		appt.Date.Format(domain.DateFormat), appt.StartTime)
	return nil
}

// Close ничего не делает
func (n *LogNotifier) Close() error {
	return nil
}

func newCreatedEvent(appt *domain.Appointment, now time.Time) AppointmentCreatedEvent {
	serviceIDs := make([]int64, 0, len(appt.Items))
	for _, item := range appt.Items {
		serviceIDs = append(serviceIDs, item.ServiceID)
	}

	return AppointmentCreatedEvent{
		EventID:       uuid.NewString(),
		EventType:     EventAppointmentCreated,
		OccurredAt:    now.UTC(),
		AppointmentID: appt.ID,
		BusinessID:    appt.BusinessID,
		StaffID:       appt.StaffID,
		CustomerID:    appt.CustomerID,
		Date:          appt.Date.Format(domain.DateFormat),
		StartTime:     appt.StartTime.String(),
		EndTime:       appt.EndTime.String(),
		ServiceIDs:    serviceIDs,
		TotalPrice:    appt.TotalPrice,
	}
}
