package notifier

import "errors"

var (
	// ErrEncode не удалось сериализовать событие
	ErrEncode = errors.New("notifier: failed to encode event")

	// ErrPublish брокер не принял сообщение
	ErrPublish = errors.New("notifier: failed to publish event")
)
