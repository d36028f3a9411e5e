package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// MinutesPerDay количество минут в сутках
	MinutesPerDay = 24 * 60

	// EndOfDay конец суток, допустим только как время окончания
	EndOfDay TimeString = "24:00"

	timeLayout = "15:04"
)

var (
	// ErrInvalidTimeFormat значение не в формате HH:MM
	ErrInvalidTimeFormat = errors.New("invalid time string format")

	// ErrTimeOutOfRange результат арифметики вышел за пределы суток
	ErrTimeOutOfRange = errors.New("time is out of day range")
)

// ParseTime переводит "HH:MM" в минуты от полуночи.
// Время локальное для компании, часовые пояса здесь не учитываются.
func ParseTime(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
	}

	digits := [4]byte{hhmm[0], hhmm[1], hhmm[3], hhmm[4]}
	for _, d := range digits {
		if d < '0' || d > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
		}
	}

	hours := int(digits[0]-'0')*10 + int(digits[1]-'0')
	minutes := int(digits[2]-'0')*10 + int(digits[3]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
	}

	return hours*60 + minutes, nil
}

// ParseEndTime как ParseTime, но дополнительно принимает "24:00"
func ParseEndTime(hhmm string) (int, error) {
	if hhmm == string(EndOfDay) {
		return MinutesPerDay, nil
	}
	return ParseTime(hhmm)
}

// FormatTime переводит минуты от полуночи в "HH:MM".
// Значение должно быть в пределах 0..1440, 1440 дает "24:00".
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IsOverlap пересекаются ли [startA, endA) и [startB, endB).
// Касание границ пересечением не считается.
func IsOverlap(startA, endA, startB, endB int) bool {
	return max(startA, startB) < min(endA, endB)
}

// TimeString время в формате "HH:MM"
type TimeString string

// NewTimeString берет часы и минуты из t
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// NewTimeStringFromString валидирует s и возвращает TimeString
func NewTimeStringFromString(s string) (TimeString, error) {
	if _, err := ParseTime(s); err != nil {
		return "", err
	}
	return TimeString(s), nil
}

// NewTimeStringFromMinutes собирает TimeString из минут от полуночи
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d minutes", ErrTimeOutOfRange, minutes)
	}
	return TimeString(FormatTime(minutes)), nil
}

// NewEndTimeFromMinutes как NewTimeStringFromMinutes, но 1440 превращается в EndOfDay
func NewEndTimeFromMinutes(minutes int) (TimeString, error) {
	if minutes == MinutesPerDay {
		return EndOfDay, nil
	}
	return NewTimeStringFromMinutes(minutes)
}

// String возвращает "HH:MM" как есть
func (t TimeString) String() string {
	return string(t)
}

// IsZero пустое ли значение
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат HH:MM, "24:00" не проходит
func (t TimeString) Validate() error {
	_, err := ParseTime(string(t))
	return err
}

// Minutes возвращает минуты от полуночи, для EndOfDay это 1440.
// Для невалидного значения -1, непроверенный ввод сначала через Validate.
func (t TimeString) Minutes() int {
	m, err := ParseEndTime(string(t))
	if err != nil {
		return -1
	}
	return m
}

// AddMinutes сдвигает время на n минут без перехода через полночь.
// Результат ровно в полночь возвращается как EndOfDay.
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	m, err := ParseTime(string(t))
	if err != nil {
		return "", err
	}
	return NewEndTimeFromMinutes(m + n)
}

// UnmarshalJSON принимает только строки "HH:MM" и "24:00"
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeFormat, err)
	}

	if _, err := ParseEndTime(s); err != nil {
		return err
	}

	*t = TimeString(s)
	return nil
}

// Scan реализует sql.Scanner.
// lib/pq отдает TIME как time.Time, текстовые колонки приходят как string или []byte.
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = timeOfDay(v)
		return nil
	case string:
		return t.scanText(v)
	case []byte:
		return t.scanText(string(v))
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeFormat, src)
	}
}

// timeOfDay lib/pq декодирует TIME '24:00' как 00:00 второго дня нулевого года
func timeOfDay(v time.Time) TimeString {
	if v.Year() == 0 && v.YearDay() == 2 && v.Hour() == 0 && v.Minute() == 0 {
		return EndOfDay
	}
	return NewTimeString(v)
}

// scanText принимает "HH:MM" и "HH:MM:SS"
func (t *TimeString) scanText(s string) error {
	if len(s) >= 5 {
		s = s[:5]
	}
	if _, err := ParseEndTime(s); err != nil {
		return err
	}
	*t = TimeString(s)
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if t == EndOfDay {
		return string(t), nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}
