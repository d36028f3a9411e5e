package domain

import "time"

// Business tenant of the platform (salon, clinic, ...)
type Business struct {
	ID       int64
	OwnerID  int64
	Name     string
	Timezone string
}

// Location часовой пояс компании, UTC если он пустой или неизвестен
func (b *Business) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Staff employee who performs services
type Staff struct {
	ID         int64
	BusinessID int64
	UserID     *int64 // аккаунт мастера, nil если он не входит в систему
	Name       string
	IsActive   bool
	SortOrder  int
}

// Service catalog entry
type Service struct {
	ID              int64
	BusinessID      int64
	Name            string
	DurationMinutes int
	Price           float64
	IsActive        bool
}

// TotalDuration sums durations of services performed one after another
func TotalDuration(services []*Service) int {
	total := 0
	for _, s := range services {
		total += s.DurationMinutes
	}
	return total
}

// TotalPrice sums prices of services
func TotalPrice(services []*Service) float64 {
	total := 0.0
	for _, s := range services {
		total += s.Price
	}
	return total
}
