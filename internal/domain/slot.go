package domain

// SlotStatus availability of a candidate slot
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	// SlotBooked ни один кандидат не может взять слот, причина в SlotReason
	SlotBooked SlotStatus = "booked"
)

// SlotReason explains why a slot is not available
type SlotReason string

const (
	ReasonNone         SlotReason = ""
	ReasonBooked       SlotReason = "booked"
	ReasonBreak        SlotReason = "break"
	ReasonOutsideHours SlotReason = "outside_hours"
)

// CandidateSlot время начала для клиента, пересчитывается на каждый запрос
type CandidateSlot struct {
	Time        string // "HH:MM"
	StartMinute int
	Status      SlotStatus
	Reason      SlotReason
	// StaffIDs мастера, свободные на весь слот, в порядке кандидатов; пусто если слот недоступен
	StaffIDs []int64
}

// IsAvailable returns true if at least one staff member can take the slot
func (s *CandidateSlot) IsAvailable() bool {
	return s.Status == SlotAvailable
}
