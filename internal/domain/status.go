package domain

import "fmt"

// BookingStatus - статус бронирования пассажира
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusLocked    BookingStatus = "locked"
	StatusExpired   BookingStatus = "expired"
)

// statusTransitions - единственная таблица допустимых переходов
// locked объявлен как статус, но собственной строки переходов не имеет
var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed: {StatusCancelled},
	StatusCancelled: {},
	StatusExpired:   {},
}

// IsValid проверяет, что статус известен системе
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusLocked, StatusExpired:
		return true
	}
	return false
}

// IsTerminal проверяет, что из статуса нет выхода
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// AllowedTransitions возвращает копию списка статусов, в которые можно перейти из s
func AllowedTransitions(s BookingStatus) []BookingStatus {
	next := statusTransitions[s]
	out := make([]BookingStatus, len(next))
	copy(out, next)
	return out
}

// ValidateStatusTransition возвращает ошибку, если переход current -> next не разрешен таблицей
func ValidateStatusTransition(current, next BookingStatus) error {
	if !current.IsValid() || !next.IsValid() {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidStatus, current, next)
	}

	if current.IsTerminal() {
		return fmt.Errorf("%w: %s is a terminal status", ErrInvalidStatusTransition, current)
	}

	for _, allowed := range statusTransitions[current] {
		if allowed == next {
			return nil
		}
	}

	return fmt.Errorf("%w: cannot change status from %s to %s", ErrInvalidStatusTransition, current, next)
}
