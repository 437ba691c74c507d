package domain

import (
	"time"

	"github.com/bdticketpro/ticketpro/internal/pkg/money"
	"github.com/google/uuid"
)

// DateLayout - формат календарной даты в API и в ключах группировки
const DateLayout = "2006-01-02"

// PackageType - категория Umrah пакета
type PackageType string

const (
	PackageWithTransport    PackageType = "with-transport"
	PackageWithoutTransport PackageType = "without-transport" // legacy, пулы по нему не создаются из UI
)

// IsValid проверяет, что категория пакета известна
func (p PackageType) IsValid() bool {
	return p == PackageWithTransport || p == PackageWithoutTransport
}

// AllocationState - практическое состояние пула билетов
type AllocationState string

const (
	AllocationCreated   AllocationState = "CREATED"
	AllocationPartial   AllocationState = "PARTIALLY_ALLOCATED"
	AllocationExhausted AllocationState = "FULLY_ALLOCATED"
)

// FlightLeg - данные рейса для одного направления (все поля опциональны)
type FlightLeg struct {
	Airline      string `json:"airline,omitempty"`
	FlightNumber string `json:"flight_number,omitempty"`
	Time         string `json:"time,omitempty"`
	Route        string `json:"route,omitempty"`
}

// GroupTicketBatch - купленная у агента партия из TicketCount билетов на пару дат
// Партия работает как убывающий пул: каждый привязанный пассажир занимает один билет
// RemainingTickets принадлежит слою хранения и меняется только при привязке/отвязке пассажиров
type GroupTicketBatch struct {
	ID                   uuid.UUID   `json:"id"`
	GroupName            string      `json:"group_name"`
	PackageType          PackageType `json:"package_type"`
	DepartureDate        time.Time   `json:"departure_date"`
	ReturnDate           time.Time   `json:"return_date"`
	TicketCount          int         `json:"ticket_count"`
	TotalCost            int64       `json:"total_cost"`
	AverageCostPerTicket int64       `json:"average_cost_per_ticket"`
	RemainingTickets     int         `json:"remaining_tickets"`
	AgentName            string      `json:"agent_name"`
	AgentContact         string      `json:"agent_contact,omitempty"`
	PurchaseNotes        string      `json:"purchase_notes,omitempty"`
	Outbound             FlightLeg   `json:"outbound"`
	Return               FlightLeg   `json:"return"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// RecalculateAverageCost пересчитывает среднюю стоимость билета
// Вызывается при любом изменении TotalCost или TicketCount
func (b *GroupTicketBatch) RecalculateAverageCost() {
	if b.TicketCount <= 0 {
		b.AverageCostPerTicket = 0
		return
	}
	b.AverageCostPerTicket = money.RoundWhole(float64(b.TotalCost) / float64(b.TicketCount))
}

// AssignedCount возвращает количество пассажиров, занявших билеты пула
func (b *GroupTicketBatch) AssignedCount() int {
	return b.TicketCount - b.RemainingTickets
}

// IsAvailable проверяет, можно ли привязать к партии еще одного пассажира
func (b *GroupTicketBatch) IsAvailable() bool {
	return b.RemainingTickets > 0
}

// State возвращает состояние пула по остатку билетов
func (b *GroupTicketBatch) State() AllocationState {
	switch {
	case b.RemainingTickets <= 0:
		return AllocationExhausted
	case b.RemainingTickets >= b.TicketCount:
		return AllocationCreated
	default:
		return AllocationPartial
	}
}

// CheckInvariants - последняя проверка перед записью в БД
// Полную валидацию с сообщениями для оператора выполняет пакет validation
func (b *GroupTicketBatch) CheckInvariants() error {
	if !b.PackageType.IsValid() {
		return ErrInvalidPackageType
	}
	if b.TicketCount <= 0 || b.TotalCost <= 0 {
		return ErrInvalidGroupTicketCapacity
	}
	if !b.ReturnDate.After(b.DepartureDate) {
		return ErrInvalidGroupTicketDates
	}
	if b.RemainingTickets < 0 || b.RemainingTickets > b.TicketCount {
		return ErrTicketCountBelowAssigned
	}
	return nil
}

// DateGroupedView - проекция партий с одинаковой парой дат (не хранится, считается на каждый запрос)
type DateGroupedView struct {
	DepartureDate    time.Time `json:"departure_date"`
	ReturnDate       time.Time `json:"return_date"`
	BatchCount       int       `json:"batch_count"`
	TotalTickets     int       `json:"total_tickets"`
	TotalCost        int64     `json:"total_cost"`
	RemainingTickets int       `json:"remaining_tickets"`
}

// GroupByDates группирует партии по точному совпадению (departure_date, return_date)
// Порядок групп - порядок первого появления пары дат во входном списке
func GroupByDates(batches []*GroupTicketBatch) []*DateGroupedView {
	views := make([]*DateGroupedView, 0)
	index := make(map[string]*DateGroupedView)

	for _, b := range batches {
		key := b.DepartureDate.Format(DateLayout) + "|" + b.ReturnDate.Format(DateLayout)
		view, ok := index[key]
		if !ok {
			view = &DateGroupedView{
				DepartureDate: b.DepartureDate,
				ReturnDate:    b.ReturnDate,
			}
			index[key] = view
			views = append(views, view)
		}
		view.BatchCount++
		view.TotalTickets += b.TicketCount
		view.TotalCost += b.TotalCost
		view.RemainingTickets += b.RemainingTickets
	}

	return views
}

// ParseDate разбирает календарную дату в формате YYYY-MM-DD (UTC, без времени)
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// DateOnly отбрасывает время, оставляя календарную дату в UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
