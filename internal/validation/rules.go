package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/money"
)

// LargeAmountThreshold - сумма брони, подтверждать которую может только администратор
const LargeAmountThreshold = 1000000.0

// PassengerInput - поля пассажира, проверяемые перед сохранением
type PassengerInput struct {
	FullName       string
	PassportNumber string
	Phone          string
	Email          string
}

// ValidatePassenger проверяет все поля пассажира
func ValidatePassenger(in PassengerInput) *Result {
	return newResult().Merge(
		ValidatePassengerName(in.FullName),
		ValidatePassportNumber(in.PassportNumber),
		ValidatePhone(in.Phone),
		ValidateEmail(in.Email, false),
	)
}

// TicketBatchInput - закупка партии билетов у агента
type TicketBatchInput struct {
	AgentName    string
	AgentContact string
	AgentAddress string
	BuyingPrice  float64
	Quantity     int
	FlightDate   time.Time
}

// ValidateTicketBatch проверяет закупку целиком, включая потолок общей стоимости
func ValidateTicketBatch(in TicketBatchInput, now time.Time) *Result {
	r := newResult().Merge(
		ValidateAgentName(in.AgentName),
		ValidateAgentContact(in.AgentContact),
		ValidateAgentAddress(in.AgentAddress),
		ValidatePrice(in.BuyingPrice),
		ValidateQuantity(in.Quantity),
		ValidateFlightDate(in.FlightDate, now),
	)

	total := money.SafeMultiply(in.BuyingPrice, float64(in.Quantity))
	if total > MaxBatchTotalCost {
		r.addError(fmt.Sprintf("Total cost %s exceeds the limit of %s",
			money.FormatCurrency(total), money.FormatCurrency(MaxBatchTotalCost)))
	}

	return r
}

// ValidateGroupTicket проверяет групповой билет перед созданием или изменением
func ValidateGroupTicket(b *domain.GroupTicketBatch, now time.Time) *Result {
	r := newResult()

	if strings.TrimSpace(b.GroupName) == "" {
		r.addError("Group name is required")
	}
	if !b.PackageType.IsValid() {
		r.addError(fmt.Sprintf("Package type must be %q or %q", domain.PackageWithTransport, domain.PackageWithoutTransport))
	}
	// Потолки закупки здесь только предупреждают: блок мест под хадж бывает больше обычной закупки
	if b.TicketCount <= 0 {
		r.addError("Ticket count must be greater than zero")
	} else if b.TicketCount > MaxQuantity {
		r.addWarning(fmt.Sprintf("Ticket count is above %d, double-check the purchase", MaxQuantity))
	}
	if b.TotalCost <= 0 {
		r.addError("Total cost must be greater than zero")
	} else if float64(b.TotalCost) > MaxBatchTotalCost {
		r.addWarning(fmt.Sprintf("Total cost is above %s, double-check the purchase", money.FormatCurrency(MaxBatchTotalCost)))
	}

	r.Merge(
		ValidateDateRange(b.DepartureDate, b.ReturnDate),
		ValidateAgentName(b.AgentName),
		ValidateAgentContact(b.AgentContact),
	)

	if !b.DepartureDate.IsZero() && domain.DateOnly(b.DepartureDate).Before(domain.DateOnly(now)) {
		r.addWarning("Departure date is in the past")
	}

	return r
}

// StatusChangeContext - кто и для какой суммы меняет статус
type StatusChangeContext struct {
	Role   domain.UserRole
	Amount float64
}

// CheckStatusChange проверяет смену статуса брони:
// сначала по единой таблице переходов, затем правами и размером суммы
func CheckStatusChange(current, next domain.BookingStatus, sc StatusChangeContext) error {
	if err := domain.ValidateStatusTransition(current, next); err != nil {
		return err
	}

	if sc.Role == domain.RoleAdmin {
		return nil
	}

	if current == domain.StatusConfirmed && next == domain.StatusCancelled {
		return fmt.Errorf("%w: only an admin can cancel a confirmed booking", domain.ErrForbidden)
	}

	if next == domain.StatusConfirmed && sc.Amount > LargeAmountThreshold {
		return fmt.Errorf("%w: bookings above %s must be confirmed by an admin",
			domain.ErrForbidden, money.FormatCurrency(LargeAmountThreshold))
	}

	return nil
}
