package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Доменные ошибки - используются во всех слоях приложения

// Operator errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidUserData    = errors.New("invalid user data")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Group ticket errors
var (
	ErrGroupTicketNotFound        = errors.New("group ticket not found")
	ErrGroupTicketSoldOut         = errors.New("group ticket has no remaining tickets")
	ErrGroupTicketHasPassengers   = errors.New("group ticket has assigned passengers")
	ErrInvalidPackageType         = errors.New("invalid package type")
	ErrPackageTypeMismatch        = errors.New("passenger package type does not match group ticket")
	ErrTicketCountBelowAssigned   = errors.New("ticket count is below the number of assigned passengers")
	ErrNoAvailableGroupTicket     = errors.New("no group ticket with remaining tickets for the date pair")
	ErrInvalidGroupTicketDates    = errors.New("return date must be after departure date")
	ErrInvalidGroupTicketCapacity = errors.New("ticket count must be positive")
)

// Passenger errors
var (
	ErrPassengerNotFound       = errors.New("passenger not found")
	ErrPassengerNotAssigned    = errors.New("passenger is not assigned to a group ticket")
	ErrInvalidStatus           = errors.New("invalid booking status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// General errors
var (
	ErrInternal   = errors.New("internal server error")
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// AssignedPassenger - краткая информация о пассажире, привязанном к групповому билету
type AssignedPassenger struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Reference string    `json:"reference"` // PNR, а если его нет - номер паспорта
}

// DeleteConflictError возвращается при попытке удалить групповой билет с пассажирами без force
// Содержит все, что нужно оператору для осознанного подтверждения
type DeleteConflictError struct {
	GroupTicketID  uuid.UUID           `json:"group_ticket_id"`
	CanForceDelete bool                `json:"can_force_delete"`
	Passengers     []AssignedPassenger `json:"passengers"`
}

func (e *DeleteConflictError) Error() string {
	return fmt.Sprintf("group ticket %s has %d assigned passenger(s)", e.GroupTicketID, len(e.Passengers))
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrGroupTicketHasPassengers)
func (e *DeleteConflictError) Unwrap() error {
	return ErrGroupTicketHasPassengers
}
