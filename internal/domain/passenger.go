package domain

import (
	"strings"
	"time"

	"github.com/bdticketpro/ticketpro/internal/pkg/money"
	"github.com/google/uuid"
)

// Passenger - пассажир Umrah пакета
// Привязка к групповому билету хранится одной ссылкой GroupTicketID,
// поэтому пассажир не может занимать места в двух партиях одновременно
type Passenger struct {
	ID             uuid.UUID     `json:"id"`
	FullName       string        `json:"full_name"`
	PassportNumber string        `json:"passport_number"`
	PNR            string        `json:"pnr,omitempty"`
	Phone          string        `json:"phone"`
	Email          string        `json:"email,omitempty"`
	PackageType    PackageType   `json:"package_type"`
	GroupTicketID  *uuid.UUID    `json:"group_ticket_id,omitempty"`
	Status         BookingStatus `json:"status"`
	PackagePrice   float64       `json:"package_price"`
	PaidAmount     float64       `json:"paid_amount"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Связанные данные (не хранятся в БД, заполняются при необходимости)
	GroupTicket     *GroupTicketBatch `json:"group_ticket,omitempty"`
	AllowedStatuses []BookingStatus   `json:"allowed_statuses,omitempty"` // куда можно перевести бронь по таблице переходов
}

// DueAmount возвращает остаток к оплате
func (p *Passenger) DueAmount() float64 {
	return money.SafeAdd(p.PackagePrice, -p.PaidAmount)
}

// IsAssigned проверяет, занимает ли пассажир место в групповом билете
func (p *Passenger) IsAssigned() bool {
	return p.GroupTicketID != nil && *p.GroupTicketID != uuid.Nil
}

// Reference возвращает PNR, а при его отсутствии - номер паспорта
func (p *Passenger) Reference() string {
	if pnr := strings.TrimSpace(p.PNR); pnr != "" {
		return pnr
	}
	return p.PassportNumber
}

// AsAssigned возвращает краткую запись для списка при конфликте удаления
func (p *Passenger) AsAssigned() AssignedPassenger {
	return AssignedPassenger{
		ID:        p.ID,
		Name:      p.FullName,
		Reference: p.Reference(),
	}
}

// NormalizePassportNumber убирает пробелы и приводит номер паспорта к верхнему регистру
func NormalizePassportNumber(passport string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(passport), " ", ""))
}
