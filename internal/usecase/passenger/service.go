package passenger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/repository"
	"github.com/bdticketpro/ticketpro/internal/validation"
	"github.com/google/uuid"
)

// CreateRequest - запрос на создание пассажира
// Билет из пула занимается либо по явному group_ticket_id,
// либо автоматически (auto_assign) по паре дат - первая партия со свободными билетами
type CreateRequest struct {
	FullName       string             `json:"full_name"`
	PassportNumber string             `json:"passport_number"`
	PNR            string             `json:"pnr,omitempty" validate:"omitempty,alphanum,max=16"`
	Phone          string             `json:"phone"`
	Email          string             `json:"email,omitempty"`
	PackageType    domain.PackageType `json:"package_type" validate:"required"`
	PackagePrice   float64            `json:"package_price" validate:"gte=0"`
	PaidAmount     float64            `json:"paid_amount" validate:"gte=0"`
	Notes          string             `json:"notes,omitempty" validate:"max=2000"`
	GroupTicketID  *uuid.UUID         `json:"group_ticket_id,omitempty"`
	AutoAssign     bool               `json:"auto_assign,omitempty"`
	DepartureDate  string             `json:"departure_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate     string             `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateRequest - частичное изменение данных пассажира
type UpdateRequest struct {
	FullName       *string             `json:"full_name,omitempty"`
	PassportNumber *string             `json:"passport_number,omitempty"`
	PNR            *string             `json:"pnr,omitempty" validate:"omitempty,alphanum,max=16"`
	Phone          *string             `json:"phone,omitempty"`
	Email          *string             `json:"email,omitempty"`
	PackageType    *domain.PackageType `json:"package_type,omitempty"`
	PackagePrice   *float64            `json:"package_price,omitempty" validate:"omitempty,gte=0"`
	PaidAmount     *float64            `json:"paid_amount,omitempty" validate:"omitempty,gte=0"`
	Notes          *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListFilter - параметры списка пассажиров
type ListFilter struct {
	PackageType   domain.PackageType
	GroupTicketID *uuid.UUID
	Search        string
}

// GroupTicketFinder - поиск партий для привязки
type GroupTicketFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, error)
	FindAvailable(ctx context.Context, packageType domain.PackageType, departure, ret time.Time) ([]*domain.GroupTicketBatch, error)
}

// Service содержит бизнес-логику бронирований пассажиров
type Service struct {
	passengerRepo repository.PassengerRepository
	groupTickets  GroupTicketFinder
	logger        logger.Logger
}

// NewService создает новый экземпляр PassengerService
func NewService(
	passengerRepo repository.PassengerRepository,
	groupTickets GroupTicketFinder,
	logger logger.Logger,
) *Service {
	return &Service{
		passengerRepo: passengerRepo,
		groupTickets:  groupTickets,
		logger:        logger,
	}
}

// Create проверяет и сохраняет пассажира, при необходимости занимая билет из пула
// Если между выбором партии и записью последний билет занят другим бронированием,
// возвращается ErrGroupTicketSoldOut без повторной попытки
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*domain.Passenger, []string, error) {
	result := validation.ValidatePassenger(validation.PassengerInput{
		FullName:       req.FullName,
		PassportNumber: req.PassportNumber,
		Phone:          req.Phone,
		Email:          req.Email,
	})
	if err := result.Err(); err != nil {
		return nil, nil, err
	}

	if !req.PackageType.IsValid() {
		return nil, nil, domain.ErrInvalidPackageType
	}

	p := &domain.Passenger{
		FullName:       strings.TrimSpace(req.FullName),
		PassportNumber: domain.NormalizePassportNumber(req.PassportNumber),
		PNR:            strings.ToUpper(strings.TrimSpace(req.PNR)),
		Phone:          validation.NormalizePhone(req.Phone),
		Email:          domain.NormalizeEmail(req.Email),
		PackageType:    req.PackageType,
		Status:         domain.StatusPending,
		PackagePrice:   req.PackagePrice,
		PaidAmount:     req.PaidAmount,
		Notes:          req.Notes,
		GroupTicketID:  req.GroupTicketID,
	}

	if p.GroupTicketID == nil && req.AutoAssign {
		batch, err := s.pickGroupTicket(ctx, req.PackageType, req.DepartureDate, req.ReturnDate)
		if err != nil {
			return nil, nil, err
		}
		p.GroupTicketID = &batch.ID
	}

	if err := s.passengerRepo.Create(ctx, p); err != nil {
		if isAllocationError(err) {
			s.logger.Warn("Group ticket allocation rejected", map[string]interface{}{
				"group_ticket_id": p.GroupTicketID,
				"error":           err.Error(),
			})
			return nil, nil, err
		}
		s.logger.Error("Failed to create passenger", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil, fmt.Errorf("failed to create passenger: %w", err)
	}

	s.logger.Info("Passenger created", map[string]interface{}{
		"passenger_id":    p.ID,
		"package_type":    p.PackageType,
		"group_ticket_id": p.GroupTicketID,
	})

	return p, result.Warnings, nil
}

// pickGroupTicket выбирает первую партию со свободными билетами на пару дат
func (s *Service) pickGroupTicket(ctx context.Context, packageType domain.PackageType, departure, ret string) (*domain.GroupTicketBatch, error) {
	dep, depResult := validation.ParseCalendarDate(departure, "Departure date")
	rt, retResult := validation.ParseCalendarDate(ret, "Return date")

	result := depResult.Merge(retResult)
	if result.IsValid {
		result.Merge(validation.ValidateDateRange(dep, rt))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	batches, err := s.groupTickets.FindAvailable(ctx, packageType, dep, rt)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, domain.ErrNoAvailableGroupTicket
	}

	return batches[0], nil
}

// GetByID возвращает пассажира вместе с партией, к которой он привязан
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Passenger, error) {
	p, err := s.passengerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AllowedStatuses = domain.AllowedTransitions(p.Status)

	if p.IsAssigned() {
		batch, err := s.groupTickets.GetByID(ctx, *p.GroupTicketID)
		if err != nil && !errors.Is(err, domain.ErrGroupTicketNotFound) {
			return nil, fmt.Errorf("failed to load group ticket: %w", err)
		}
		p.GroupTicket = batch
	}

	return p, nil
}

// List возвращает пассажиров по фильтру
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*domain.Passenger, error) {
	if filter.PackageType != "" && !filter.PackageType.IsValid() {
		return nil, domain.ErrInvalidPackageType
	}

	passengers, err := s.passengerRepo.List(ctx, repository.PassengerFilter{
		PackageType:   filter.PackageType,
		GroupTicketID: filter.GroupTicketID,
		Search:        filter.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list passengers: %w", err)
	}

	return passengers, nil
}

// Update изменяет данные пассажира без привязки и статуса
// Категорию пакета нельзя сменить, пока пассажир занимает билет партии
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*domain.Passenger, []string, error) {
	p, err := s.passengerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.PassportNumber != nil {
		p.PassportNumber = domain.NormalizePassportNumber(*req.PassportNumber)
	}
	if req.PNR != nil {
		p.PNR = strings.ToUpper(strings.TrimSpace(*req.PNR))
	}
	if req.Phone != nil {
		p.Phone = validation.NormalizePhone(*req.Phone)
	}
	if req.Email != nil {
		p.Email = domain.NormalizeEmail(*req.Email)
	}
	if req.PackagePrice != nil {
		p.PackagePrice = *req.PackagePrice
	}
	if req.PaidAmount != nil {
		p.PaidAmount = *req.PaidAmount
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if req.PackageType != nil && *req.PackageType != p.PackageType {
		if !req.PackageType.IsValid() {
			return nil, nil, domain.ErrInvalidPackageType
		}
		if p.IsAssigned() {
			return nil, nil, domain.ErrPackageTypeMismatch
		}
		p.PackageType = *req.PackageType
	}

	result := validation.ValidatePassenger(validation.PassengerInput{
		FullName:       p.FullName,
		PassportNumber: p.PassportNumber,
		Phone:          p.Phone,
		Email:          p.Email,
	})
	if err := result.Err(); err != nil {
		return nil, nil, err
	}

	if err := s.passengerRepo.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrPassengerNotFound) || errors.Is(err, domain.ErrPackageTypeMismatch) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to update passenger: %w", err)
	}

	s.logger.Info("Passenger updated", map[string]interface{}{
		"passenger_id": p.ID,
	})

	return p, result.Warnings, nil
}

// ChangeStatus меняет статус брони по таблице переходов с учетом роли оператора
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, next domain.BookingStatus, role domain.UserRole) (*domain.Passenger, error) {
	p, err := s.passengerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = validation.CheckStatusChange(p.Status, next, validation.StatusChangeContext{
		Role:   role,
		Amount: p.PackagePrice,
	})
	if err != nil {
		s.logger.Warn("Status change rejected", map[string]interface{}{
			"passenger_id": id,
			"from":         p.Status,
			"to":           next,
			"error":        err.Error(),
		})
		return nil, err
	}

	if err := s.passengerRepo.UpdateStatus(ctx, id, next); err != nil {
		if errors.Is(err, domain.ErrPassengerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info("Passenger status changed", map[string]interface{}{
		"passenger_id": id,
		"from":         p.Status,
		"to":           next,
	})

	p.Status = next
	return p, nil
}

// Assign привязывает пассажира к партии (или переносит из другой партии)
func (s *Service) Assign(ctx context.Context, id, groupTicketID uuid.UUID) (*domain.Passenger, error) {
	if err := s.passengerRepo.Assign(ctx, id, groupTicketID); err != nil {
		if isAllocationError(err) || errors.Is(err, domain.ErrPassengerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to assign passenger: %w", err)
	}

	s.logger.Info("Passenger assigned to group ticket", map[string]interface{}{
		"passenger_id":    id,
		"group_ticket_id": groupTicketID,
	})

	return s.GetByID(ctx, id)
}

// Unassign отвязывает пассажира и возвращает билет в пул
func (s *Service) Unassign(ctx context.Context, id uuid.UUID) (*domain.Passenger, error) {
	if err := s.passengerRepo.Unassign(ctx, id); err != nil {
		if errors.Is(err, domain.ErrPassengerNotAssigned) || errors.Is(err, domain.ErrPassengerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to unassign passenger: %w", err)
	}

	s.logger.Info("Passenger unassigned from group ticket", map[string]interface{}{
		"passenger_id": id,
	})

	return s.GetByID(ctx, id)
}

// Delete удаляет пассажира, его билет возвращается в пул
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.passengerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrPassengerNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete passenger: %w", err)
	}

	s.logger.Info("Passenger deleted", map[string]interface{}{
		"passenger_id": id,
	})

	return nil
}

func isAllocationError(err error) bool {
	return errors.Is(err, domain.ErrGroupTicketSoldOut) ||
		errors.Is(err, domain.ErrGroupTicketNotFound) ||
		errors.Is(err, domain.ErrPackageTypeMismatch)
}
