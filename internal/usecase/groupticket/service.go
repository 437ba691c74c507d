package groupticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/pkg/money"
	"github.com/bdticketpro/ticketpro/internal/repository"
	"github.com/bdticketpro/ticketpro/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CreateRequest - запрос на создание групповой партии билетов
type CreateRequest struct {
	GroupName     string             `json:"group_name"`
	PackageType   domain.PackageType `json:"package_type"`
	DepartureDate string             `json:"departure_date" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate    string             `json:"return_date" validate:"omitempty,datetime=2006-01-02"`
	TicketCount   int                `json:"ticket_count" validate:"gte=0"`
	TotalCost     int64              `json:"total_cost" validate:"gte=0"`
	AgentName     string             `json:"agent_name"`
	AgentContact  string             `json:"agent_contact,omitempty"`
	PurchaseNotes string             `json:"purchase_notes,omitempty" validate:"max=2000"`
	Outbound      domain.FlightLeg   `json:"outbound"`
	Return        domain.FlightLeg   `json:"return"`
}

// UpdateRequest - частичное изменение партии, nil поля не меняются
// remaining_tickets напрямую не редактируется
type UpdateRequest struct {
	GroupName     *string             `json:"group_name,omitempty"`
	PackageType   *domain.PackageType `json:"package_type,omitempty"`
	DepartureDate *string             `json:"departure_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate    *string             `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TicketCount   *int                `json:"ticket_count,omitempty" validate:"omitempty,gte=0"`
	TotalCost     *int64              `json:"total_cost,omitempty" validate:"omitempty,gte=0"`
	AgentName     *string             `json:"agent_name,omitempty"`
	AgentContact  *string             `json:"agent_contact,omitempty"`
	PurchaseNotes *string             `json:"purchase_notes,omitempty" validate:"omitempty,max=2000"`
	Outbound      *domain.FlightLeg   `json:"outbound,omitempty"`
	Return        *domain.FlightLeg   `json:"return,omitempty"`
}

// DeleteResult - итог удаления партии
type DeleteResult struct {
	ID                   uuid.UUID `json:"id"`
	UnassignedPassengers int64     `json:"unassigned_passengers"`
}

// Summary - финансовая сводка по партии
type Summary struct {
	GroupTicket     *domain.GroupTicketBatch `json:"group_ticket"`
	State           domain.AllocationState   `json:"state"`
	AssignedCount   int                      `json:"assigned_count"`
	Revenue         float64                  `json:"revenue"`
	Cost            float64                  `json:"cost"`
	Profit          float64                  `json:"profit"`
	Margin          float64                  `json:"margin"`
	CollectedAmount float64                  `json:"collected_amount"`
	DueAmount       float64                  `json:"due_amount"`
}

// Service содержит бизнес-логику пулов групповых билетов
type Service struct {
	groupTicketRepo repository.GroupTicketRepository
	passengerRepo   repository.PassengerRepository
	logger          logger.Logger
	now             func() time.Time
}

// NewService создает новый экземпляр GroupTicketService
func NewService(
	groupTicketRepo repository.GroupTicketRepository,
	passengerRepo repository.PassengerRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		groupTicketRepo: groupTicketRepo,
		passengerRepo:   passengerRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// Create проверяет и сохраняет новую партию
// Возвращает партию с ID и remaining_tickets = ticket_count, плюс предупреждения валидации
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*domain.GroupTicketBatch, []string, error) {
	departure, depResult := validation.ParseCalendarDate(req.DepartureDate, "Departure date")
	ret, retResult := validation.ParseCalendarDate(req.ReturnDate, "Return date")

	batch := &domain.GroupTicketBatch{
		GroupName:     strings.TrimSpace(req.GroupName),
		PackageType:   req.PackageType,
		DepartureDate: departure,
		ReturnDate:    ret,
		TicketCount:   req.TicketCount,
		TotalCost:     req.TotalCost,
		AgentName:     strings.TrimSpace(req.AgentName),
		AgentContact:  strings.TrimSpace(req.AgentContact),
		PurchaseNotes: req.PurchaseNotes,
		Outbound:      req.Outbound,
		Return:        req.Return,
	}
	batch.RecalculateAverageCost()

	result := validation.ValidateGroupTicket(batch, s.now()).Merge(depResult, retResult)
	if err := result.Err(); err != nil {
		return nil, nil, err
	}

	if err := s.groupTicketRepo.Create(ctx, batch); err != nil {
		s.logger.Error("Failed to create group ticket", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil, fmt.Errorf("failed to create group ticket: %w", err)
	}

	s.logger.Info("Group ticket created", map[string]interface{}{
		"group_ticket_id": batch.ID,
		"package_type":    batch.PackageType,
		"ticket_count":    batch.TicketCount,
		"total_cost":      batch.TotalCost,
	})

	return batch, result.Warnings, nil
}

// List возвращает партии категории с поиском по группе, агенту и номерам рейсов
func (s *Service) List(ctx context.Context, packageType domain.PackageType, search string) ([]*domain.GroupTicketBatch, error) {
	if packageType != "" && !packageType.IsValid() {
		return nil, domain.ErrInvalidPackageType
	}

	batches, err := s.groupTicketRepo.List(ctx, repository.GroupTicketFilter{
		PackageType: packageType,
		Search:      search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list group tickets: %w", err)
	}

	return batches, nil
}

// GetByID возвращает партию по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, error) {
	return s.groupTicketRepo.GetByID(ctx, id)
}

// Update применяет частичные изменения, перепроверяет партию и пересчитывает среднюю стоимость
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*domain.GroupTicketBatch, []string, error) {
	batch, err := s.groupTicketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var dates []*validation.Result

	if req.GroupName != nil {
		batch.GroupName = strings.TrimSpace(*req.GroupName)
	}
	if req.PackageType != nil {
		batch.PackageType = *req.PackageType
	}
	if req.DepartureDate != nil {
		d, r := validation.ParseCalendarDate(*req.DepartureDate, "Departure date")
		batch.DepartureDate = d
		dates = append(dates, r)
	}
	if req.ReturnDate != nil {
		d, r := validation.ParseCalendarDate(*req.ReturnDate, "Return date")
		batch.ReturnDate = d
		dates = append(dates, r)
	}
	if req.TicketCount != nil {
		batch.TicketCount = *req.TicketCount
	}
	if req.TotalCost != nil {
		batch.TotalCost = *req.TotalCost
	}
	if req.AgentName != nil {
		batch.AgentName = strings.TrimSpace(*req.AgentName)
	}
	if req.AgentContact != nil {
		batch.AgentContact = strings.TrimSpace(*req.AgentContact)
	}
	if req.PurchaseNotes != nil {
		batch.PurchaseNotes = *req.PurchaseNotes
	}
	if req.Outbound != nil {
		batch.Outbound = *req.Outbound
	}
	if req.Return != nil {
		batch.Return = *req.Return
	}

	batch.RecalculateAverageCost()

	result := validation.ValidateGroupTicket(batch, s.now()).Merge(dates...)
	if err := result.Err(); err != nil {
		return nil, nil, err
	}

	if err := s.groupTicketRepo.Update(ctx, batch); err != nil {
		if errors.Is(err, domain.ErrTicketCountBelowAssigned) ||
			errors.Is(err, domain.ErrPackageTypeMismatch) ||
			errors.Is(err, domain.ErrGroupTicketNotFound) {
			return nil, nil, err
		}
		s.logger.Error("Failed to update group ticket", map[string]interface{}{
			"group_ticket_id": id,
			"error":           err.Error(),
		})
		return nil, nil, fmt.Errorf("failed to update group ticket: %w", err)
	}

	s.logger.Info("Group ticket updated", map[string]interface{}{
		"group_ticket_id":   batch.ID,
		"ticket_count":      batch.TicketCount,
		"remaining_tickets": batch.RemainingTickets,
	})

	return batch, result.Warnings, nil
}

// Delete удаляет партию в два этапа
// Без force при наличии привязанных пассажиров возвращает *domain.DeleteConflictError со списком,
// с force отвязывает пассажиров (сами пассажиры не удаляются) и удаляет партию в одной транзакции
func (s *Service) Delete(ctx context.Context, id uuid.UUID, force bool) (*DeleteResult, error) {
	if force {
		unassigned, err := s.groupTicketRepo.DeleteAndUnassign(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrGroupTicketNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to force delete group ticket: %w", err)
		}

		s.logger.Warn("Group ticket force deleted", map[string]interface{}{
			"group_ticket_id":       id,
			"unassigned_passengers": unassigned,
		})

		return &DeleteResult{ID: id, UnassignedPassengers: unassigned}, nil
	}

	// Пассажиров могут отвязать между DELETE и выборкой списка:
	// тогда подтверждать нечего, удаление повторяется один раз
	for attempt := 1; ; attempt++ {
		err := s.groupTicketRepo.Delete(ctx, id)
		switch {
		case err == nil:
			s.logger.Info("Group ticket deleted", map[string]interface{}{
				"group_ticket_id": id,
			})
			return &DeleteResult{ID: id}, nil

		case errors.Is(err, domain.ErrGroupTicketHasPassengers):
			passengers, listErr := s.passengerRepo.ListByGroupTicket(ctx, id)
			if listErr != nil {
				return nil, fmt.Errorf("failed to list assigned passengers: %w", listErr)
			}
			if len(passengers) == 0 && attempt < 2 {
				continue
			}

			conflict := &domain.DeleteConflictError{
				GroupTicketID:  id,
				CanForceDelete: true,
				Passengers:     make([]domain.AssignedPassenger, 0, len(passengers)),
			}
			for _, p := range passengers {
				conflict.Passengers = append(conflict.Passengers, p.AsAssigned())
			}
			return nil, conflict

		case errors.Is(err, domain.ErrGroupTicketNotFound):
			return nil, err

		default:
			return nil, fmt.Errorf("failed to delete group ticket: %w", err)
		}
	}
}

// FindAvailable возвращает партии с точным совпадением пары дат и свободными билетами
// Порядок - как вернуло хранилище (по времени создания), без пересортировки
func (s *Service) FindAvailable(ctx context.Context, packageType domain.PackageType, departure, ret time.Time) ([]*domain.GroupTicketBatch, error) {
	if !packageType.IsValid() {
		return nil, domain.ErrInvalidPackageType
	}

	batches, err := s.groupTicketRepo.FindAvailable(ctx, packageType, domain.DateOnly(departure), domain.DateOnly(ret))
	if err != nil {
		return nil, fmt.Errorf("failed to find available group tickets: %w", err)
	}

	// Хранилище уже фильтрует, но остаток мог устареть - не отдаем пустые пулы
	available := make([]*domain.GroupTicketBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsAvailable() {
			available = append(available, b)
		}
	}

	return available, nil
}

// GroupByDates возвращает сводку партий категории по парам дат
func (s *Service) GroupByDates(ctx context.Context, packageType domain.PackageType) ([]*domain.DateGroupedView, error) {
	batches, err := s.List(ctx, packageType, "")
	if err != nil {
		return nil, err
	}

	return domain.GroupByDates(batches), nil
}

// Summary считает выручку, себестоимость и прибыль по привязанным пассажирам
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	batch, passengers, err := s.loadWithPassengers(ctx, id)
	if err != nil {
		return nil, err
	}

	var revenue, collected, due float64
	for _, p := range passengers {
		revenue = money.SafeAdd(revenue, p.PackagePrice)
		collected = money.SafeAdd(collected, p.PaidAmount)
		due = money.SafeAdd(due, p.DueAmount())
	}

	assigned := batch.AssignedCount()
	cost := money.SafeMultiply(float64(batch.AverageCostPerTicket), float64(assigned))
	profit := money.SafeAdd(revenue, -cost)

	return &Summary{
		GroupTicket:     batch,
		State:           batch.State(),
		AssignedCount:   assigned,
		Revenue:         revenue,
		Cost:            cost,
		Profit:          profit,
		Margin:          money.CalculatePercentage(profit, revenue),
		CollectedAmount: collected,
		DueAmount:       due,
	}, nil
}

// loadWithPassengers параллельно загружает партию и ее пассажиров
func (s *Service) loadWithPassengers(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, []*domain.Passenger, error) {
	var (
		batch      *domain.GroupTicketBatch
		passengers []*domain.Passenger
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batch, err = s.groupTicketRepo.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		passengers, err = s.passengerRepo.ListByGroupTicket(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrGroupTicketNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to load group ticket: %w", err)
	}

	return batch, passengers, nil
}
