package http

import (
	"context"
	"net/http"

	"github.com/bdticketpro/ticketpro/internal/delivery/http/middleware"
	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/usecase/passenger"
	"github.com/google/uuid"
)

// PassengerService - операции с бронированиями пассажиров
type PassengerService interface {
	Create(ctx context.Context, req *passenger.CreateRequest) (*domain.Passenger, []string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Passenger, error)
	List(ctx context.Context, filter passenger.ListFilter) ([]*domain.Passenger, error)
	Update(ctx context.Context, id uuid.UUID, req *passenger.UpdateRequest) (*domain.Passenger, []string, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, next domain.BookingStatus, role domain.UserRole) (*domain.Passenger, error)
	Assign(ctx context.Context, id, groupTicketID uuid.UUID) (*domain.Passenger, error)
	Unassign(ctx context.Context, id uuid.UUID) (*domain.Passenger, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChangeStatusRequest - смена статуса брони
type ChangeStatusRequest struct {
	Status domain.BookingStatus `json:"status" validate:"required"`
}

// AssignRequest - привязка к партии
type AssignRequest struct {
	GroupTicketID uuid.UUID `json:"group_ticket_id" validate:"required"`
}

// PassengerHandler обрабатывает запросы к пассажирам
type PassengerHandler struct {
	service PassengerService
	logger  logger.Logger
}

// NewPassengerHandler создает новый handler
func NewPassengerHandler(service PassengerService, logger logger.Logger) *PassengerHandler {
	return &PassengerHandler{
		service: service,
		logger:  logger,
	}
}

// Create создает пассажира и, если указана партия или auto_assign, занимает билет из пула
// POST /api/v1/passengers
func (h *PassengerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req passenger.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, warnings, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create passenger")
		return
	}

	respondData(w, http.StatusCreated, p, warnings...)
}

// List возвращает пассажиров
// GET /api/v1/passengers?package_type=&group_ticket_id=&search=
func (h *PassengerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := passenger.ListFilter{
		PackageType: domain.PackageType(q.Get("package_type")),
		Search:      q.Get("search"),
	}
	if v := q.Get("group_ticket_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid group ticket ID")
			return
		}
		filter.GroupTicketID = &id
	}

	passengers, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list passengers")
		return
	}

	respondData(w, http.StatusOK, passengers)
}

// GetByID возвращает пассажира вместе с его партией
// GET /api/v1/passengers/{id}
func (h *PassengerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid passenger ID")
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get passenger")
		return
	}

	respondData(w, http.StatusOK, p)
}

// Update изменяет данные пассажира
// PUT /api/v1/passengers/{id}
func (h *PassengerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid passenger ID")
		return
	}

	var req passenger.UpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, warnings, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to update passenger")
		return
	}

	respondData(w, http.StatusOK, p, warnings...)
}

// ChangeStatus меняет статус брони с учетом роли оператора
// PATCH /api/v1/passengers/{id}/status
func (h *PassengerHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid passenger ID")
		return
	}

	var req ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.ChangeStatus(r.Context(), id, req.Status, claims.Role)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to change passenger status")
		return
	}

	respondData(w, http.StatusOK, p)
}

// Assign привязывает пассажира к партии
// PUT /api/v1/passengers/{id}/group-ticket
func (h *PassengerHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid passenger ID")
		return
	}

	var req AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Assign(r.Context(), id, req.GroupTicketID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to assign passenger")
		return
	}

	respondData(w, http.StatusOK, p)
}

// Unassign отвязывает пассажира от партии
// DELETE /api/v1/passengers/{id}/group-ticket
func (h *PassengerHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid passenger ID")
		return
	}

	p, err := h.service.Unassign(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to unassign passenger")
		return
	}

	respondData(w, http.StatusOK, p)
}

// Delete удаляет пассажира
// DELETE /api/v1/passengers/{id}
func (h *PassengerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid passenger ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "Failed to delete passenger")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Passenger deleted",
	})
}
