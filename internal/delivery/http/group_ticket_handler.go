package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/usecase/groupticket"
	"github.com/bdticketpro/ticketpro/internal/validation"
	"github.com/google/uuid"
)

// GroupTicketService - операции с пулами групповых билетов
type GroupTicketService interface {
	Create(ctx context.Context, req *groupticket.CreateRequest) (*domain.GroupTicketBatch, []string, error)
	List(ctx context.Context, packageType domain.PackageType, search string) ([]*domain.GroupTicketBatch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, error)
	Update(ctx context.Context, id uuid.UUID, req *groupticket.UpdateRequest) (*domain.GroupTicketBatch, []string, error)
	Delete(ctx context.Context, id uuid.UUID, force bool) (*groupticket.DeleteResult, error)
	FindAvailable(ctx context.Context, packageType domain.PackageType, departure, ret time.Time) ([]*domain.GroupTicketBatch, error)
	GroupByDates(ctx context.Context, packageType domain.PackageType) ([]*domain.DateGroupedView, error)
	Summary(ctx context.Context, id uuid.UUID) (*groupticket.Summary, error)
	Manifest(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// GroupTicketHandler обрабатывает запросы к групповым билетам
type GroupTicketHandler struct {
	service GroupTicketService
	logger  logger.Logger
}

// NewGroupTicketHandler создает новый handler
func NewGroupTicketHandler(service GroupTicketService, logger logger.Logger) *GroupTicketHandler {
	return &GroupTicketHandler{
		service: service,
		logger:  logger,
	}
}

// Create регистрирует закупленную партию
// POST /api/v1/group-tickets
func (h *GroupTicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupticket.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	batch, warnings, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create group ticket")
		return
	}

	respondData(w, http.StatusCreated, batch, warnings...)
}

// List возвращает партии с фильтром по категории и поиском
// GET /api/v1/group-tickets?package_type=&search=
func (h *GroupTicketHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	batches, err := h.service.List(r.Context(), domain.PackageType(q.Get("package_type")), q.Get("search"))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list group tickets")
		return
	}

	respondData(w, http.StatusOK, batches)
}

// Grouped возвращает партии, сгруппированные по паре дат
// GET /api/v1/group-tickets/grouped?package_type=
func (h *GroupTicketHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.GroupByDates(r.Context(), domain.PackageType(r.URL.Query().Get("package_type")))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to group group tickets")
		return
	}

	respondData(w, http.StatusOK, views)
}

// Available возвращает партии со свободными билетами на точную пару дат
// GET /api/v1/group-tickets/available?package_type=&departure_date=&return_date=
func (h *GroupTicketHandler) Available(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	packageType := domain.PackageType(q.Get("package_type"))
	if !packageType.IsValid() {
		respondError(w, http.StatusBadRequest, domain.ErrInvalidPackageType.Error())
		return
	}

	departure, depResult := validation.ParseCalendarDate(q.Get("departure_date"), "Departure date")
	ret, retResult := validation.ParseCalendarDate(q.Get("return_date"), "Return date")
	result := depResult.Merge(retResult)
	if result.IsValid {
		result.Merge(validation.ValidateDateRange(departure, ret))
	}
	if err := result.Err(); err != nil {
		handleServiceError(w, h.logger, err, "Failed to find available group tickets")
		return
	}

	batches, err := h.service.FindAvailable(r.Context(), packageType, departure, ret)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to find available group tickets")
		return
	}

	respondData(w, http.StatusOK, batches)
}

// GetByID возвращает партию
// GET /api/v1/group-tickets/{id}
func (h *GroupTicketHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid group ticket ID")
		return
	}

	batch, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get group ticket")
		return
	}

	respondData(w, http.StatusOK, batch)
}

// Update изменяет партию (только администратор)
// PUT /api/v1/group-tickets/{id}
func (h *GroupTicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid group ticket ID")
		return
	}

	var req groupticket.UpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	batch, warnings, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to update group ticket")
		return
	}

	respondData(w, http.StatusOK, batch, warnings...)
}

// Delete удаляет партию (только администратор)
// Без force партия с пассажирами не удаляется: 409 со списком пассажиров
// DELETE /api/v1/group-tickets/{id}?force=true
func (h *GroupTicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid group ticket ID")
		return
	}

	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		force, err = strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid force parameter")
			return
		}
	}

	result, err := h.service.Delete(r.Context(), id, force)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to delete group ticket")
		return
	}

	respondData(w, http.StatusOK, result)
}

// Summary возвращает финансовую сводку по партии
// GET /api/v1/group-tickets/{id}/summary
func (h *GroupTicketHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid group ticket ID")
		return
	}

	summary, err := h.service.Summary(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to build group ticket summary")
		return
	}

	respondData(w, http.StatusOK, summary)
}

// Manifest отдает PDF манифест пассажиров партии
// GET /api/v1/group-tickets/{id}/manifest
func (h *GroupTicketHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid group ticket ID")
		return
	}

	data, filename, err := h.service.Manifest(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to generate manifest")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
