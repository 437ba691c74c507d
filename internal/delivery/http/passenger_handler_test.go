package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/usecase/passenger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPassengerService - мок для сервиса пассажиров
type MockPassengerService struct {
	mock.Mock
}

func (m *MockPassengerService) Create(ctx context.Context, req *passenger.CreateRequest) (*domain.Passenger, []string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Passenger), args.Get(1).([]string), args.Error(2)
}

func (m *MockPassengerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockPassengerService) List(ctx context.Context, filter passenger.ListFilter) ([]*domain.Passenger, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Passenger), args.Error(1)
}

func (m *MockPassengerService) Update(ctx context.Context, id uuid.UUID, req *passenger.UpdateRequest) (*domain.Passenger, []string, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Passenger), args.Get(1).([]string), args.Error(2)
}

func (m *MockPassengerService) ChangeStatus(ctx context.Context, id uuid.UUID, next domain.BookingStatus, role domain.UserRole) (*domain.Passenger, error) {
	args := m.Called(ctx, id, next, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockPassengerService) Assign(ctx context.Context, id, groupTicketID uuid.UUID) (*domain.Passenger, error) {
	args := m.Called(ctx, id, groupTicketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockPassengerService) Unassign(ctx context.Context, id uuid.UUID) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockPassengerService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newPassengerHandler() (*PassengerHandler, *MockPassengerService) {
	svc := new(MockPassengerService)
	return NewPassengerHandler(svc, logger.NewNoop()), svc
}

func TestPassengerHandler_Create(t *testing.T) {
	gid := uuid.New()
	body := map[string]interface{}{
		"full_name":       "Abdul Karim",
		"passport_number": "BX1234567",
		"phone":           "01712345678",
		"package_type":    "with-transport",
		"package_price":   185000,
		"group_ticket_id": gid.String(),
	}

	tests := []struct {
		name           string
		mockSetup      func(*MockPassengerService)
		expectedStatus int
	}{
		{
			name: "билет занят из партии",
			mockSetup: func(m *MockPassengerService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(r *passenger.CreateRequest) bool {
					return r.GroupTicketID != nil && *r.GroupTicketID == gid
				})).Return(&domain.Passenger{ID: uuid.New(), GroupTicketID: &gid, Status: domain.StatusPending}, []string{}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "в партии не осталось билетов",
			mockSetup: func(m *MockPassengerService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, nil, domain.ErrGroupTicketSoldOut)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "категория пакета не совпадает с партией",
			mockSetup: func(m *MockPassengerService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, nil, domain.ErrPackageTypeMismatch)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "партия не найдена",
			mockSetup: func(m *MockPassengerService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, nil, domain.ErrGroupTicketNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, svc := newPassengerHandler()
			tt.mockSetup(svc)

			w := httptest.NewRecorder()
			handler.Create(w, newJSONRequest(t, http.MethodPost, "/api/v1/passengers", body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestPassengerHandler_Create_NegativeAmounts(t *testing.T) {
	handler, svc := newPassengerHandler()

	w := httptest.NewRecorder()
	handler.Create(w, newJSONRequest(t, http.MethodPost, "/api/v1/passengers", map[string]interface{}{
		"full_name":     "Abdul Karim",
		"package_type":  "with-transport",
		"package_price": -1,
		"paid_amount":   -5,
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, decodeBody(t, w)["errors"], 2)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPassengerHandler_ChangeStatus(t *testing.T) {
	t.Run("роль берется из токена", func(t *testing.T) {
		handler, svc := newPassengerHandler()
		id := uuid.New()
		svc.On("ChangeStatus", mock.Anything, id, domain.StatusCancelled, domain.RoleStaff).
			Return(nil, domain.ErrForbidden)

		req := newJSONRequest(t, http.MethodPatch, "/api/v1/passengers/"+id.String()+"/status", map[string]string{
			"status": "cancelled",
		})
		req = withOperator(withURLParam(req, "id", id.String()), domain.RoleStaff)
		w := httptest.NewRecorder()

		handler.ChangeStatus(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("недопустимый переход", func(t *testing.T) {
		handler, svc := newPassengerHandler()
		id := uuid.New()
		svc.On("ChangeStatus", mock.Anything, id, domain.StatusConfirmed, domain.RoleAdmin).
			Return(nil, domain.ErrInvalidStatusTransition)

		req := newJSONRequest(t, http.MethodPatch, "/api/v1/passengers/"+id.String()+"/status", map[string]string{
			"status": "confirmed",
		})
		req = withOperator(withURLParam(req, "id", id.String()), domain.RoleAdmin)
		w := httptest.NewRecorder()

		handler.ChangeStatus(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("без статуса", func(t *testing.T) {
		handler, _ := newPassengerHandler()
		id := uuid.New()

		req := newJSONRequest(t, http.MethodPatch, "/api/v1/passengers/"+id.String()+"/status", map[string]string{})
		req = withOperator(withURLParam(req, "id", id.String()), domain.RoleAdmin)
		w := httptest.NewRecorder()

		handler.ChangeStatus(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, []interface{}{"status is required"}, decodeBody(t, w)["errors"])
	})
}

func TestPassengerHandler_AssignAndUnassign(t *testing.T) {
	t.Run("без group_ticket_id", func(t *testing.T) {
		handler, svc := newPassengerHandler()
		id := uuid.New()

		req := newJSONRequest(t, http.MethodPut, "/api/v1/passengers/"+id.String()+"/group-ticket", map[string]string{})
		w := httptest.NewRecorder()

		handler.Assign(w, withURLParam(req, "id", id.String()))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		svc.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("перенос в исчерпанную партию", func(t *testing.T) {
		handler, svc := newPassengerHandler()
		id, gid := uuid.New(), uuid.New()
		svc.On("Assign", mock.Anything, id, gid).Return(nil, domain.ErrGroupTicketSoldOut)

		req := newJSONRequest(t, http.MethodPut, "/api/v1/passengers/"+id.String()+"/group-ticket", map[string]string{
			"group_ticket_id": gid.String(),
		})
		w := httptest.NewRecorder()

		handler.Assign(w, withURLParam(req, "id", id.String()))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("отвязка непривязанного", func(t *testing.T) {
		handler, svc := newPassengerHandler()
		id := uuid.New()
		svc.On("Unassign", mock.Anything, id).Return(nil, domain.ErrPassengerNotAssigned)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/passengers/"+id.String()+"/group-ticket", nil)
		w := httptest.NewRecorder()

		handler.Unassign(w, withURLParam(req, "id", id.String()))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPassengerHandler_List(t *testing.T) {
	t.Run("фильтр по партии", func(t *testing.T) {
		handler, svc := newPassengerHandler()
		gid := uuid.New()
		svc.On("List", mock.Anything, passenger.ListFilter{GroupTicketID: &gid, Search: "karim"}).
			Return([]*domain.Passenger{{ID: uuid.New()}}, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/passengers?group_ticket_id="+gid.String()+"&search=karim", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["data"], 1)
	})

	t.Run("невалидный group_ticket_id", func(t *testing.T) {
		handler, _ := newPassengerHandler()

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/passengers?group_ticket_id=abc", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPassengerHandler_Update_PNRFormat(t *testing.T) {
	tests := []struct {
		name           string
		pnr            string
		expectedStatus int
	}{
		{"буквы и цифры", "XK9LQ2", http.StatusOK},
		{"с дефисом", "XK-9LQ2", http.StatusUnprocessableEntity},
		{"с пробелом", "XK9 LQ2", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, svc := newPassengerHandler()
			id := uuid.New()
			svc.On("Update", mock.Anything, id, mock.Anything).
				Return(&domain.Passenger{ID: id, PNR: tt.pnr}, []string{}, nil).Maybe()

			req := newJSONRequest(t, http.MethodPut, "/api/v1/passengers/"+id.String(), map[string]string{
				"pnr": tt.pnr,
			})
			w := httptest.NewRecorder()

			handler.Update(w, withURLParam(req, "id", id.String()))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
