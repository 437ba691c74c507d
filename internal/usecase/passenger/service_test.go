package passenger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/repository/mocks"
	"github.com/bdticketpro/ticketpro/internal/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupTicketBatch), args.Error(1)
}

func (m *MockFinder) FindAvailable(ctx context.Context, packageType domain.PackageType, departure, ret time.Time) ([]*domain.GroupTicketBatch, error) {
	args := m.Called(ctx, packageType, departure, ret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupTicketBatch), args.Error(1)
}

func newTestService() (*Service, *mocks.PassengerRepository, *MockFinder) {
	repo := new(mocks.PassengerRepository)
	finder := new(MockFinder)
	return NewService(repo, finder, logger.NewNoop()), repo, finder
}

func validRequest() *CreateRequest {
	return &CreateRequest{
		FullName:       "Abdul Karim",
		PassportNumber: "bx 1234567",
		Phone:          "+880 1712-345678",
		PackageType:    domain.PackageWithTransport,
		PackagePrice:   185000,
		PaidAmount:     50000,
	}
}

func date(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(v)
	require.NoError(t, err)
	return d
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("с явной партией", func(t *testing.T) {
		s, repo, _ := newTestService()
		gid := uuid.New()
		req := validRequest()
		req.GroupTicketID = &gid

		repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Passenger) bool {
			return p.GroupTicketID != nil && *p.GroupTicketID == gid &&
				p.Status == domain.StatusPending &&
				p.PassportNumber == "BX1234567" &&
				p.Phone == "+8801712345678"
		})).Return(nil)

		p, _, err := s.Create(ctx, req)

		require.NoError(t, err)
		assert.True(t, p.IsAssigned())
		repo.AssertExpectations(t)
	})

	t.Run("без партии", func(t *testing.T) {
		s, repo, finder := newTestService()
		repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Passenger) bool {
			return p.GroupTicketID == nil
		})).Return(nil)

		p, _, err := s.Create(ctx, validRequest())

		require.NoError(t, err)
		assert.False(t, p.IsAssigned())
		finder.AssertNotCalled(t, "FindAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("автоподбор берет первую доступную партию", func(t *testing.T) {
		s, repo, finder := newTestService()
		first := &domain.GroupTicketBatch{ID: uuid.New(), RemainingTickets: 3}
		second := &domain.GroupTicketBatch{ID: uuid.New(), RemainingTickets: 10}
		finder.On("FindAvailable", ctx, domain.PackageWithTransport, date(t, "2026-04-01"), date(t, "2026-04-15")).
			Return([]*domain.GroupTicketBatch{first, second}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Passenger) bool {
			return p.GroupTicketID != nil && *p.GroupTicketID == first.ID
		})).Return(nil)

		req := validRequest()
		req.AutoAssign = true
		req.DepartureDate = "2026-04-01"
		req.ReturnDate = "2026-04-15"

		p, _, err := s.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, first.ID, *p.GroupTicketID)
	})

	t.Run("автоподбор без свободных партий", func(t *testing.T) {
		s, repo, finder := newTestService()
		finder.On("FindAvailable", ctx, domain.PackageWithTransport, mock.Anything, mock.Anything).
			Return([]*domain.GroupTicketBatch{}, nil)

		req := validRequest()
		req.AutoAssign = true
		req.DepartureDate = "2026-04-01"
		req.ReturnDate = "2026-04-15"

		_, _, err := s.Create(ctx, req)

		assert.ErrorIs(t, err, domain.ErrNoAvailableGroupTicket)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("автоподбор без дат", func(t *testing.T) {
		s, _, _ := newTestService()
		req := validRequest()
		req.AutoAssign = true

		_, _, err := s.Create(ctx, req)

		var vErr *validation.Error
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Errors, "Departure and return dates are required")
	})

	t.Run("последний билет занят - без повторной попытки", func(t *testing.T) {
		s, repo, _ := newTestService()
		gid := uuid.New()

		repo.On("Create", ctx, mock.Anything).Return(nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrGroupTicketSoldOut).Once()

		first := validRequest()
		first.GroupTicketID = &gid
		_, _, err := s.Create(ctx, first)
		require.NoError(t, err)

		second := validRequest()
		second.FullName = "Fatema Begum"
		second.GroupTicketID = &gid
		_, _, err = s.Create(ctx, second)

		assert.ErrorIs(t, err, domain.ErrGroupTicketSoldOut)
		repo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("ошибки полей пассажира", func(t *testing.T) {
		s, repo, _ := newTestService()
		req := validRequest()
		req.PassportNumber = ""

		_, _, err := s.Create(ctx, req)

		var vErr *validation.Error
		require.True(t, errors.As(err, &vErr))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("неизвестная категория пакета", func(t *testing.T) {
		s, _, _ := newTestService()
		req := validRequest()
		req.PackageType = "hajj"

		_, _, err := s.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidPackageType)
	})
}

func TestService_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		current domain.BookingStatus
		next    domain.BookingStatus
		role    domain.UserRole
		wantErr error
	}{
		{"pending -> confirmed", domain.StatusPending, domain.StatusConfirmed, domain.RoleStaff, nil},
		{"cancelled -> confirmed", domain.StatusCancelled, domain.StatusConfirmed, domain.RoleAdmin, domain.ErrInvalidStatusTransition},
		{"сотрудник не отменяет подтвержденную", domain.StatusConfirmed, domain.StatusCancelled, domain.RoleStaff, domain.ErrForbidden},
		{"администратор отменяет подтвержденную", domain.StatusConfirmed, domain.StatusCancelled, domain.RoleAdmin, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, _ := newTestService()
			p := &domain.Passenger{ID: uuid.New(), Status: tt.current, PackagePrice: 185000}
			repo.On("GetByID", ctx, p.ID).Return(p, nil)
			repo.On("UpdateStatus", ctx, p.ID, tt.next).Return(nil)

			got, err := s.ChangeStatus(ctx, p.ID, tt.next, tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, got.Status)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("смена категории при привязке запрещена", func(t *testing.T) {
		s, repo, _ := newTestService()
		gid := uuid.New()
		p := &domain.Passenger{
			ID: uuid.New(), FullName: "Abdul Karim", PassportNumber: "BX1234567", Phone: "01712345678",
			PackageType: domain.PackageWithTransport, GroupTicketID: &gid,
		}
		repo.On("GetByID", ctx, p.ID).Return(p, nil)

		pkg := domain.PackageWithoutTransport
		_, _, err := s.Update(ctx, p.ID, &UpdateRequest{PackageType: &pkg})

		assert.ErrorIs(t, err, domain.ErrPackageTypeMismatch)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("оплата обновляется", func(t *testing.T) {
		s, repo, _ := newTestService()
		p := &domain.Passenger{
			ID: uuid.New(), FullName: "Abdul Karim", PassportNumber: "BX1234567", Phone: "01712345678",
			PackageType: domain.PackageWithTransport, PackagePrice: 185000,
		}
		repo.On("GetByID", ctx, p.ID).Return(p, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		paid := 185000.0
		got, _, err := s.Update(ctx, p.ID, &UpdateRequest{PaidAmount: &paid})

		require.NoError(t, err)
		assert.Equal(t, 0.0, got.DueAmount())
	})

	t.Run("привязка появилась после чтения", func(t *testing.T) {
		s, repo, _ := newTestService()
		p := &domain.Passenger{
			ID: uuid.New(), FullName: "Abdul Karim", PassportNumber: "BX1234567", Phone: "01712345678",
			PackageType: domain.PackageWithTransport,
		}
		repo.On("GetByID", ctx, p.ID).Return(p, nil)
		repo.On("Update", ctx, mock.Anything).Return(domain.ErrPackageTypeMismatch)

		pkg := domain.PackageWithoutTransport
		_, _, err := s.Update(ctx, p.ID, &UpdateRequest{PackageType: &pkg})

		assert.Equal(t, domain.ErrPackageTypeMismatch, err)
	})
}

func TestService_GetByID_AllowedStatuses(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestService()

	pending := &domain.Passenger{ID: uuid.New(), Status: domain.StatusPending}
	cancelled := &domain.Passenger{ID: uuid.New(), Status: domain.StatusCancelled}
	repo.On("GetByID", ctx, pending.ID).Return(pending, nil)
	repo.On("GetByID", ctx, cancelled.ID).Return(cancelled, nil)

	got, err := s.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]domain.BookingStatus{domain.StatusConfirmed, domain.StatusCancelled, domain.StatusExpired},
		got.AllowedStatuses)

	got, err = s.GetByID(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AllowedStatuses)
}

func TestService_AssignAndUnassign(t *testing.T) {
	ctx := context.Background()

	t.Run("перенос в партию", func(t *testing.T) {
		s, repo, finder := newTestService()
		gid := uuid.New()
		p := &domain.Passenger{ID: uuid.New(), GroupTicketID: &gid}
		batch := &domain.GroupTicketBatch{ID: gid, TicketCount: 10, RemainingTickets: 4}

		repo.On("Assign", ctx, p.ID, gid).Return(nil)
		repo.On("GetByID", ctx, p.ID).Return(p, nil)
		finder.On("GetByID", ctx, gid).Return(batch, nil)

		got, err := s.Assign(ctx, p.ID, gid)

		require.NoError(t, err)
		require.NotNil(t, got.GroupTicket)
		assert.Equal(t, 4, got.GroupTicket.RemainingTickets)
	})

	t.Run("партия исчерпана", func(t *testing.T) {
		s, repo, _ := newTestService()
		id, gid := uuid.New(), uuid.New()
		repo.On("Assign", ctx, id, gid).Return(domain.ErrGroupTicketSoldOut)

		_, err := s.Assign(ctx, id, gid)
		assert.ErrorIs(t, err, domain.ErrGroupTicketSoldOut)
	})

	t.Run("отвязка непривязанного", func(t *testing.T) {
		s, repo, _ := newTestService()
		id := uuid.New()
		repo.On("Unassign", ctx, id).Return(domain.ErrPassengerNotAssigned)

		_, err := s.Unassign(ctx, id)
		assert.ErrorIs(t, err, domain.ErrPassengerNotAssigned)
	})

	t.Run("удаление", func(t *testing.T) {
		s, repo, _ := newTestService()
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(nil)

		require.NoError(t, s.Delete(ctx, id))
		repo.AssertExpectations(t)
	})
}
