// Package mocks содержит testify-моки репозиториев для тестов usecase слоя.
package mocks

import (
	"context"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// UserRepository - мок repository.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GroupTicketRepository - мок repository.GroupTicketRepository
type GroupTicketRepository struct {
	mock.Mock
}

func (m *GroupTicketRepository) Create(ctx context.Context, batch *domain.GroupTicketBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *GroupTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupTicketBatch), args.Error(1)
}

func (m *GroupTicketRepository) List(ctx context.Context, filter repository.GroupTicketFilter) ([]*domain.GroupTicketBatch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupTicketBatch), args.Error(1)
}

func (m *GroupTicketRepository) FindAvailable(ctx context.Context, packageType domain.PackageType, departure, ret time.Time) ([]*domain.GroupTicketBatch, error) {
	args := m.Called(ctx, packageType, departure, ret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupTicketBatch), args.Error(1)
}

func (m *GroupTicketRepository) Update(ctx context.Context, batch *domain.GroupTicketBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *GroupTicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *GroupTicketRepository) DeleteAndUnassign(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// PassengerRepository - мок repository.PassengerRepository
type PassengerRepository struct {
	mock.Mock
}

func (m *PassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PassengerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *PassengerRepository) List(ctx context.Context, filter repository.PassengerFilter) ([]*domain.Passenger, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Passenger), args.Error(1)
}

func (m *PassengerRepository) ListByGroupTicket(ctx context.Context, groupTicketID uuid.UUID) ([]*domain.Passenger, error) {
	args := m.Called(ctx, groupTicketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Passenger), args.Error(1)
}

func (m *PassengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PassengerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *PassengerRepository) Assign(ctx context.Context, id, groupTicketID uuid.UUID) error {
	args := m.Called(ctx, id, groupTicketID)
	return args.Error(0)
}

func (m *PassengerRepository) Unassign(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PassengerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	_ repository.UserRepository        = (*UserRepository)(nil)
	_ repository.GroupTicketRepository = (*GroupTicketRepository)(nil)
	_ repository.PassengerRepository   = (*PassengerRepository)(nil)
)
