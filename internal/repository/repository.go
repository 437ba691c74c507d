package repository

import (
	"context"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/google/uuid"
)

// UserRepository определяет методы для работы с операторами
type UserRepository interface {
	// Create создает нового оператора
	Create(ctx context.Context, user *domain.User) error

	// GetByID возвращает оператора по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail возвращает оператора по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLastLogin обновляет время последнего входа
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// GroupTicketFilter - параметры выборки групповых билетов
type GroupTicketFilter struct {
	PackageType domain.PackageType // пустое значение - все категории
	Search      string             // по названию группы, агенту и номерам рейсов
}

// GroupTicketRepository определяет методы для работы с групповыми билетами
type GroupTicketRepository interface {
	// Create сохраняет новую партию, remaining_tickets = ticket_count
	Create(ctx context.Context, batch *domain.GroupTicketBatch) error

	// GetByID возвращает партию по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, error)

	// List возвращает партии по фильтру, новые первыми
	List(ctx context.Context, filter GroupTicketFilter) ([]*domain.GroupTicketBatch, error)

	// FindAvailable возвращает партии с точным совпадением пары дат и свободными билетами
	// Порядок - по времени создания (старые первыми)
	FindAvailable(ctx context.Context, packageType domain.PackageType, departure, ret time.Time) ([]*domain.GroupTicketBatch, error)

	// Update обновляет редактируемые поля партии
	// При изменении ticket_count остаток сдвигается на разницу емкости
	// Возвращает ErrTicketCountBelowAssigned, если новая емкость меньше числа привязанных пассажиров
	Update(ctx context.Context, batch *domain.GroupTicketBatch) error

	// Delete удаляет партию без привязанных пассажиров
	// Возвращает ErrGroupTicketHasPassengers, если привязки есть
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteAndUnassign в одной транзакции отвязывает всех пассажиров и удаляет партию
	// Возвращает количество отвязанных пассажиров
	DeleteAndUnassign(ctx context.Context, id uuid.UUID) (int64, error)
}

// PassengerFilter - параметры выборки пассажиров
type PassengerFilter struct {
	PackageType   domain.PackageType
	GroupTicketID *uuid.UUID
	Search        string // по имени, паспорту, PNR и телефону
}

// PassengerRepository определяет методы для работы с пассажирами
// Все методы, меняющие привязку к групповому билету, атомарно меняют и остаток пула
type PassengerRepository interface {
	// Create сохраняет пассажира
	// Если задан GroupTicketID, в той же транзакции занимает один билет партии
	// Возвращает ErrGroupTicketSoldOut, если свободных билетов не осталось
	Create(ctx context.Context, passenger *domain.Passenger) error

	// GetByID возвращает пассажира по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Passenger, error)

	// List возвращает пассажиров по фильтру
	List(ctx context.Context, filter PassengerFilter) ([]*domain.Passenger, error)

	// ListByGroupTicket возвращает пассажиров, занимающих билеты партии
	ListByGroupTicket(ctx context.Context, groupTicketID uuid.UUID) ([]*domain.Passenger, error)

	// Update обновляет данные пассажира (без привязки и статуса)
	Update(ctx context.Context, passenger *domain.Passenger) error

	// UpdateStatus меняет статус брони
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error

	// Assign привязывает пассажира к партии
	// Старая привязка (если была) освобождается в той же транзакции
	Assign(ctx context.Context, id, groupTicketID uuid.UUID) error

	// Unassign отвязывает пассажира и возвращает билет в пул
	Unassign(ctx context.Context, id uuid.UUID) error

	// Delete удаляет пассажира и возвращает его билет в пул
	Delete(ctx context.Context, id uuid.UUID) error
}
