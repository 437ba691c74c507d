package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type groupTicketRepository struct {
	db DB
}

// NewGroupTicketRepository создает новый экземпляр groupTicketRepository
func NewGroupTicketRepository(db DB) repository.GroupTicketRepository {
	return &groupTicketRepository{db: db}
}

const groupTicketColumns = `
	id, group_name, package_type, departure_date, return_date,
	ticket_count, total_cost, average_cost_per_ticket, remaining_tickets,
	agent_name, agent_contact, purchase_notes,
	outbound_airline, outbound_flight_number, outbound_time, outbound_route,
	return_airline, return_flight_number, return_time, return_route,
	created_at, updated_at`

func (r *groupTicketRepository) Create(ctx context.Context, batch *domain.GroupTicketBatch) error {
	query := `
		INSERT INTO group_tickets (` + groupTicketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	batch.RemainingTickets = batch.TicketCount
	if err := batch.CheckInvariants(); err != nil {
		return err
	}

	batch.ID = uuid.New()
	batch.CreatedAt = time.Now()
	batch.UpdatedAt = batch.CreatedAt

	_, err := r.db.Exec(ctx, query,
		batch.ID,
		batch.GroupName,
		batch.PackageType,
		batch.DepartureDate,
		batch.ReturnDate,
		batch.TicketCount,
		batch.TotalCost,
		batch.AverageCostPerTicket,
		batch.RemainingTickets,
		batch.AgentName,
		batch.AgentContact,
		batch.PurchaseNotes,
		batch.Outbound.Airline,
		batch.Outbound.FlightNumber,
		batch.Outbound.Time,
		batch.Outbound.Route,
		batch.Return.Airline,
		batch.Return.FlightNumber,
		batch.Return.Time,
		batch.Return.Route,
		batch.CreatedAt,
		batch.UpdatedAt,
	)

	return err
}

func (r *groupTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTicketBatch, error) {
	query := `SELECT ` + groupTicketColumns + ` FROM group_tickets WHERE id = $1`

	batch, err := scanGroupTicket(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupTicketNotFound
		}
		return nil, err
	}

	return batch, nil
}

func (r *groupTicketRepository) List(ctx context.Context, filter repository.GroupTicketFilter) ([]*domain.GroupTicketBatch, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.PackageType != "" {
		args = append(args, filter.PackageType)
		conditions = append(conditions, fmt.Sprintf("package_type = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(group_name ILIKE $%d OR agent_name ILIKE $%d OR outbound_flight_number ILIKE $%d OR return_flight_number ILIKE $%d)",
			n, n, n, n,
		))
	}

	query := `SELECT ` + groupTicketColumns + ` FROM group_tickets`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGroupTickets(rows)
}

func (r *groupTicketRepository) FindAvailable(ctx context.Context, packageType domain.PackageType, departure, ret time.Time) ([]*domain.GroupTicketBatch, error) {
	query := `
		SELECT ` + groupTicketColumns + `
		FROM group_tickets
		WHERE package_type = $1
		  AND departure_date = $2
		  AND return_date = $3
		  AND remaining_tickets > 0
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, packageType, departure, ret)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGroupTickets(rows)
}

func (r *groupTicketRepository) Update(ctx context.Context, batch *domain.GroupTicketBatch) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			ticketCount int
			remaining   int
			packageType domain.PackageType
		)

		// Блокируем строку, чтобы параллельная привязка не изменила остаток между проверкой и записью
		err := tx.QueryRow(ctx,
			`SELECT ticket_count, remaining_tickets, package_type FROM group_tickets WHERE id = $1 FOR UPDATE`,
			batch.ID,
		).Scan(&ticketCount, &remaining, &packageType)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrGroupTicketNotFound
			}
			return err
		}

		assigned := ticketCount - remaining
		if batch.TicketCount < assigned {
			return domain.ErrTicketCountBelowAssigned
		}
		if assigned > 0 && batch.PackageType != packageType {
			return domain.ErrPackageTypeMismatch
		}

		batch.RemainingTickets = batch.TicketCount - assigned
		if err := batch.CheckInvariants(); err != nil {
			return err
		}
		batch.UpdatedAt = time.Now()

		query := `
			UPDATE group_tickets
			SET group_name = $2, package_type = $3, departure_date = $4, return_date = $5,
			    ticket_count = $6, total_cost = $7, average_cost_per_ticket = $8, remaining_tickets = $9,
			    agent_name = $10, agent_contact = $11, purchase_notes = $12,
			    outbound_airline = $13, outbound_flight_number = $14, outbound_time = $15, outbound_route = $16,
			    return_airline = $17, return_flight_number = $18, return_time = $19, return_route = $20,
			    updated_at = $21
			WHERE id = $1
			RETURNING created_at
		`

		return tx.QueryRow(ctx, query,
			batch.ID,
			batch.GroupName,
			batch.PackageType,
			batch.DepartureDate,
			batch.ReturnDate,
			batch.TicketCount,
			batch.TotalCost,
			batch.AverageCostPerTicket,
			batch.RemainingTickets,
			batch.AgentName,
			batch.AgentContact,
			batch.PurchaseNotes,
			batch.Outbound.Airline,
			batch.Outbound.FlightNumber,
			batch.Outbound.Time,
			batch.Outbound.Route,
			batch.Return.Airline,
			batch.Return.FlightNumber,
			batch.Return.Time,
			batch.Return.Route,
			batch.UpdatedAt,
		).Scan(&batch.CreatedAt)
	})
}

func (r *groupTicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM group_tickets g
		WHERE g.id = $1
		  AND NOT EXISTS (SELECT 1 FROM passengers p WHERE p.group_ticket_id = g.id)
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	// Строка не удалена: либо ее нет, либо есть привязанные пассажиры
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM group_tickets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrGroupTicketNotFound
	}

	return domain.ErrGroupTicketHasPassengers
}

func (r *groupTicketRepository) DeleteAndUnassign(ctx context.Context, id uuid.UUID) (int64, error) {
	var unassigned int64

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM group_tickets WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrGroupTicketNotFound
			}
			return err
		}

		result, err := tx.Exec(ctx,
			`UPDATE passengers SET group_ticket_id = NULL, updated_at = $2 WHERE group_ticket_id = $1`,
			id, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to unassign passengers: %w", err)
		}
		unassigned = result.RowsAffected()

		_, err = tx.Exec(ctx, `DELETE FROM group_tickets WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return 0, err
	}

	return unassigned, nil
}

// scanGroupTicket - вспомогательная функция для сканирования одной строки
func scanGroupTicket(row pgx.Row) (*domain.GroupTicketBatch, error) {
	b := &domain.GroupTicketBatch{}
	err := row.Scan(
		&b.ID,
		&b.GroupName,
		&b.PackageType,
		&b.DepartureDate,
		&b.ReturnDate,
		&b.TicketCount,
		&b.TotalCost,
		&b.AverageCostPerTicket,
		&b.RemainingTickets,
		&b.AgentName,
		&b.AgentContact,
		&b.PurchaseNotes,
		&b.Outbound.Airline,
		&b.Outbound.FlightNumber,
		&b.Outbound.Time,
		&b.Outbound.Route,
		&b.Return.Airline,
		&b.Return.FlightNumber,
		&b.Return.Time,
		&b.Return.Route,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanGroupTickets(rows pgx.Rows) ([]*domain.GroupTicketBatch, error) {
	batches := make([]*domain.GroupTicketBatch, 0)
	for rows.Next() {
		b, err := scanGroupTicket(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}

	return batches, rows.Err()
}
