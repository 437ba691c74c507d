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

type passengerRepository struct {
	db DB
}

// NewPassengerRepository создает новый экземпляр passengerRepository
func NewPassengerRepository(db DB) repository.PassengerRepository {
	return &passengerRepository{db: db}
}

const passengerColumns = `
	id, full_name, passport_number, pnr, phone, email, package_type,
	group_ticket_id, status, package_price, paid_amount, notes, created_at, updated_at`

func (r *passengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	query := `
		INSERT INTO passengers (` + passengerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if p.IsAssigned() {
			if err := claimSlot(ctx, tx, *p.GroupTicketID, p.PackageType); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, query,
			p.ID,
			p.FullName,
			p.PassportNumber,
			p.PNR,
			p.Phone,
			p.Email,
			p.PackageType,
			p.GroupTicketID,
			p.Status,
			p.PackagePrice,
			p.PaidAmount,
			p.Notes,
			p.CreatedAt,
			p.UpdatedAt,
		)
		return err
	})
}

func (r *passengerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE id = $1`

	p, err := scanPassenger(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPassengerNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *passengerRepository) List(ctx context.Context, filter repository.PassengerFilter) ([]*domain.Passenger, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.PackageType != "" {
		args = append(args, filter.PackageType)
		conditions = append(conditions, fmt.Sprintf("package_type = $%d", len(args)))
	}
	if filter.GroupTicketID != nil {
		args = append(args, *filter.GroupTicketID)
		conditions = append(conditions, fmt.Sprintf("group_ticket_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(full_name ILIKE $%d OR passport_number ILIKE $%d OR pnr ILIKE $%d OR phone ILIKE $%d)",
			n, n, n, n,
		))
	}

	query := `SELECT ` + passengerColumns + ` FROM passengers`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPassengers(rows)
}

func (r *passengerRepository) ListByGroupTicket(ctx context.Context, groupTicketID uuid.UUID) ([]*domain.Passenger, error) {
	query := `
		SELECT ` + passengerColumns + `
		FROM passengers
		WHERE group_ticket_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, groupTicketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPassengers(rows)
}

func (r *passengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	query := `
		UPDATE passengers
		SET full_name = $2, passport_number = $3, pnr = $4, phone = $5, email = $6,
		    package_type = $7, package_price = $8, paid_amount = $9, notes = $10, updated_at = $11
		WHERE id = $1
		  AND (group_ticket_id IS NULL OR package_type = $7)
	`

	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.FullName,
		p.PassportNumber,
		p.PNR,
		p.Phone,
		p.Email,
		p.PackageType,
		p.PackagePrice,
		p.PaidAmount,
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	// Строка не обновлена: либо пассажира нет, либо он привязан к партии и меняется категория
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM passengers WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrPassengerNotFound
	}

	return domain.ErrPackageTypeMismatch
}

func (r *passengerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE passengers SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now(),
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrPassengerNotFound
	}

	return nil
}

func (r *passengerRepository) Assign(ctx context.Context, id, groupTicketID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, packageType, err := lockPassenger(ctx, tx, id)
		if err != nil {
			return err
		}

		if current != nil && *current == groupTicketID {
			return nil
		}

		// Сначала занимаем новый билет: если пул исчерпан, старая привязка не трогается
		if err := claimSlot(ctx, tx, groupTicketID, packageType); err != nil {
			return err
		}
		if current != nil {
			if err := releaseSlot(ctx, tx, *current); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx,
			`UPDATE passengers SET group_ticket_id = $2, updated_at = $3 WHERE id = $1`,
			id, groupTicketID, time.Now(),
		)
		return err
	})
}

func (r *passengerRepository) Unassign(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, _, err := lockPassenger(ctx, tx, id)
		if err != nil {
			return err
		}

		if current == nil {
			return domain.ErrPassengerNotAssigned
		}

		if err := releaseSlot(ctx, tx, *current); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE passengers SET group_ticket_id = NULL, updated_at = $2 WHERE id = $1`,
			id, time.Now(),
		)
		return err
	})
}

func (r *passengerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, _, err := lockPassenger(ctx, tx, id)
		if err != nil {
			return err
		}

		if current != nil {
			if err := releaseSlot(ctx, tx, *current); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `DELETE FROM passengers WHERE id = $1`, id)
		return err
	})
}

// lockPassenger блокирует строку пассажира до конца транзакции
// и возвращает текущую привязку и категорию пакета
func lockPassenger(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*uuid.UUID, domain.PackageType, error) {
	var (
		groupTicketID *uuid.UUID
		packageType   domain.PackageType
	)

	err := tx.QueryRow(ctx,
		`SELECT group_ticket_id, package_type FROM passengers WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&groupTicketID, &packageType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrPassengerNotFound
		}
		return nil, "", err
	}

	return groupTicketID, packageType, nil
}

// claimSlot атомарно занимает один билет партии
// Условный UPDATE не даст остатку уйти ниже нуля при гонке за последний билет
func claimSlot(ctx context.Context, tx pgx.Tx, groupTicketID uuid.UUID, packageType domain.PackageType) error {
	query := `
		UPDATE group_tickets
		SET remaining_tickets = remaining_tickets - 1, updated_at = $3
		WHERE id = $1 AND package_type = $2 AND remaining_tickets > 0
	`

	result, err := tx.Exec(ctx, query, groupTicketID, packageType, time.Now())
	if err != nil {
		return fmt.Errorf("failed to claim ticket: %w", err)
	}

	if result.RowsAffected() == 1 {
		return nil
	}

	// Определяем причину отказа
	var actual domain.PackageType
	err = tx.QueryRow(ctx, `SELECT package_type FROM group_tickets WHERE id = $1`, groupTicketID).Scan(&actual)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrGroupTicketNotFound
		}
		return err
	}
	if actual != packageType {
		return domain.ErrPackageTypeMismatch
	}

	return domain.ErrGroupTicketSoldOut
}

// releaseSlot возвращает билет в пул, остаток не превышает ticket_count
func releaseSlot(ctx context.Context, tx pgx.Tx, groupTicketID uuid.UUID) error {
	query := `
		UPDATE group_tickets
		SET remaining_tickets = LEAST(remaining_tickets + 1, ticket_count), updated_at = $2
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, groupTicketID, time.Now()); err != nil {
		return fmt.Errorf("failed to release ticket: %w", err)
	}

	return nil
}

func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	p := &domain.Passenger{}
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.PassportNumber,
		&p.PNR,
		&p.Phone,
		&p.Email,
		&p.PackageType,
		&p.GroupTicketID,
		&p.Status,
		&p.PackagePrice,
		&p.PaidAmount,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPassengers(rows pgx.Rows) ([]*domain.Passenger, error) {
	passengers := make([]*domain.Passenger, 0)
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}

	return passengers, rows.Err()
}
