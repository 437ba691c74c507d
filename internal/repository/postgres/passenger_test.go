package postgres

import (
	"context"
	"testing"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	claimSlotSQL   = `UPDATE group_tickets\s+SET remaining_tickets = remaining_tickets - 1.+WHERE id = \$1 AND package_type = \$2 AND remaining_tickets > 0`
	diagnoseSQL    = `SELECT package_type FROM group_tickets WHERE id = \$1`
	releaseSlotSQL = `SET remaining_tickets = LEAST\(remaining_tickets \+ 1, ticket_count\)`
	lockPassSQL    = `SELECT group_ticket_id, package_type FROM passengers WHERE id = \$1 FOR UPDATE`
)

func newPassenger(groupTicketID *uuid.UUID) *domain.Passenger {
	return &domain.Passenger{
		FullName:       "Abdul Karim",
		PassportNumber: "BX1234567",
		Phone:          "01712345678",
		PackageType:    domain.PackageWithTransport,
		GroupTicketID:  groupTicketID,
		Status:         domain.StatusPending,
		PackagePrice:   185000,
	}
}

func TestPassengerRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("билет занимается в той же транзакции", func(t *testing.T) {
		db := newMockDB(t)
		gid := uuid.New()

		db.ExpectBegin()
		db.ExpectExec(claimSlotSQL).
			WithArgs(gid, domain.PackageWithTransport, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		db.ExpectExec(`INSERT INTO passengers`).
			WithArgs(anyArgs(14)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		db.ExpectCommit()

		p := newPassenger(&gid)
		require.NoError(t, NewPassengerRepository(db).Create(ctx, p))
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.NoError(t, db.ExpectationsWereMet())
	})

	t.Run("без партии пул не трогается", func(t *testing.T) {
		db := newMockDB(t)

		db.ExpectBegin()
		db.ExpectExec(`INSERT INTO passengers`).
			WithArgs(anyArgs(14)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		db.ExpectCommit()

		require.NoError(t, NewPassengerRepository(db).Create(ctx, newPassenger(nil)))
		assert.NoError(t, db.ExpectationsWereMet())
	})

	tests := []struct {
		name    string
		setup   func(db pgxmock.PgxPoolIface, gid uuid.UUID)
		wantErr error
	}{
		{
			name: "последний билет уже занят",
			setup: func(db pgxmock.PgxPoolIface, gid uuid.UUID) {
				db.ExpectQuery(diagnoseSQL).WithArgs(gid).
					WillReturnRows(pgxmock.NewRows([]string{"package_type"}).AddRow(domain.PackageWithTransport))
			},
			wantErr: domain.ErrGroupTicketSoldOut,
		},
		{
			name: "партия другой категории",
			setup: func(db pgxmock.PgxPoolIface, gid uuid.UUID) {
				db.ExpectQuery(diagnoseSQL).WithArgs(gid).
					WillReturnRows(pgxmock.NewRows([]string{"package_type"}).AddRow(domain.PackageWithoutTransport))
			},
			wantErr: domain.ErrPackageTypeMismatch,
		},
		{
			name: "партии нет",
			setup: func(db pgxmock.PgxPoolIface, gid uuid.UUID) {
				db.ExpectQuery(diagnoseSQL).WithArgs(gid).WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrGroupTicketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMockDB(t)
			gid := uuid.New()

			db.ExpectBegin()
			db.ExpectExec(claimSlotSQL).
				WithArgs(gid, domain.PackageWithTransport, pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			tt.setup(db, gid)
			db.ExpectRollback()

			err := NewPassengerRepository(db).Create(ctx, newPassenger(&gid))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, db.ExpectationsWereMet(), "пассажир не должен сохраняться без билета")
		})
	}
}

func TestPassengerRepository_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("перенос: новый билет занят, старый освобожден", func(t *testing.T) {
		db := newMockDB(t)
		id, oldGID, newGID := uuid.New(), uuid.New(), uuid.New()

		db.ExpectBegin()
		db.ExpectQuery(lockPassSQL).WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"group_ticket_id", "package_type"}).AddRow(&oldGID, domain.PackageWithTransport))
		db.ExpectExec(claimSlotSQL).
			WithArgs(newGID, domain.PackageWithTransport, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		db.ExpectExec(releaseSlotSQL).
			WithArgs(oldGID, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		db.ExpectExec(`UPDATE passengers SET group_ticket_id = \$2`).
			WithArgs(id, newGID, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		db.ExpectCommit()

		require.NoError(t, NewPassengerRepository(db).Assign(ctx, id, newGID))
		assert.NoError(t, db.ExpectationsWereMet())
	})

	t.Run("исчерпанная партия не освобождает старый билет", func(t *testing.T) {
		db := newMockDB(t)
		id, oldGID, newGID := uuid.New(), uuid.New(), uuid.New()

		db.ExpectBegin()
		db.ExpectQuery(lockPassSQL).WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"group_ticket_id", "package_type"}).AddRow(&oldGID, domain.PackageWithTransport))
		db.ExpectExec(claimSlotSQL).
			WithArgs(newGID, domain.PackageWithTransport, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		db.ExpectQuery(diagnoseSQL).WithArgs(newGID).
			WillReturnRows(pgxmock.NewRows([]string{"package_type"}).AddRow(domain.PackageWithTransport))
		db.ExpectRollback()

		err := NewPassengerRepository(db).Assign(ctx, id, newGID)

		assert.ErrorIs(t, err, domain.ErrGroupTicketSoldOut)
		assert.NoError(t, db.ExpectationsWereMet())
	})
}

func TestPassengerRepository_Unassign(t *testing.T) {
	ctx := context.Background()

	t.Run("билет возвращается в пул не выше емкости", func(t *testing.T) {
		db := newMockDB(t)
		id, gid := uuid.New(), uuid.New()

		db.ExpectBegin()
		db.ExpectQuery(lockPassSQL).WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"group_ticket_id", "package_type"}).AddRow(&gid, domain.PackageWithTransport))
		db.ExpectExec(releaseSlotSQL).
			WithArgs(gid, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		db.ExpectExec(`UPDATE passengers SET group_ticket_id = NULL`).
			WithArgs(id, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		db.ExpectCommit()

		require.NoError(t, NewPassengerRepository(db).Unassign(ctx, id))
		assert.NoError(t, db.ExpectationsWereMet())
	})

	t.Run("пассажир без партии", func(t *testing.T) {
		db := newMockDB(t)
		id := uuid.New()

		db.ExpectBegin()
		db.ExpectQuery(lockPassSQL).WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"group_ticket_id", "package_type"}).AddRow(nil, domain.PackageWithTransport))
		db.ExpectRollback()

		err := NewPassengerRepository(db).Unassign(ctx, id)

		assert.ErrorIs(t, err, domain.ErrPassengerNotAssigned)
		assert.NoError(t, db.ExpectationsWereMet())
	})
}

func TestPassengerRepository_Delete_ReleasesSlot(t *testing.T) {
	ctx := context.Background()
	db := newMockDB(t)
	id, gid := uuid.New(), uuid.New()

	db.ExpectBegin()
	db.ExpectQuery(lockPassSQL).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"group_ticket_id", "package_type"}).AddRow(&gid, domain.PackageWithTransport))
	db.ExpectExec(releaseSlotSQL).
		WithArgs(gid, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	db.ExpectExec(`DELETE FROM passengers WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	db.ExpectCommit()

	require.NoError(t, NewPassengerRepository(db).Delete(ctx, id))
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestPassengerRepository_Update(t *testing.T) {
	ctx := context.Background()
	updateSQL := `UPDATE passengers\s+SET full_name = \$2.+AND \(group_ticket_id IS NULL OR package_type = \$7\)`
	existsSQL := `SELECT EXISTS \(SELECT 1 FROM passengers WHERE id = \$1\)`

	tests := []struct {
		name    string
		exists  bool
		wantErr error
	}{
		{"привязан к партии другой категории", true, domain.ErrPackageTypeMismatch},
		{"пассажира нет", false, domain.ErrPassengerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMockDB(t)
			p := newPassenger(nil)
			p.ID = uuid.New()
			p.PackageType = domain.PackageWithoutTransport

			db.ExpectExec(updateSQL).
				WithArgs(anyArgs(11)...).
				WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			db.ExpectQuery(existsSQL).WithArgs(p.ID).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			err := NewPassengerRepository(db).Update(ctx, p)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, db.ExpectationsWereMet())
		})
	}
}
