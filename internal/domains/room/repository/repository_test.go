package repository_test

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"hotel/infras/otel/mocks"
	"hotel/infras/postgres"
	"hotel/internal/domains/room/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const occupancyQuery = "UPDATE rooms SET available = $1, current_booking_id = $2, modified_at = $3, modified_by = $4  WHERE (rooms.id = $5)"

func newRepo(t *testing.T) (repository.Room, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")

	return repository.New(&postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mocks.NewOtel()), sqlxDB, mock
}

func TestRoomRepository_Occupancy(t *testing.T) {
	at := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		run  func(repo repository.Room, tx *sqlx.Tx) error
		args []driver.Value
	}{
		{
			name: "occupy points the room at its booking",
			run: func(repo repository.Room, tx *sqlx.Tx) error {
				return repo.OccupyTx(context.Background(), tx, "room-1", "booking-1", "admin", at)
			},
			args: []driver.Value{false, "booking-1", at, "admin", "room-1"},
		},
		{
			name: "free clears the booking reference",
			run: func(repo repository.Room, tx *sqlx.Tx) error {
				return repo.FreeTx(context.Background(), tx, "room-1", "admin", at)
			},
			args: []driver.Value{true, nil, at, "admin", "room-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, db, mock := newRepo(t)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(occupancyQuery)).
				WithArgs(tt.args...).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			tx, err := db.Beginx()
			require.NoError(t, err)

			require.NoError(t, tt.run(repo, tx))
			require.NoError(t, tx.Commit())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
