package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"hotel/infras/otel/mocks"
	"hotel/infras/postgres"
	"hotel/internal/domains/history/model"
	"hotel/internal/domains/history/repository"
	gDto "hotel/shared/dto"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (repository.History, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")

	return repository.New(&postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mocks.NewOtel()), mock
}

func statusFilter(status string) gDto.FilterGroup {
	return gDto.FilterGroup{Filters: []any{
		gDto.Filter{Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq},
	}}
}

func TestHistoryRepository_TotalsEmptyArchive(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPrepare(regexp.QuoteMeta("COALESCE(SUM(actual_total_amount), 0) AS total_revenue")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{
			"total_revenue", "total_bookings", "total_nights", "average_stay", "average_revenue_per_booking", "min_stay", "max_stay",
		}).AddRow(0, 0, 0, 0, 0, 0, 0))

	totals, err := repo.Totals(context.Background(), gDto.FilterGroup{})
	require.NoError(t, err)

	assert.Equal(t, model.Totals{}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_TotalsAppliesFilter(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPrepare(regexp.QuoteMeta("FROM booking_histories  WHERE (status = $1)")).
		ExpectQuery().
		WithArgs(model.StatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_revenue", "total_bookings", "total_nights", "average_stay", "average_revenue_per_booking", "min_stay", "max_stay",
		}).AddRow(600.0, 2, 6, 3.0, 300.0, 2, 4))

	totals, err := repo.Totals(context.Background(), statusFilter(model.StatusCompleted))
	require.NoError(t, err)

	assert.InDelta(t, 600.0, totals.TotalRevenue, 0.001)
	assert.Equal(t, 2, totals.TotalBookings)
	assert.Equal(t, 4, totals.MaxStay)
}

func TestHistoryRepository_RevenueByRoomType(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPrepare(regexp.QuoteMeta("ARRAY_AGG(DISTINCT room_no ORDER BY room_no) AS rooms")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"room_type", "total_revenue", "booking_count", "average_stay", "rooms"}).
			AddRow("suite", 1500.0, 3, 2.5, []byte("{301,302}")).
			AddRow("single", 200.0, 2, 1.0, []byte("{101}")))

	res, err := repo.RevenueByRoomType(context.Background(), gDto.FilterGroup{})
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "suite", res[0].RoomType)
	assert.Equal(t, pq.Int64Array{301, 302}, res[0].Rooms)
	assert.Equal(t, pq.Int64Array{101}, res[1].Rooms)
}

func TestHistoryRepository_RevenueByMonthBindsTimezone(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPrepare(regexp.QuoteMeta("EXTRACT(YEAR FROM check_out_date AT TIME ZONE $1)")).
		ExpectQuery().
		WithArgs("Asia/Jakarta", "Asia/Jakarta").
		WillReturnRows(sqlmock.NewRows([]string{"year", "month", "total_revenue", "booking_count", "total_nights"}).
			AddRow(2025, 1, 400.0, 2, 4).
			AddRow(2025, 2, 100.0, 1, 1))

	res, err := repo.RevenueByMonth(context.Background(), gDto.FilterGroup{}, "Asia/Jakarta")
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, 1, res[0].Month)
	assert.Equal(t, 2025, res[1].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_RepeatGuests(t *testing.T) {
	repo, mock := newRepo(t)

	lastVisit := time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC)

	mock.ExpectPrepare(regexp.QuoteMeta("HAVING COUNT(id) > 1")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"guest_name", "visit_count", "total_spent", "total_nights", "last_visit"}).
			AddRow("Jane", 3, 900.0, 9, lastVisit))

	res, err := repo.RepeatGuests(context.Background(), gDto.FilterGroup{})
	require.NoError(t, err)
	require.Len(t, res, 1)

	assert.Equal(t, 3, res[0].VisitCount)
	assert.Equal(t, lastVisit, res[0].LastVisit)
}

func TestHistoryRepository_AggregateError(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPrepare("GROUP BY status").WillReturnError(errors.New("connection reset"))

	_, err := repo.StatusBreakdown(context.Background(), gDto.FilterGroup{})
	assert.ErrorContains(t, err, "StatusBreakdown")
}
