package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/history/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/logger"
	gRepo "hotel/shared/repository"
	"maps"

	"github.com/jmoiron/sqlx"
)

// Aggregation queries take the WHERE clause through %s. Casts use CAST(... AS ...) because
// sqlx reads "::" as an escaped colon in named queries.
const (
	totalsQuery = `SELECT COALESCE(SUM(actual_total_amount), 0) AS total_revenue,
	COUNT(id) AS total_bookings,
	COALESCE(SUM(actual_nights_stayed), 0) AS total_nights,
	COALESCE(AVG(actual_nights_stayed), 0) AS average_stay,
	COALESCE(AVG(actual_total_amount), 0) AS average_revenue_per_booking,
	COALESCE(MIN(actual_nights_stayed), 0) AS min_stay,
	COALESCE(MAX(actual_nights_stayed), 0) AS max_stay
FROM booking_histories %s`

	statusQuery = `SELECT status, COUNT(id) AS count,
	COALESCE(SUM(actual_total_amount), 0) AS total_revenue,
	COALESCE(AVG(actual_nights_stayed), 0) AS average_nights
FROM booking_histories %s
GROUP BY status ORDER BY status`

	roomTypeQuery = `SELECT room_type,
	COALESCE(SUM(actual_total_amount), 0) AS total_revenue,
	COUNT(id) AS booking_count,
	COALESCE(AVG(actual_nights_stayed), 0) AS average_stay,
	ARRAY_AGG(DISTINCT room_no ORDER BY room_no) AS rooms
FROM booking_histories %s
GROUP BY room_type ORDER BY total_revenue DESC, room_type`

	roomNoQuery = `SELECT room_no,
	(ARRAY_AGG(room_type ORDER BY check_out_date DESC))[1] AS room_type,
	COALESCE(SUM(actual_total_amount), 0) AS total_revenue,
	COUNT(id) AS booking_count,
	COALESCE(SUM(actual_nights_stayed), 0) AS total_nights,
	COALESCE(SUM(actual_total_amount) / NULLIF(SUM(actual_nights_stayed), 0), 0) AS average_revenue_per_night
FROM booking_histories %s
GROUP BY room_no ORDER BY room_no`

	monthQuery = `SELECT CAST(EXTRACT(YEAR FROM check_out_date AT TIME ZONE :tz) AS INTEGER) AS year,
	CAST(EXTRACT(MONTH FROM check_out_date AT TIME ZONE :tz) AS INTEGER) AS month,
	COALESCE(SUM(actual_total_amount), 0) AS total_revenue,
	COUNT(id) AS booking_count,
	COALESCE(SUM(actual_nights_stayed), 0) AS total_nights
FROM booking_histories %s
GROUP BY 1, 2 ORDER BY 1, 2`

	repeatGuestQuery = `SELECT guest_name, COUNT(id) AS visit_count,
	COALESCE(SUM(actual_total_amount), 0) AS total_spent,
	COALESCE(SUM(actual_nights_stayed), 0) AS total_nights,
	MAX(check_out_date) AS last_visit
FROM booking_histories %s
GROUP BY guest_name HAVING COUNT(id) > 1
ORDER BY visit_count DESC, guest_name`
)

type History interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.BookingHistory) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.BookingHistory, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.BookingHistory, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Totals(ctx context.Context, filter gDto.FilterGroup) (model.Totals, error)
	StatusBreakdown(ctx context.Context, filter gDto.FilterGroup) ([]model.StatusBreakdown, error)
	RevenueByRoomType(ctx context.Context, filter gDto.FilterGroup) ([]model.RoomTypeRevenue, error)
	RevenueByRoomNo(ctx context.Context, filter gDto.FilterGroup) ([]model.RoomNoRevenue, error)
	RevenueByMonth(ctx context.Context, filter gDto.FilterGroup, location string) ([]model.MonthRevenue, error)
	RepeatGuests(ctx context.Context, filter gDto.FilterGroup) ([]model.RepeatGuest, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.BookingHistory]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) History {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.BookingHistory](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Totals(ctx context.Context, filter gDto.FilterGroup) (res model.Totals, err error) {
	err = r.aggregate(ctx, "Totals", &res, totalsQuery, filter, nil, true)

	return res, err
}

func (r *repositoryImpl) StatusBreakdown(ctx context.Context, filter gDto.FilterGroup) ([]model.StatusBreakdown, error) {
	res := []model.StatusBreakdown{}
	err := r.aggregate(ctx, "StatusBreakdown", &res, statusQuery, filter, nil, false)

	return res, err
}

func (r *repositoryImpl) RevenueByRoomType(ctx context.Context, filter gDto.FilterGroup) ([]model.RoomTypeRevenue, error) {
	res := []model.RoomTypeRevenue{}
	err := r.aggregate(ctx, "RevenueByRoomType", &res, roomTypeQuery, filter, nil, false)

	return res, err
}

func (r *repositoryImpl) RevenueByRoomNo(ctx context.Context, filter gDto.FilterGroup) ([]model.RoomNoRevenue, error) {
	res := []model.RoomNoRevenue{}
	err := r.aggregate(ctx, "RevenueByRoomNo", &res, roomNoQuery, filter, nil, false)

	return res, err
}

func (r *repositoryImpl) RevenueByMonth(ctx context.Context, filter gDto.FilterGroup, location string) ([]model.MonthRevenue, error) {
	res := []model.MonthRevenue{}
	err := r.aggregate(ctx, "RevenueByMonth", &res, monthQuery, filter, map[string]any{"tz": location}, false)

	return res, err
}

func (r *repositoryImpl) RepeatGuests(ctx context.Context, filter gDto.FilterGroup) ([]model.RepeatGuest, error) {
	res := []model.RepeatGuest{}
	err := r.aggregate(ctx, "RepeatGuests", &res, repeatGuestQuery, filter, nil, false)

	return res, err
}

// aggregate runs one GROUP BY query; single selects exactly one row into dest.
func (r *repositoryImpl) aggregate(ctx context.Context, op string, dest any, query string, filter gDto.FilterGroup, extra map[string]any, single bool) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+"."+op)
	defer scope.End()

	where, args := r.BuildWhereClause(ctx, filter)
	maps.Copy(args, extra)

	query = fmt.Sprintf(query, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to prepare statement (%s.%s): %w", model.EntityName, op, err)
	}
	defer prepare.Close()

	if single {
		err = prepare.GetContext(ctx, dest, args)
	} else {
		err = prepare.SelectContext(ctx, dest, args)
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to aggregate (%s.%s): %w", model.EntityName, op, err)
	}

	return nil
}
