package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/room/model"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"
	"time"

	"github.com/jmoiron/sqlx"
)

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	ExistTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (int64, error)
	OccupyTx(ctx context.Context, sqltx *sqlx.Tx, roomID, bookingID, actor string, at time.Time) error
	FreeTx(ctx context.Context, sqltx *sqlx.Tx, roomID, actor string, at time.Time) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// OccupyTx takes the room off the market and points it at its live booking. Both columns
// change together so availability and the booking reference never disagree.
func (r *repositoryImpl) OccupyTx(ctx context.Context, sqltx *sqlx.Tx, roomID, bookingID, actor string, at time.Time) error {
	return r.setOccupancy(ctx, sqltx, roomID, &bookingID, actor, at)
}

// FreeTx puts the room back on the market and clears its booking reference.
func (r *repositoryImpl) FreeTx(ctx context.Context, sqltx *sqlx.Tx, roomID, actor string, at time.Time) error {
	return r.setOccupancy(ctx, sqltx, roomID, nil, actor, at)
}

func (r *repositoryImpl) setOccupancy(ctx context.Context, sqltx *sqlx.Tx, roomID string, bookingID *string, actor string, at time.Time) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.setOccupancy")
	defer scope.End()

	scope.SetAttributes(map[string]any{"room_id": roomID, "occupied": bookingID != nil})

	fields := map[string]any{
		model.FieldAvailable:        bookingID == nil,
		model.FieldCurrentBookingID: nil,
		constant.FieldModifiedAt:    at,
		constant.FieldModifiedBy:    actor,
	}

	if bookingID != nil {
		fields[model.FieldCurrentBookingID] = *bookingID
	}

	err := r.UpdateTx(ctx, sqltx, fields, shared.FilterByID(roomID, model.FieldID, model.TableName))
	scope.TraceIfError(err)

	return err //nolint:wrapcheck
}
