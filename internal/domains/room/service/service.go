package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	lifecycleModel "hotel/internal/domains/lifecycle/model"
	lifecycleService "hotel/internal/domains/lifecycle/service"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/repository"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/clock"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	cacheGetRoom    = shared.BuildCacheKey(constant.CachePrefixRoom, "get")
	cacheGetAllRoom = shared.BuildCacheKey(constant.CachePrefixRoom, "gets")
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.RoomFilter) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateRoomRequest) (dto.RoomResponse, error)
	Delete(ctx context.Context, id string, req dto.DeleteRoomRequest) error
}

type serviceImpl struct {
	repo       repository.Room
	transactor postgres.Transactor
	lifecycle  lifecycleService.Lifecycle
	cache      cache.RedisCache
	clock      clock.Clock
	cfg        *config.Config
	otel       otel.Otel
}

func New(
	repo repository.Room,
	transactor postgres.Transactor,
	lifecycle lifecycleService.Lifecycle,
	cache cache.RedisCache,
	clock clock.Clock,
	cfg *config.Config,
	otel otel.Otel,
) Room {
	return &serviceImpl{
		repo:       repo,
		transactor: transactor,
		lifecycle:  lifecycle,
		cache:      cache,
		clock:      clock,
		cfg:        cfg,
		otel:       otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	exist, err := s.repo.Exist(ctx, roomNoFilter(*req.RoomNo, constant.Empty))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room number")

		return res, fmt.Errorf("failed to check room number: %w", err)
	}

	if exist {
		return res, failure.Conflict(model.MessageRoomNoExists)
	}

	room := req.ToModel(shared.Actor(ctx), s.clock.Now())

	if err = s.repo.Insert(ctx, room); err != nil {
		if postgres.IsUniqueViolation(err, model.ConstraintRoomNo) {
			return res, failure.Conflict(model.MessageRoomNoExists)
		}

		log.Error().Err(err).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CachePrefixRoom)

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.RoomFilter) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.Sanitize(dto.SortColumns, model.TableName+"."+model.FieldRoomNo, gDto.SortDirAsc)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, params, filter.CacheParts())

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	group := filter.FilterGroup()

	total, err := s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, params, total)

	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save rooms to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = shared.ValidateID(id, model.MessageInvalidID); err != nil {
		return res, err //nolint:wrapcheck
	}

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound(model.MessageNotFound)
	}

	res.FromModel(room)

	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save room to cache")
	}

	return res, nil
}

// Update applies the room fields under a row lock. Asking to make an occupied room available
// releases its booking first, provided the caller chose a resolution.
func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = shared.ValidateID(id, model.MessageInvalidID); err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	resolution, err := lifecycleModel.ParseResolution(req.Resolution, req.ForceUpdate, req.CheckoutBooking, lifecycleModel.ResolutionDelete)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	var release *lifecycleModel.Release

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		room, err := s.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound(model.MessageNotFound)
		}

		if req.RoomNo != 0 && req.RoomNo != room.RoomNo {
			taken, err := s.repo.ExistTx(ctx, tx, roomNoFilter(req.RoomNo, room.ID))
			if err != nil {
				return fmt.Errorf("failed to check room number: %w", err)
			}

			if taken {
				return failure.Conflict(model.MessageRoomNoExists)
			}
		}

		if req.ReleaseRequested() && room.Occupied() {
			release, err = s.lifecycle.ReleaseTx(ctx, tx, room, resolution)
			if err != nil {
				return err //nolint:wrapcheck
			}
		}

		fields := shared.TransformFields(req, shared.Actor(ctx), s.clock.Now())

		if err := s.repo.UpdateTx(ctx, tx, fields, filter); err != nil {
			if postgres.IsUniqueViolation(err, model.ConstraintRoomNo) {
				return failure.Conflict(model.MessageRoomNoExists)
			}

			return fmt.Errorf("failed to update room: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("roomId", id).Msg("failed to update room")

		return res, err //nolint:wrapcheck
	}

	s.afterCommit(ctx, release)

	room, err := s.repo.Get(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to get room: %w", err)
	}

	res.FromModel(room)

	return res, nil
}

// Delete removes a room. An occupied room is refused with the resolution payload unless
// the caller chose how to end its booking.
func (s *serviceImpl) Delete(ctx context.Context, id string, req dto.DeleteRoomRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = shared.ValidateID(id, model.MessageInvalidID); err != nil {
		return err //nolint:wrapcheck
	}

	resolution, err := lifecycleModel.ParseResolution(req.Resolution, req.ForceDelete, req.CheckoutBooking, lifecycleModel.ResolutionDelete)
	if err != nil {
		return err //nolint:wrapcheck
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	var release *lifecycleModel.Release

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		room, err := s.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound(model.MessageNotFound)
		}

		release, err = s.lifecycle.ReleaseTx(ctx, tx, room, resolution)
		if err != nil {
			return err //nolint:wrapcheck
		}

		affected, err := s.repo.DeleteTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}

		if affected == 0 {
			return failure.NotFound(model.MessageNotFound)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("roomId", id).Msg("failed to delete room")

		return err //nolint:wrapcheck
	}

	s.afterCommit(ctx, release)

	return nil
}

func (s *serviceImpl) afterCommit(ctx context.Context, release *lifecycleModel.Release) {
	c := context.WithoutCancel(ctx)

	s.lifecycle.Released(c, release)

	// booking reads embed the room summary
	shared.InvalidateCaches(c, s.cache, constant.CachePrefixRoom, constant.CachePrefixBooking)
}

// roomNoFilter matches rooms holding roomNo, other than excludeID when set.
func roomNoFilter(roomNo int, excludeID string) gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}
	group.Add(gDto.Filter{Field: model.FieldRoomNo, Value: roomNo, Operator: gDto.FilterOperatorEq, Table: model.TableName})

	if excludeID != constant.Empty {
		group.Add(gDto.Filter{Field: model.FieldID, Value: excludeID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName})
	}

	return group
}
