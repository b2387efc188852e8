package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/repository"
	"hotel/internal/domains/lifecycle/event"
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
	cacheGetBooking     = shared.BuildCacheKey(constant.CachePrefixBooking, "get")
	cacheGetAllBooking  = shared.BuildCacheKey(constant.CachePrefixBooking, "gets")
	cacheBookingSummary = shared.BuildCacheKey(constant.CachePrefixBooking, "summary")
)

// Booking serves the ledger reads and the in-place edits. Creating, checking out and
// deleting bookings belong to the lifecycle coordinator.
type Booking interface {
	GetAll(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	Summary(ctx context.Context) ([]dto.SummaryResponse, error)
}

type serviceImpl struct {
	repo       repository.Booking
	transactor postgres.Transactor
	publisher  event.Publisher
	cache      cache.RedisCache
	clock      clock.Clock
	cfg        *config.Config
	otel       otel.Otel
}

func New(
	repo repository.Booking,
	transactor postgres.Transactor,
	publisher event.Publisher,
	cache cache.RedisCache,
	clock clock.Clock,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:       repo,
		transactor: transactor,
		publisher:  publisher,
		cache:      cache,
		clock:      clock,
		cfg:        cfg,
		otel:       otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.Sanitize(dto.SortColumns, model.TableName+"."+constant.FieldCreatedAt, gDto.SortDirDesc)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, nil)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	details, err := s.repo.GetAllDetails(ctx, params, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromDetails(details, params, total)

	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save bookings to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = shared.ValidateID(id, model.MessageInvalidID); err != nil {
		return res, err //nolint:wrapcheck
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	detail, err := s.repo.GetDetail(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if detail.ID == constant.Empty {
		return res, failure.NotFound(model.MessageNotFound)
	}

	res.FromDetail(detail)

	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking to cache")
	}

	return res, nil
}

// Update edits the guest name or the planned nights of a booking under a row lock.
// The room stays untouched, so no room lock is taken.
func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = shared.ValidateID(id, model.MessageInvalidID); err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	now := s.clock.Now()
	user := shared.Actor(ctx)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	var booking model.Booking

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		booking, err = s.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return failure.NotFound(model.MessageNotFound)
		}

		if err := s.repo.UpdateTx(ctx, tx, shared.TransformFields(req, user, now), filter); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("bookingId", id).Msg("failed to update booking")

		return res, err //nolint:wrapcheck
	}

	if req.GuestName != constant.Empty {
		booking.GuestName = req.GuestName
	}

	if req.Nights != nil {
		booking.Nights = *req.Nights
	}

	s.afterCommit(ctx, event.NewBookingEvent(event.TypeBookingUpdated, booking, user, now))

	detail, err := s.repo.GetDetail(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	res.FromDetail(detail)

	return res, nil
}

func (s *serviceImpl) Summary(ctx context.Context) (res []dto.SummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Summary")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err := s.cache.Get(ctx, cacheBookingSummary, &res); err == nil {
		return res, nil
	}

	summaries, err := s.repo.Summary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to summarize bookings")

		return nil, fmt.Errorf("failed to summarize bookings: %w", err)
	}

	res = dto.NewSummaryResponses(summaries)

	if err := s.cache.Save(context.WithoutCancel(ctx), cacheBookingSummary, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking summary to cache")
	}

	return res, nil
}

func (s *serviceImpl) afterCommit(ctx context.Context, evt event.Event) {
	c := context.WithoutCancel(ctx)

	shared.InvalidateCaches(c, s.cache, constant.CachePrefixBooking)

	if err := s.publisher.Publish(c, evt); err != nil {
		log.Warn().Err(err).Str("bookingId", evt.BookingID).Msg("failed to publish booking event")
	}
}
