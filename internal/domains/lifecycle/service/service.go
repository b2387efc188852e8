package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	bookingModel "hotel/internal/domains/booking/model"
	bookingDto "hotel/internal/domains/booking/model/dto"
	bookingRepository "hotel/internal/domains/booking/repository"
	historyModel "hotel/internal/domains/history/model"
	historyRepository "hotel/internal/domains/history/repository"
	invoiceService "hotel/internal/domains/invoice/service"
	"hotel/internal/domains/lifecycle/event"
	"hotel/internal/domains/lifecycle/model"
	"hotel/internal/domains/lifecycle/model/dto"
	roomModel "hotel/internal/domains/room/model"
	roomRepository "hotel/internal/domains/room/repository"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/clock"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const sideEffectTimeout = 10 * time.Second

// Lifecycle owns every transition that couples a room to its booking. Each operation runs
// in one transaction; side effects run only after commit.
type Lifecycle interface {
	CreateBooking(ctx context.Context, req bookingDto.CreateBookingRequest) (bookingDto.BookingResponse, error)
	Checkout(ctx context.Context, bookingID string) (dto.CheckoutResponse, error)
	CancelBooking(ctx context.Context, bookingID string) error
	ReleaseTx(ctx context.Context, tx *sqlx.Tx, room roomModel.Room, resolution *model.Resolution) (*model.Release, error)
	Released(ctx context.Context, release *model.Release)
}

type serviceImpl struct {
	transactor  postgres.Transactor
	roomRepo    roomRepository.Room
	bookingRepo bookingRepository.Booking
	historyRepo historyRepository.History
	publisher   event.Publisher
	invoice     invoiceService.Invoice
	cache       cache.RedisCache
	clock       clock.Clock
	cfg         *config.Config
	otel        otel.Otel
}

func New(
	transactor postgres.Transactor,
	roomRepo roomRepository.Room,
	bookingRepo bookingRepository.Booking,
	historyRepo historyRepository.History,
	publisher event.Publisher,
	invoice invoiceService.Invoice,
	cache cache.RedisCache,
	clock clock.Clock,
	cfg *config.Config,
	otel otel.Otel,
) Lifecycle {
	return &serviceImpl{
		transactor:  transactor,
		roomRepo:    roomRepo,
		bookingRepo: bookingRepo,
		historyRepo: historyRepo,
		publisher:   publisher,
		invoice:     invoice,
		cache:       cache,
		clock:       clock,
		cfg:         cfg,
		otel:        otel,
	}
}

func (s *serviceImpl) CreateBooking(ctx context.Context, req bookingDto.CreateBookingRequest) (res bookingDto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lifecycle.CreateBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := s.clock.Now()

	checkIn, err := req.Validate(now)
	if err != nil {
		return res, err
	}

	user := shared.Actor(ctx)

	var (
		booking bookingModel.Booking
		room    roomModel.Room
	)

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		room, err = s.roomRepo.GetForUpdateTx(ctx, tx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound(roomModel.MessageNotFound)
		}

		if room.Occupied() {
			current, err := s.bookingRepo.GetTx(ctx, tx, shared.FilterByID(*room.CurrentBookingID, bookingModel.FieldID, bookingModel.TableName))
			if err != nil {
				return fmt.Errorf("failed to get current booking: %w", err)
			}

			if current.ID == constant.Empty {
				return failure.Conflict(model.MessageRoomNotAvailable)
			}

			return model.RoomNotAvailable(current)
		}

		if !room.Available {
			return failure.Conflict(model.MessageRoomNotAvailable)
		}

		booking = req.ToModel(user, checkIn, room.PricePerNight, now)

		if err := s.bookingRepo.InsertTx(ctx, tx, booking); err != nil {
			if postgres.IsUniqueViolation(err, bookingModel.ConstraintRoomID) {
				return failure.Conflict(model.MessageRoomNotAvailable)
			}

			return fmt.Errorf("failed to create booking: %w", err)
		}

		if err := s.roomRepo.OccupyTx(ctx, tx, room.ID, booking.ID, user, now); err != nil {
			return fmt.Errorf("failed to occupy room: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("roomId", req.RoomID).Msg("failed to create booking")

		return res, err //nolint:wrapcheck
	}

	created := event.NewBookingEvent(event.TypeBookingCreated, booking, user, now)
	created.RoomNo = room.RoomNo

	s.afterCommit(ctx, nil, created)

	res.FromDetail(bookingModel.BookingDetail{
		Booking:           booking,
		RoomNo:            room.RoomNo,
		RoomType:          room.Type,
		RoomBeds:          room.Beds,
		RoomPricePerNight: room.PricePerNight,
	})

	return res, nil
}

func (s *serviceImpl) Checkout(ctx context.Context, bookingID string) (res dto.CheckoutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lifecycle.Checkout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	release, err := s.finish(ctx, bookingID, model.ResolutionCheckout)
	if err != nil {
		return res, err
	}

	url := s.afterCommit(ctx, release.History, s.releaseEvents(ctx, release, false)...)

	res.FromHistory(release.Booking.ID, *release.History)
	res.InvoiceURL = url

	return res, nil
}

func (s *serviceImpl) CancelBooking(ctx context.Context, bookingID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lifecycle.CancelBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	release, err := s.finish(ctx, bookingID, model.ResolutionCancel)
	if err != nil {
		return err
	}

	s.afterCommit(ctx, nil, s.releaseEvents(ctx, release, false)...)

	return nil
}

// finish ends a booking in its own transaction. Locks are taken room first, then booking,
// the same order ReleaseTx uses.
func (s *serviceImpl) finish(ctx context.Context, bookingID string, resolution model.Resolution) (*model.Release, error) {
	if err := shared.ValidateID(bookingID, bookingModel.MessageInvalidID); err != nil {
		return nil, err //nolint:wrapcheck
	}

	now := s.clock.Now()
	user := shared.Actor(ctx)
	filter := shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName)

	var release *model.Release

	err := s.transactor.WithTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		booking, err := s.bookingRepo.GetTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return failure.NotFound(bookingModel.MessageNotFound)
		}

		room, err := s.roomRepo.GetForUpdateTx(ctx, tx, shared.FilterByID(booking.RoomID, roomModel.FieldID, roomModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		booking, err = s.bookingRepo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return failure.NotFound(bookingModel.MessageNotFound)
		}

		release, err = s.release(ctx, tx, room, booking, resolution, now, user)

		return err
	})
	if err != nil {
		log.Error().Err(err).Str("bookingId", bookingID).Str("resolution", string(resolution)).Msg("failed to finish booking")

		return nil, err //nolint:wrapcheck
	}

	return release, nil
}

// ReleaseTx frees an occupied room inside the caller's transaction. The room row must already be
// locked by the caller. Without a resolution an occupied room yields the conflict payload.
func (s *serviceImpl) ReleaseTx(ctx context.Context, tx *sqlx.Tx, room roomModel.Room, resolution *model.Resolution) (res *model.Release, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lifecycle.ReleaseTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !room.Occupied() {
		return nil, nil //nolint:nilnil
	}

	booking, err := s.bookingRepo.GetForUpdateTx(ctx, tx, shared.FilterByID(*room.CurrentBookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		return nil, fmt.Errorf("failed to lock current booking: %w", err)
	}

	if resolution == nil {
		if booking.ID == constant.Empty {
			return nil, failure.Conflict(model.MessageRoomHasActiveBookings)
		}

		return nil, model.RoomOccupied(booking)
	}

	now := s.clock.Now()
	user := shared.Actor(ctx)

	if booking.ID == constant.Empty {
		// Dangling reference: only the room flags need repair.
		if err := s.free(ctx, tx, room, now, user); err != nil {
			return nil, err
		}

		return &model.Release{Resolution: *resolution, Room: room}, nil
	}

	return s.release(ctx, tx, room, booking, *resolution, now, user)
}

// Released runs the post-commit side effects of a ReleaseTx whose transaction committed.
func (s *serviceImpl) Released(ctx context.Context, release *model.Release) {
	if release == nil {
		return
	}

	s.afterCommit(ctx, release.History, s.releaseEvents(ctx, release, true)...)
}

func (s *serviceImpl) release(
	ctx context.Context,
	tx *sqlx.Tx,
	room roomModel.Room,
	booking bookingModel.Booking,
	resolution model.Resolution,
	now time.Time,
	user string,
) (*model.Release, error) {
	release := &model.Release{Resolution: resolution, Room: room, Booking: booking}

	if resolution.Archives() {
		history := model.Settle(booking, room, now, user)

		if err := s.historyRepo.InsertTx(ctx, tx, history); err != nil {
			return nil, fmt.Errorf("failed to archive booking: %w", err)
		}

		release.History = &history
	}

	if err := s.free(ctx, tx, room, now, user); err != nil {
		return nil, err
	}

	affected, err := s.bookingRepo.DeleteTx(ctx, tx, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	if affected == 0 {
		return nil, failure.NotFound(bookingModel.MessageNotFound)
	}

	return release, nil
}

func (s *serviceImpl) free(ctx context.Context, tx *sqlx.Tx, room roomModel.Room, now time.Time, user string) error {
	if err := s.roomRepo.FreeTx(ctx, tx, room.ID, user, now); err != nil {
		return fmt.Errorf("failed to free room: %w", err)
	}

	return nil
}

func (s *serviceImpl) releaseEvents(ctx context.Context, release *model.Release, forced bool) []event.Event {
	now := s.clock.Now()
	user := shared.Actor(ctx)

	var events []event.Event

	if release.Booking.ID != constant.Empty {
		eventType := event.TypeBookingCancelled
		if release.History != nil {
			eventType = event.TypeBookingCheckedOut
		}

		evt := event.NewBookingEvent(eventType, release.Booking, user, now)
		evt.RoomNo = release.Room.RoomNo
		evt.Resolution = string(release.Resolution)

		if release.History != nil {
			evt.HistoryID = release.History.ID
			evt.Status = release.History.Status
			evt.ActualAmount = release.History.ActualTotalAmount
		}

		events = append(events, evt)
	}

	if forced {
		released := event.NewBookingEvent(event.TypeRoomReleased, release.Booking, user, now)
		released.RoomID = release.Room.ID
		released.RoomNo = release.Room.RoomNo
		released.Resolution = string(release.Resolution)

		events = append(events, released)
	}

	return events
}

// afterCommit invalidates read caches, publishes events and archives the invoice of a settled stay.
// It runs on a context detached from the request; failures are logged only. It returns the archived
// invoice URL, empty when nothing was archived.
func (s *serviceImpl) afterCommit(ctx context.Context, history *historyModel.BookingHistory, events ...event.Event) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	shared.InvalidateCaches(ctx, s.cache, constant.CachePrefixRoom, constant.CachePrefixBooking)

	if err := s.publisher.Publish(ctx, events...); err != nil {
		log.Warn().Err(err).Msg("failed to publish lifecycle events")
	}

	if history == nil {
		return constant.Empty
	}

	url, err := s.invoice.Archive(ctx, *history)
	if err != nil {
		log.Warn().Err(err).Str("historyId", history.ID).Msg("failed to archive invoice")

		return constant.Empty
	}

	return url
}
