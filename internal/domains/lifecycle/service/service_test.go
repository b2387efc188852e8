package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"hotel/config"
	otelMocks "hotel/infras/otel/mocks"
	postgresMocks "hotel/infras/postgres/mocks"
	bookingMocks "hotel/internal/domains/booking/mocks"
	bookingModel "hotel/internal/domains/booking/model"
	bookingDto "hotel/internal/domains/booking/model/dto"
	historyMocks "hotel/internal/domains/history/mocks"
	historyModel "hotel/internal/domains/history/model"
	invoiceMocks "hotel/internal/domains/invoice/mocks"
	"hotel/internal/domains/lifecycle/event"
	lifecycleMocks "hotel/internal/domains/lifecycle/mocks"
	"hotel/internal/domains/lifecycle/model"
	"hotel/internal/domains/lifecycle/service"
	roomMocks "hotel/internal/domains/room/mocks"
	roomModel "hotel/internal/domains/room/model"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/clock"
	"hotel/shared/constant"
	"hotel/shared/failure"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	roomID    = "6f1c2f8e-55a4-4a5e-9d7e-1b2c3d4e5f60"
	bookingID = "0b9e8d7c-6a5b-4c3d-8e2f-1a0b9c8d7e6f"
)

var checkIn = time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	room      *roomMocks.MockRoom
	booking   *bookingMocks.MockBooking
	history   *historyMocks.MockHistory
	publisher *lifecycleMocks.MockPublisher
	invoice   *invoiceMocks.MockInvoice
	cache     *cacheMocks.MockRedisCache
	svc       service.Lifecycle
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		room:      roomMocks.NewMockRoom(ctrl),
		booking:   bookingMocks.NewMockBooking(ctrl),
		history:   historyMocks.NewMockHistory(ctrl),
		publisher: lifecycleMocks.NewMockPublisher(ctrl),
		invoice:   invoiceMocks.NewMockInvoice(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(
		postgresMocks.NewTransactor(),
		f.room,
		f.booking,
		f.history,
		f.publisher,
		f.invoice,
		f.cache,
		clock.Fixed{At: now},
		&config.Config{},
		otelMocks.NewOtel(),
	)

	return f
}

func userCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
}

func freeRoom() roomModel.Room {
	return roomModel.Room{ID: roomID, RoomNo: 101, Type: roomModel.TypeDouble, Beds: 2, PricePerNight: 100, Available: true}
}

func occupiedRoom() roomModel.Room {
	room := freeRoom()
	id := bookingID
	room.Available = false
	room.CurrentBookingID = &id

	return room
}

func activeBooking(nights int) bookingModel.Booking {
	return bookingModel.Booking{
		ID:            bookingID,
		RoomID:        roomID,
		GuestName:     "Jane",
		Nights:        nights,
		CheckInDate:   checkIn,
		PricePerNight: 80,
	}
}

func nights(n int) *int { return &n }

func TestLifecycle_CreateBooking(t *testing.T) {
	now := checkIn.Add(10 * time.Hour)

	tests := []struct {
		name      string
		req       bookingDto.CreateBookingRequest
		setupMock func(f *fixture)
		wantCode  int
		wantMsg   string
	}{
		{
			name: "books a free room with a price snapshot",
			req:  bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "  Jane  ", Nights: nights(2)},
			setupMock: func(f *fixture) {
				f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(freeRoom(), nil)
				f.booking.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, b bookingModel.Booking) error {
						assert.Equal(t, "Jane", b.GuestName)
						assert.Equal(t, roomID, b.RoomID)
						assert.InDelta(t, 100.0, b.PricePerNight, 0.001)
						assert.True(t, checkIn.Equal(b.CheckInDate))
						assert.Equal(t, "admin-1", b.CreatedBy)

						return nil
					})
				f.room.EXPECT().OccupyTx(gomock.Any(), gomock.Any(), roomID, gomock.Any(), "admin-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, _, bookingID, _ string, _ time.Time) error {
						assert.NotEmpty(t, bookingID)

						return nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, events ...event.Event) error {
						assert.Equal(t, event.TypeBookingCreated, events[0].Type)
						assert.Equal(t, 101, events[0].RoomNo)

						return nil
					})
			},
		},
		{
			name:      "missing nights",
			req:       bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "Jane"},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
			wantMsg:   bookingDto.MessageRequiredFields,
		},
		{
			name:      "zero nights",
			req:       bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "Jane", Nights: nights(0)},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
			wantMsg:   bookingDto.MessageMinNights,
		},
		{
			name:      "malformed room id",
			req:       bookingDto.CreateBookingRequest{RoomID: "101", GuestName: "Jane", Nights: nights(1)},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
			wantMsg:   bookingDto.MessageInvalidRoomID,
		},
		{
			name:      "check-in in the past",
			req:       bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "Jane", Nights: nights(1), CheckInDate: "2025-01-09"},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
			wantMsg:   bookingDto.MessagePastCheckIn,
		},
		{
			name: "room not found",
			req:  bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "Jane", Nights: nights(1)},
			setupMock: func(f *fixture) {
				f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(roomModel.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
			wantMsg:  roomModel.MessageNotFound,
		},
		{
			name: "room already occupied",
			req:  bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "John", Nights: nights(1)},
			setupMock: func(f *fixture) {
				f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(occupiedRoom(), nil)
				f.booking.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBooking(2), nil)
			},
			wantCode: http.StatusConflict,
			wantMsg:  model.MessageRoomNotAvailable,
		},
		{
			name: "room marked unavailable without a booking",
			req:  bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "John", Nights: nights(1)},
			setupMock: func(f *fixture) {
				f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(roomModel.Room{ID: roomID, RoomNo: 101, Type: roomModel.TypeDouble, Beds: 2, PricePerNight: 100}, nil)
			},
			wantCode: http.StatusConflict,
			wantMsg:  model.MessageRoomNotAvailable,
		},
		{
			name:      "stay longer than a year",
			req:       bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "Jane", Nights: nights(400)},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unique index catches a concurrent booking",
			req:  bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "John", Nights: nights(1)},
			setupMock: func(f *fixture) {
				f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(freeRoom(), nil)
				f.booking.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation, Constraint: bookingModel.ConstraintRoomID})
			},
			wantCode: http.StatusConflict,
			wantMsg:  model.MessageRoomNotAvailable,
		},
		{
			name: "store error",
			req:  bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "John", Nights: nights(1)},
			setupMock: func(f *fixture) {
				f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(roomModel.Room{}, errors.New("connection refused"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, now)
			tt.setupMock(f)

			res, err := f.svc.CreateBooking(userCtx(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, err.Error())
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Jane", res.GuestName)
			assert.InDelta(t, 200.0, res.PlannedAmount, 0.001)
			require.NotNil(t, res.Room)
			assert.Equal(t, 101, res.Room.RoomNo)
		})
	}
}

func TestLifecycle_CreateBookingConflictOptions(t *testing.T) {
	f := newFixture(t, checkIn)

	f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(occupiedRoom(), nil)
	f.booking.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBooking(2), nil)

	_, err := f.svc.CreateBooking(userCtx(), bookingDto.CreateBookingRequest{RoomID: roomID, GuestName: "John", Nights: nights(1)})

	details, ok := failure.GetDetails(err).(model.ConflictDetails)
	require.True(t, ok)

	assert.True(t, details.RequiresAction)
	assert.Equal(t, bookingID, details.BookingDetails.BookingID)
	require.Len(t, details.Options, 2)
	assert.Equal(t, model.ResolutionCheckout, details.Options[0].Action)
	assert.Equal(t, model.ResolutionCancel, details.Options[1].Action)
}

func expectFinish(f *fixture, booking bookingModel.Booking) {
	f.booking.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
	f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(occupiedRoom(), nil)
	f.booking.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
}

func TestLifecycle_Checkout(t *testing.T) {
	t.Run("same day checkout of a three night booking", func(t *testing.T) {
		f := newFixture(t, checkIn.Add(3*time.Hour))
		expectFinish(f, activeBooking(3))

		var archived historyModel.BookingHistory

		gomock.InOrder(
			f.history.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ any, h historyModel.BookingHistory) error {
					archived = h

					return nil
				}),
			f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), roomID, "admin-1", gomock.Any()).Return(nil),
			f.booking.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil),
		)

		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, events ...event.Event) error {
				assert.Equal(t, event.TypeBookingCheckedOut, events[0].Type)
				assert.Equal(t, historyModel.StatusEarlyCheckout, events[0].Status)

				return nil
			})
		f.invoice.EXPECT().Archive(gomock.Any(), gomock.Any()).Return("https://cdn.example.com/invoices/a.pdf", nil)

		res, err := f.svc.Checkout(userCtx(), bookingID)
		require.NoError(t, err)

		assert.Equal(t, archived.ID, res.HistoryID)
		assert.Equal(t, bookingID, res.BookingID)
		assert.Equal(t, 3, res.PlannedNights)
		assert.Equal(t, 1, res.ActualNights)
		assert.Equal(t, historyModel.StatusEarlyCheckout, res.Status)
		assert.InDelta(t, 240.0, res.PlannedAmount, 0.001)
		assert.InDelta(t, 80.0, res.ActualAmount, 0.001)
		assert.Equal(t, 101, res.RoomNo)
		assert.Equal(t, "https://cdn.example.com/invoices/a.pdf", res.InvoiceURL)
	})

	t.Run("five days after a three night booking", func(t *testing.T) {
		f := newFixture(t, checkIn.Add(5*24*time.Hour))
		expectFinish(f, activeBooking(3))

		f.history.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.booking.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
		f.invoice.EXPECT().Archive(gomock.Any(), gomock.Any()).Return("", nil)

		res, err := f.svc.Checkout(userCtx(), bookingID)
		require.NoError(t, err)

		assert.Equal(t, 5, res.ActualNights)
		assert.Equal(t, historyModel.StatusExtendedStay, res.Status)
		assert.InDelta(t, 400.0, res.ActualAmount, 0.001)
		assert.Empty(t, res.InvoiceURL)
	})

	t.Run("side effect failures do not fail the checkout", func(t *testing.T) {
		f := newFixture(t, checkIn.Add(24*time.Hour))
		expectFinish(f, activeBooking(1))

		f.history.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.booking.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
		f.invoice.EXPECT().Archive(gomock.Any(), gomock.Any()).Return("", errors.New("bucket missing"))

		res, err := f.svc.Checkout(userCtx(), bookingID)
		require.NoError(t, err)
		assert.Equal(t, historyModel.StatusCompleted, res.Status)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t, checkIn)
		f.booking.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)

		_, err := f.svc.Checkout(userCtx(), bookingID)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
		assert.Equal(t, bookingModel.MessageNotFound, err.Error())
	})

	t.Run("booking removed while waiting for the room lock", func(t *testing.T) {
		f := newFixture(t, checkIn)
		f.booking.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBooking(1), nil)
		f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(occupiedRoom(), nil)
		f.booking.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)

		_, err := f.svc.Checkout(userCtx(), bookingID)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFixture(t, checkIn)

		_, err := f.svc.Checkout(userCtx(), "not-an-id")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		assert.Equal(t, bookingModel.MessageInvalidID, err.Error())
	})

	t.Run("lock contention is retryable", func(t *testing.T) {
		f := newFixture(t, checkIn)
		f.booking.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBooking(1), nil)
		f.room.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(roomModel.Room{}, &pq.Error{Code: constant.PqErrorCodeDeadlockDetected})

		_, err := f.svc.Checkout(userCtx(), bookingID)
		assert.Equal(t, http.StatusServiceUnavailable, failure.GetCode(err))
		assert.True(t, failure.IsRetryable(err))
	})
}

func TestLifecycle_CancelBooking(t *testing.T) {
	t.Run("discards without history", func(t *testing.T) {
		f := newFixture(t, checkIn)
		expectFinish(f, activeBooking(2))

		f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.booking.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, events ...event.Event) error {
				assert.Equal(t, event.TypeBookingCancelled, events[0].Type)

				return nil
			})

		assert.NoError(t, f.svc.CancelBooking(userCtx(), bookingID))
	})

	t.Run("deleting a deleted booking is not found", func(t *testing.T) {
		f := newFixture(t, checkIn)
		f.booking.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)

		err := f.svc.CancelBooking(userCtx(), bookingID)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("row vanished before delete", func(t *testing.T) {
		f := newFixture(t, checkIn)
		expectFinish(f, activeBooking(2))

		f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.booking.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		err := f.svc.CancelBooking(userCtx(), bookingID)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestLifecycle_ReleaseTx(t *testing.T) {
	checkout := model.ResolutionCheckout
	remove := model.ResolutionDelete

	t.Run("free room needs nothing", func(t *testing.T) {
		f := newFixture(t, checkIn)

		release, err := f.svc.ReleaseTx(userCtx(), nil, freeRoom(), nil)
		assert.NoError(t, err)
		assert.Nil(t, release)
	})

	t.Run("occupied room without resolution", func(t *testing.T) {
		f := newFixture(t, checkIn)
		f.booking.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBooking(2), nil)

		_, err := f.svc.ReleaseTx(userCtx(), nil, occupiedRoom(), nil)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.Equal(t, model.MessageRoomHasActiveBookings, err.Error())

		details, ok := failure.GetDetails(err).(model.ConflictDetails)
		require.True(t, ok)
		assert.Equal(t, model.ResolutionCheckout, details.Options[0].Action)
		assert.Equal(t, model.ResolutionDelete, details.Options[1].Action)
	})

	t.Run("checkout resolution archives the stay", func(t *testing.T) {
		f := newFixture(t, checkIn.Add(48*time.Hour))
		f.booking.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBooking(2), nil)
		f.history.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.booking.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

		release, err := f.svc.ReleaseTx(userCtx(), nil, occupiedRoom(), &checkout)
		require.NoError(t, err)
		require.NotNil(t, release.History)
		assert.Equal(t, historyModel.StatusCompleted, release.History.Status)

		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, events ...event.Event) error {
				assert.Equal(t, event.TypeBookingCheckedOut, events[0].Type)
				assert.Equal(t, event.TypeRoomReleased, events[1].Type)
				assert.Equal(t, roomID, events[1].RoomID)

				return nil
			})
		f.invoice.EXPECT().Archive(gomock.Any(), *release.History).Return("", nil)

		f.svc.Released(userCtx(), release)
	})

	t.Run("delete resolution discards the booking", func(t *testing.T) {
		f := newFixture(t, checkIn)
		f.booking.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBooking(2), nil)
		f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.booking.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

		release, err := f.svc.ReleaseTx(userCtx(), nil, occupiedRoom(), &remove)
		require.NoError(t, err)
		assert.Nil(t, release.History)
		assert.Equal(t, model.ResolutionDelete, release.Resolution)
	})

	t.Run("dangling reference only repairs the room", func(t *testing.T) {
		f := newFixture(t, checkIn)
		f.booking.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)
		f.room.EXPECT().FreeTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		release, err := f.svc.ReleaseTx(userCtx(), nil, occupiedRoom(), &remove)
		require.NoError(t, err)
		assert.Empty(t, release.Booking.ID)
	})

	t.Run("nil release has no side effects", func(t *testing.T) {
		f := newFixture(t, checkIn)

		f.svc.Released(userCtx(), nil)
	})
}
