package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel/config"
	kafkaMocks "hotel/infras/kafka/mocks"
	"hotel/infras/otel/mocks"
	bookingModel "hotel/internal/domains/booking/model"
	"hotel/internal/domains/lifecycle/event"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestNewBookingEvent(t *testing.T) {
	at := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	booking := bookingModel.Booking{ID: "booking-1", RoomID: "room-1", GuestName: "Jane", Nights: 2}

	evt := event.NewBookingEvent(event.TypeBookingCreated, booking, "admin", at)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, event.TypeBookingCreated, evt.Type)
	assert.Equal(t, "room-1", evt.RoomID)
	assert.Equal(t, at, evt.OccurredAt)

	msg := evt.Message()
	assert.Equal(t, "room-1", msg.Key)
	assert.Equal(t, event.TypeBookingCreated, msg.Headers[event.HeaderEventType])
}

func TestPublisher_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.Topic.BookingEvents = "hotel.booking.events"

	publisher := event.New(mockClient, cfg, mocks.NewOtel())

	evt := event.Event{Type: event.TypeBookingCheckedOut, RoomID: "room-1"}

	tests := []struct {
		name      string
		events    []event.Event
		setupMock func()
		wantErr   bool
	}{
		{
			name:      "nothing to publish",
			events:    nil,
			setupMock: func() {},
		},
		{
			name:   "sends to the configured topic",
			events: []event.Event{evt},
			setupMock: func() {
				mockClient.EXPECT().
					SendMessages(gomock.Any(), "hotel.booking.events", evt.Message()).
					Return(nil)
			},
		},
		{
			name:   "broker error",
			events: []event.Event{evt},
			setupMock: func() {
				mockClient.EXPECT().
					SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("broker down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := publisher.Publish(context.Background(), tt.events...)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
