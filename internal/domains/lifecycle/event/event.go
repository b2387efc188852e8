package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	bookingModel "hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	"time"

	"github.com/google/uuid"
)

const (
	TypeBookingCreated    = "booking.created"
	TypeBookingUpdated    = "booking.updated"
	TypeBookingCheckedOut = "booking.checked_out"
	TypeBookingCancelled  = "booking.cancelled"
	TypeRoomReleased      = "room.released"

	HeaderEventType = "event-type"
)

// Event is the payload published for every committed lifecycle transition. Events of one
// room share a partition key so consumers see them in commit order.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	BookingID    string    `json:"bookingId"`
	RoomID       string    `json:"roomId"`
	RoomNo       int       `json:"roomNo,omitempty"`
	GuestName    string    `json:"guestName"`
	Nights       int       `json:"nights"`
	Resolution   string    `json:"resolution,omitempty"`
	HistoryID    string    `json:"historyId,omitempty"`
	Status       string    `json:"status,omitempty"`
	ActualAmount float64   `json:"actualAmount,omitempty"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func NewBookingEvent(eventType string, booking bookingModel.Booking, actor string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		GuestName:  booking.GuestName,
		Nights:     booking.Nights,
		Actor:      actor,
		OccurredAt: at,
	}
}

func (e Event) Message() kafka.Message {
	return kafka.Message{
		Key:     e.RoomID,
		Value:   e,
		Headers: map[string]string{HeaderEventType: e.Type},
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type publisherImpl struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func New(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		topic:  cfg.Kafka.Topic.BookingEvents,
		otel:   otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, events ...Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, evt := range events {
		messages[i] = evt.Message()
	}

	if err = p.client.SendMessages(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish lifecycle events: %w", err)
	}

	return nil
}
