package model

import (
	"fmt"
	bookingModel "hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/shared/timezone"
)

const (
	MessageRoomHasActiveBookings = "Room has active bookings"
	MessageRoomNotAvailable      = "Room is not available"
)

type BookingDetails struct {
	GuestName   string `json:"guestName"`
	BookingID   string `json:"bookingId"`
	CheckInDate string `json:"checkInDate"`
	Nights      int    `json:"nights"`
}

type Option struct {
	Action      Resolution `json:"action"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
}

// ConflictDetails tells the caller which booking blocks the room and how it may be resolved.
type ConflictDetails struct {
	RequiresAction bool           `json:"requiresAction"`
	BookingDetails BookingDetails `json:"bookingDetails"`
	Options        []Option       `json:"options"`
}

func NewOption(action Resolution, guestName string) Option {
	switch action {
	case ResolutionCheckout:
		return Option{
			Action:      action,
			Label:       "Checkout current booking",
			Description: fmt.Sprintf("Checkout guest %s and free up the room", guestName),
		}
	case ResolutionCancel:
		return Option{
			Action:      action,
			Label:       "Cancel booking",
			Description: fmt.Sprintf("Cancel the booking for guest %s", guestName),
		}
	default:
		return Option{
			Action:      action,
			Label:       "Delete booking",
			Description: fmt.Sprintf("Delete the booking for guest %s", guestName),
		}
	}
}

func NewConflictDetails(booking bookingModel.Booking, actions ...Resolution) ConflictDetails {
	options := make([]Option, len(actions))
	for i, action := range actions {
		options[i] = NewOption(action, booking.GuestName)
	}

	return ConflictDetails{
		RequiresAction: true,
		BookingDetails: BookingDetails{
			GuestName:   booking.GuestName,
			BookingID:   booking.ID,
			CheckInDate: timezone.Format(booking.CheckInDate, constant.DateFormat),
			Nights:      booking.Nights,
		},
		Options: options,
	}
}

// RoomOccupied is returned when a room mutation meets a live booking.
func RoomOccupied(booking bookingModel.Booking) error {
	return failure.ConflictWithDetails(MessageRoomHasActiveBookings, NewConflictDetails(booking, ResolutionCheckout, ResolutionDelete))
}

// RoomNotAvailable is returned when a new booking targets an occupied room.
func RoomNotAvailable(booking bookingModel.Booking) error {
	return failure.ConflictWithDetails(MessageRoomNotAvailable, NewConflictDetails(booking, ResolutionCheckout, ResolutionCancel))
}
