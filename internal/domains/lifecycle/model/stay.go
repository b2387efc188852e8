package model

import (
	bookingModel "hotel/internal/domains/booking/model"
	historyModel "hotel/internal/domains/history/model"
	roomModel "hotel/internal/domains/room/model"
	"math"
	"time"

	"github.com/google/uuid"
)

const hoursPerNight = 24

// ActualNights counts started 24 hour periods since check-in, never less than one.
func ActualNights(checkIn, now time.Time) int {
	nights := int(math.Ceil(now.Sub(checkIn).Hours() / hoursPerNight))
	if nights < 1 {
		return 1
	}

	return nights
}

func StayStatus(planned, actual int) string {
	switch {
	case actual < planned:
		return historyModel.StatusEarlyCheckout
	case actual > planned:
		return historyModel.StatusExtendedStay
	default:
		return historyModel.StatusCompleted
	}
}

// Settle bills a booking at checkout time and returns its archive record.
// Both amounts use the price captured on the booking.
func Settle(booking bookingModel.Booking, room roomModel.Room, now time.Time, user string) historyModel.BookingHistory {
	actual := ActualNights(booking.CheckInDate, now)

	return historyModel.BookingHistory{
		ID:                 uuid.NewString(),
		RoomID:             room.ID,
		GuestName:          booking.GuestName,
		RoomNo:             room.RoomNo,
		RoomType:           room.Type,
		CheckInDate:        booking.CheckInDate,
		CheckOutDate:       now,
		Nights:             booking.Nights,
		PricePerNight:      booking.PricePerNight,
		TotalAmount:        booking.PlannedAmount(),
		ActualNightsStayed: actual,
		ActualTotalAmount:  float64(actual) * booking.PricePerNight,
		Status:             StayStatus(booking.Nights, actual),
		CreatedAt:          now,
		CreatedBy:          user,
	}
}

// Release is what happened to the current booking of a room forced free.
type Release struct {
	Resolution Resolution
	Room       roomModel.Room
	Booking    bookingModel.Booking
	History    *historyModel.BookingHistory
}
