package model

import (
	"hotel/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID            = "id"
	FieldRoomID        = "room_id"
	FieldGuestName     = "guest_name"
	FieldNights        = "nights"
	FieldCheckInDate   = "check_in_date"
	FieldPricePerNight = "price_per_night"

	ConstraintRoomID = "bookings_room_id_key"
)

const (
	MessageNotFound  = "Booking not found"
	MessageInvalidID = "Invalid booking ID format"
)

type Booking struct {
	ID            string    `db:"id"`
	RoomID        string    `db:"room_id"`
	GuestName     string    `db:"guest_name"`
	Nights        int       `db:"nights"`
	CheckInDate   time.Time `db:"check_in_date"`
	PricePerNight float64   `db:"price_per_night"`
	model.Metadata
}

// PlannedAmount bills the booked nights at the price captured when the booking was made.
func (b Booking) PlannedAmount() float64 {
	return float64(b.Nights) * b.PricePerNight
}

// BookingDetail is a booking read together with the summary of its room.
type BookingDetail struct {
	Booking
	RoomNo            int     `db:"room_no"              table:"rooms"`
	RoomType          string  `db:"room_type"            table:"rooms" column:"type"`
	RoomBeds          int     `db:"room_beds"            table:"rooms" column:"beds"`
	RoomPricePerNight float64 `db:"room_price_per_night" table:"rooms" column:"price_per_night"`
}

func (BookingDetail) GetJoinQuery() string {
	return "INNER JOIN rooms ON rooms.id = bookings.room_id"
}

// RoomSummary aggregates the active bookings of one room.
type RoomSummary struct {
	RoomID            string  `db:"room_id"`
	RoomNo            int     `db:"room_no"`
	Type              string  `db:"type"`
	TotalNightsBooked int     `db:"total_nights_booked"`
	TotalBookings     int     `db:"total_bookings"`
	TotalRevenue      float64 `db:"total_revenue"`
}
