package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	TableName  = "booking_histories"
	EntityName = "booking_history"

	FieldID                 = "id"
	FieldRoomID             = "room_id"
	FieldGuestName          = "guest_name"
	FieldRoomNo             = "room_no"
	FieldRoomType           = "room_type"
	FieldCheckInDate        = "check_in_date"
	FieldCheckOutDate       = "check_out_date"
	FieldActualNightsStayed = "actual_nights_stayed"
	FieldStatus             = "status"

	MessageNotFound = "Booking history not found"
)

const (
	StatusCompleted     = "completed"
	StatusEarlyCheckout = "early_checkout"
	StatusExtendedStay  = "extended_stay"
)

// Statuses lists every stay outcome in display order.
var Statuses = []string{StatusCompleted, StatusEarlyCheckout, StatusExtendedStay}

// BookingHistory is the immutable record of a finished stay. RoomID is kept without a foreign key
// so the record outlives the room.
type BookingHistory struct {
	ID                 string    `db:"id"`
	RoomID             string    `db:"room_id"`
	GuestName          string    `db:"guest_name"`
	RoomNo             int       `db:"room_no"`
	RoomType           string    `db:"room_type"`
	CheckInDate        time.Time `db:"check_in_date"`
	CheckOutDate       time.Time `db:"check_out_date"`
	Nights             int       `db:"nights"`
	PricePerNight      float64   `db:"price_per_night"`
	TotalAmount        float64   `db:"total_amount"`
	ActualNightsStayed int       `db:"actual_nights_stayed"`
	ActualTotalAmount  float64   `db:"actual_total_amount"`
	Status             string    `db:"status"`
	CreatedAt          time.Time `db:"created_at"`
	CreatedBy          string    `db:"created_by"`
}

type Totals struct {
	TotalRevenue             float64 `db:"total_revenue"`
	TotalBookings            int     `db:"total_bookings"`
	TotalNights              int     `db:"total_nights"`
	AverageStay              float64 `db:"average_stay"`
	AverageRevenuePerBooking float64 `db:"average_revenue_per_booking"`
	MinStay                  int     `db:"min_stay"`
	MaxStay                  int     `db:"max_stay"`
}

type StatusBreakdown struct {
	Status        string  `db:"status"`
	Count         int     `db:"count"`
	TotalRevenue  float64 `db:"total_revenue"`
	AverageNights float64 `db:"average_nights"`
}

type RoomTypeRevenue struct {
	RoomType     string        `db:"room_type"`
	TotalRevenue float64       `db:"total_revenue"`
	BookingCount int           `db:"booking_count"`
	AverageStay  float64       `db:"average_stay"`
	Rooms        pq.Int64Array `db:"rooms"`
}

type RoomNoRevenue struct {
	RoomNo                 int     `db:"room_no"`
	RoomType               string  `db:"room_type"`
	TotalRevenue           float64 `db:"total_revenue"`
	BookingCount           int     `db:"booking_count"`
	TotalNights            int     `db:"total_nights"`
	AverageRevenuePerNight float64 `db:"average_revenue_per_night"`
}

type MonthRevenue struct {
	Year         int     `db:"year"`
	Month        int     `db:"month"`
	TotalRevenue float64 `db:"total_revenue"`
	BookingCount int     `db:"booking_count"`
	TotalNights  int     `db:"total_nights"`
}

type RepeatGuest struct {
	GuestName   string    `db:"guest_name"`
	VisitCount  int       `db:"visit_count"`
	TotalSpent  float64   `db:"total_spent"`
	TotalNights int       `db:"total_nights"`
	LastVisit   time.Time `db:"last_visit"`
}
