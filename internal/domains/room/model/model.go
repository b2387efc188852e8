package model

import "hotel/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID               = "id"
	FieldRoomNo           = "room_no"
	FieldType             = "type"
	FieldBeds             = "beds"
	FieldPricePerNight    = "price_per_night"
	FieldDescription      = "description"
	FieldAvailable        = "available"
	FieldCurrentBookingID = "current_booking_id"

	ConstraintRoomNo = "rooms_room_no_key"
)

const (
	MessageNotFound     = "Room not found"
	MessageInvalidID    = "Invalid room ID format"
	MessageRoomNoExists = "Room number already exists"
)

const (
	TypeSingle = "single"
	TypeDouble = "double"
	TypeSuite  = "suite"
)

type Room struct {
	ID               string  `db:"id"`
	RoomNo           int     `db:"room_no"`
	Type             string  `db:"type"`
	Beds             int     `db:"beds"`
	PricePerNight    float64 `db:"price_per_night"`
	Description      string  `db:"description"`
	Available        bool    `db:"available"`
	CurrentBookingID *string `db:"current_booking_id"`
	model.Metadata
}

// Occupied reads the stored booking reference, the single source of truth for occupancy.
func (r Room) Occupied() bool {
	return r.CurrentBookingID != nil && *r.CurrentBookingID != ""
}
