package dto

import (
	"hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"
	"hotel/shared/validator"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MessageRequiredFields = "Room ID, guest name, and nights are required"
	MessageInvalidRoomID  = "Invalid room ID format"
	MessageMinNights      = "At least 1 night must be booked"
	MessagePastCheckIn    = "Check-in date cannot be in the past"
	MessageEmptyUpdate    = "At least one field (guestName or nights) must be provided"
)

// SortColumns whitelists the public sort keys of the booking list.
var SortColumns = map[string]string{
	"createdAt":   model.TableName + "." + constant.FieldCreatedAt,
	"checkInDate": model.TableName + "." + model.FieldCheckInDate,
	"guestName":   model.TableName + "." + model.FieldGuestName,
	"nights":      model.TableName + "." + model.FieldNights,
}

type CreateBookingRequest struct {
	RoomID      string `json:"roomId"`
	GuestName   string `json:"guestName"   validate:"max=50"`
	Nights      *int   `json:"nights"      validate:"omitempty,max=365"`
	CheckInDate string `json:"checkInDate" validate:"omitempty,date"`
}

// Validate checks the request against today and returns the check-in instant,
// the start of the given day in the application timezone.
func (c *CreateBookingRequest) Validate(now time.Time) (time.Time, error) {
	c.RoomID = strings.TrimSpace(c.RoomID)
	c.GuestName = strings.TrimSpace(c.GuestName)
	c.CheckInDate = strings.TrimSpace(c.CheckInDate)

	if c.RoomID == "" || c.GuestName == "" || c.Nights == nil {
		return time.Time{}, failure.BadRequestFromString(MessageRequiredFields)
	}

	if err := uuid.Validate(c.RoomID); err != nil {
		return time.Time{}, failure.BadRequestFromString(MessageInvalidRoomID)
	}

	if *c.Nights < 1 {
		return time.Time{}, failure.BadRequestFromString(MessageMinNights)
	}

	if err := validator.ValidateStruct(c); err != nil {
		return time.Time{}, err //nolint:wrapcheck
	}

	today := timezone.StartOfDay(now)
	if c.CheckInDate == "" {
		return today, nil
	}

	checkIn, err := timezone.Parse(constant.DayFormat, c.CheckInDate)
	if err != nil {
		return time.Time{}, failure.BadRequestFromString("checkInDate must be a date formatted as YYYY-MM-DD")
	}

	if checkIn.Before(today) {
		return time.Time{}, failure.BadRequestFromString(MessagePastCheckIn)
	}

	return checkIn, nil
}

// ToModel snapshots the room price into the booking.
func (c *CreateBookingRequest) ToModel(user string, checkIn time.Time, pricePerNight float64, at time.Time) model.Booking {
	return model.Booking{
		ID:            uuid.NewString(),
		RoomID:        c.RoomID,
		GuestName:     c.GuestName,
		Nights:        *c.Nights,
		CheckInDate:   checkIn,
		PricePerNight: pricePerNight,
		Metadata:      gModel.NewMetadata(at, user),
	}
}

type UpdateBookingRequest struct {
	GuestName string `db:"guest_name" json:"guestName" validate:"omitempty,max=50"`
	Nights    *int   `db:"nights"     json:"nights"    validate:"omitempty,max=365"`
}

func (u *UpdateBookingRequest) Validate() error {
	u.GuestName = strings.TrimSpace(u.GuestName)

	if u.GuestName == "" && u.Nights == nil {
		return failure.BadRequestFromString(MessageEmptyUpdate)
	}

	if u.Nights != nil && *u.Nights < 1 {
		return failure.BadRequestFromString(MessageMinNights)
	}

	return validator.ValidateStruct(u) //nolint:wrapcheck
}

type RoomSummaryResponse struct {
	ID            string  `json:"id"`
	RoomNo        int     `json:"roomNo"`
	Type          string  `json:"type"`
	Beds          int     `json:"beds"`
	PricePerNight float64 `json:"pricePerNight"`
}

type BookingResponse struct {
	ID            string               `json:"id"`
	RoomID        string               `json:"roomId"`
	Room          *RoomSummaryResponse `json:"room,omitempty"`
	GuestName     string               `json:"guestName"`
	Nights        int                  `json:"nights"`
	CheckInDate   string               `json:"checkInDate"`
	PricePerNight float64              `json:"pricePerNight"`
	PlannedAmount float64              `json:"plannedAmount"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.GuestName = model.GuestName
	r.Nights = model.Nights
	r.CheckInDate = timezone.Format(model.CheckInDate, constant.DateFormat)
	r.PricePerNight = model.PricePerNight
	r.PlannedAmount = model.PlannedAmount()
	r.Metadata.FromModel(model.Metadata)
}

func (r *BookingResponse) FromDetail(detail model.BookingDetail) {
	r.FromModel(detail.Booking)
	r.Room = &RoomSummaryResponse{
		ID:            detail.RoomID,
		RoomNo:        detail.RoomNo,
		Type:          detail.RoomType,
		Beds:          detail.RoomBeds,
		PricePerNight: detail.RoomPricePerNight,
	}
}

type GetBookingsResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Pagination gDto.Pagination   `json:"pagination"`
}

func (r *GetBookingsResponse) FromDetails(details []model.BookingDetail, params gDto.QueryParams, total int) {
	r.Pagination = gDto.NewPagination(params, total)

	r.Bookings = make([]BookingResponse, len(details))
	for i, detail := range details {
		r.Bookings[i].FromDetail(detail)
	}
}

type SummaryResponse struct {
	RoomID            string  `json:"roomId"`
	RoomNo            int     `json:"roomNo"`
	Type              string  `json:"type"`
	TotalNightsBooked int     `json:"totalNightsBooked"`
	TotalBookings     int     `json:"totalBookings"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

func NewSummaryResponses(summaries []model.RoomSummary) []SummaryResponse {
	res := make([]SummaryResponse, len(summaries))

	for i, summary := range summaries {
		res[i] = SummaryResponse{
			RoomID:            summary.RoomID,
			RoomNo:            summary.RoomNo,
			Type:              summary.Type,
			TotalNightsBooked: summary.TotalNightsBooked,
			TotalBookings:     summary.TotalBookings,
			TotalRevenue:      summary.TotalRevenue,
		}
	}

	return res
}
