package dto

import (
	"hotel/internal/domains/room/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	"hotel/shared/validator"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MessageRequiredFields    = "Room number, type, beds, and price per night are required"
	MessageAvailabilityOwned = "Room availability is managed by bookings and cannot be set to false"
	MessageEmptyUpdate       = "At least one field must be provided"
)

const (
	QueryType      = "type"
	QueryAvailable = "available"
	QueryMinBeds   = "minBeds"
	QueryMaxPrice  = "maxPrice"
)

// SortColumns whitelists the public sort keys of the room list.
var SortColumns = map[string]string{
	"roomNo":        model.TableName + "." + model.FieldRoomNo,
	"beds":          model.TableName + "." + model.FieldBeds,
	"pricePerNight": model.TableName + "." + model.FieldPricePerNight,
	"createdAt":     model.TableName + "." + constant.FieldCreatedAt,
}

type CreateRoomRequest struct {
	RoomNo        *int     `json:"roomNo"        validate:"omitempty,gt=0,lte=99999"`
	Type          string   `json:"type"          validate:"omitempty,oneof=single double suite"`
	Beds          *int     `json:"beds"          validate:"omitempty,min=1,max=20"`
	PricePerNight *float64 `json:"pricePerNight" validate:"omitempty,gte=0,lte=1000000"`
	Description   string   `json:"description"   validate:"omitempty,max=200"`
	Available     *bool    `json:"available"`
}

func (c *CreateRoomRequest) Validate() error {
	c.Type = strings.TrimSpace(c.Type)
	c.Description = strings.TrimSpace(c.Description)

	if c.RoomNo == nil || c.Type == "" || c.Beds == nil || c.PricePerNight == nil {
		return failure.BadRequestFromString(MessageRequiredFields)
	}

	if c.Available != nil && !*c.Available {
		return failure.BadRequestFromString(MessageAvailabilityOwned)
	}

	return validator.ValidateStruct(c) //nolint:wrapcheck
}

// ToModel builds a free room; new rooms never start occupied.
func (c *CreateRoomRequest) ToModel(user string, at time.Time) model.Room {
	return model.Room{
		ID:            uuid.NewString(),
		RoomNo:        *c.RoomNo,
		Type:          c.Type,
		Beds:          *c.Beds,
		PricePerNight: *c.PricePerNight,
		Description:   c.Description,
		Available:     true,
		Metadata:      gModel.NewMetadata(at, user),
	}
}

// UpdateRoomRequest carries the optional resolution fields alongside the room fields.
// Resolution and the legacy flags are read by the lifecycle coordinator, never persisted.
type UpdateRoomRequest struct {
	RoomNo          int      `db:"room_no"         json:"roomNo"          validate:"omitempty,gt=0,lte=99999"`
	Type            string   `db:"type"            json:"type"            validate:"omitempty,oneof=single double suite"`
	Beds            int      `db:"beds"            json:"beds"            validate:"omitempty,min=1,max=20"`
	PricePerNight   *float64 `db:"price_per_night" json:"pricePerNight"   validate:"omitempty,gte=0,lte=1000000"`
	Description     *string  `db:"description"     json:"description"     validate:"omitempty,max=200"`
	Available       *bool    `db:"-"               json:"available"`
	Resolution      string   `db:"-"               json:"resolution"      validate:"omitempty,oneof=checkout delete cancel"`
	ForceUpdate     *bool    `db:"-"               json:"forceUpdate"`
	CheckoutBooking *bool    `db:"-"               json:"checkoutBooking"`
}

func (u *UpdateRoomRequest) Validate() error {
	u.Type = strings.TrimSpace(u.Type)

	if u.Description != nil {
		trimmed := strings.TrimSpace(*u.Description)
		u.Description = &trimmed
	}

	if u.Available != nil && !*u.Available {
		return failure.BadRequestFromString(MessageAvailabilityOwned)
	}

	if u.RoomNo == 0 && u.Type == "" && u.Beds == 0 && u.PricePerNight == nil && u.Description == nil && u.Available == nil {
		return failure.BadRequestFromString(MessageEmptyUpdate)
	}

	return validator.ValidateStruct(u) //nolint:wrapcheck
}

// ReleaseRequested reports whether the caller asks to make the room available again.
func (u *UpdateRoomRequest) ReleaseRequested() bool {
	return u.Available != nil && *u.Available
}

// DeleteRoomRequest is the optional body of a room deletion.
type DeleteRoomRequest struct {
	Resolution      string `json:"resolution"      validate:"omitempty,oneof=checkout delete cancel"`
	ForceDelete     *bool  `json:"forceDelete"`
	CheckoutBooking *bool  `json:"checkoutBooking"`
}

type RoomResponse struct {
	ID             string  `json:"id"`
	RoomNo         int     `json:"roomNo"`
	Type           string  `json:"type"`
	Beds           int     `json:"beds"`
	PricePerNight  float64 `json:"pricePerNight"`
	Description    string  `json:"description"`
	Available      bool    `json:"available"`
	CurrentBooking *string `json:"currentBooking"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.RoomNo = model.RoomNo
	r.Type = model.Type
	r.Beds = model.Beds
	r.PricePerNight = model.PricePerNight
	r.Description = model.Description
	r.Available = model.Available
	r.CurrentBooking = model.CurrentBookingID
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms      []RoomResponse  `json:"rooms"`
	Pagination gDto.Pagination `json:"pagination"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, params gDto.QueryParams, total int) {
	r.Pagination = gDto.NewPagination(params, total)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

// RoomFilter holds the list query filters as received.
type RoomFilter struct {
	Type      string
	Available *bool
	MinBeds   *int
	MaxPrice  *float64
}

func (f RoomFilter) FilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if f.Type != "" {
		group.Add(gDto.Filter{Field: model.FieldType, Value: f.Type, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if f.Available != nil {
		group.Add(gDto.Filter{Field: model.FieldAvailable, Value: *f.Available, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if f.MinBeds != nil {
		group.Add(gDto.Filter{Field: model.FieldBeds, Value: *f.MinBeds, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName})
	}

	if f.MaxPrice != nil {
		group.Add(gDto.Filter{Field: model.FieldPricePerNight, Value: *f.MaxPrice, Operator: gDto.FilterOperatorLessEq, Table: model.TableName})
	}

	return group
}

// CacheParts renders the filter for the list cache key.
func (f RoomFilter) CacheParts() map[string]string {
	parts := map[string]string{QueryType: f.Type}

	if f.Available != nil {
		parts[QueryAvailable] = strconv.FormatBool(*f.Available)
	}

	if f.MinBeds != nil {
		parts[QueryMinBeds] = strconv.Itoa(*f.MinBeds)
	}

	if f.MaxPrice != nil {
		parts[QueryMaxPrice] = strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64)
	}

	return parts
}
