package dto

import (
	historyModel "hotel/internal/domains/history/model"
	"hotel/shared/constant"
	"hotel/shared/timezone"
)

type CheckoutResponse struct {
	HistoryID     string  `json:"historyId"`
	BookingID     string  `json:"bookingId"`
	GuestName     string  `json:"guestName"`
	RoomNo        int     `json:"roomNo"`
	RoomType      string  `json:"roomType"`
	CheckInDate   string  `json:"checkInDate"`
	CheckOutDate  string  `json:"checkOutDate"`
	PlannedNights int     `json:"plannedNights"`
	PlannedAmount float64 `json:"plannedAmount"`
	ActualNights  int     `json:"actualNights"`
	ActualAmount  float64 `json:"actualAmount"`
	PricePerNight float64 `json:"pricePerNight"`
	Status        string  `json:"status"`
	InvoiceURL    string  `json:"invoiceUrl,omitempty"`
}

func (r *CheckoutResponse) FromHistory(bookingID string, history historyModel.BookingHistory) {
	r.HistoryID = history.ID
	r.BookingID = bookingID
	r.GuestName = history.GuestName
	r.RoomNo = history.RoomNo
	r.RoomType = history.RoomType
	r.CheckInDate = timezone.Format(history.CheckInDate, constant.DateFormat)
	r.CheckOutDate = timezone.Format(history.CheckOutDate, constant.DateFormat)
	r.PlannedNights = history.Nights
	r.PlannedAmount = history.TotalAmount
	r.ActualNights = history.ActualNightsStayed
	r.ActualAmount = history.ActualTotalAmount
	r.PricePerNight = history.PricePerNight
	r.Status = history.Status
}
