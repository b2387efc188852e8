package dto

import (
	"hotel/internal/domains/history/model"
	roomModel "hotel/internal/domains/room/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/timezone"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	ReportDashboardStats      = "dashboard-stats"
	ReportTotalRevenue        = "total-revenue"
	ReportRevenueByRoomType   = "revenue-by-room-type"
	ReportRevenueByRoomNo     = "revenue-by-room-no"
	ReportRevenueByMonth      = "revenue-by-month"
	ReportAverageStayDuration = "average-stay-duration"
	ReportGuestRepeatCount    = "guest-repeat-count"
	ReportStayComparison      = "stay-comparison"
)

// ReportTypes lists every supported reportType.
var ReportTypes = []string{
	ReportDashboardStats,
	ReportTotalRevenue,
	ReportRevenueByRoomType,
	ReportRevenueByRoomNo,
	ReportRevenueByMonth,
	ReportAverageStayDuration,
	ReportGuestRepeatCount,
	ReportStayComparison,
}

const (
	QueryReportType = "reportType"
	QueryRoomType   = "roomType"
	QueryRoomNo     = "roomNo"
	QueryStatus     = "status"
	QueryGuestName  = "guestName"
	QueryStartDate  = "startDate"
	QueryEndDate    = "endDate"
	QueryMinNights  = "minNights"
	QueryMaxNights  = "maxNights"
)

const MessageInvalidID = "Invalid booking history ID format"

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// HistoryQuery is the raw query string of the history endpoint.
type HistoryQuery struct {
	ReportType string `json:"-"`
	RoomType   string `json:"roomType,omitempty"`
	RoomNo     string `json:"roomNo,omitempty"`
	Status     string `json:"status,omitempty"`
	GuestName  string `json:"guestName,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	MinNights  string `json:"minNights,omitempty"`
	MaxNights  string `json:"maxNights,omitempty"`
}

// FilterGroup validates the query and turns it into the archive filter. endDate includes
// the whole day in the application timezone.
func (q *HistoryQuery) FilterGroup() (gDto.FilterGroup, error) {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	q.ReportType = strings.TrimSpace(q.ReportType)
	if q.ReportType != "" && !slices.Contains(ReportTypes, q.ReportType) {
		return group, failure.BadRequestFromString("Invalid report type: " + q.ReportType)
	}

	if q.RoomType = strings.TrimSpace(q.RoomType); q.RoomType != "" {
		if !slices.Contains([]string{roomModel.TypeSingle, roomModel.TypeDouble, roomModel.TypeSuite}, q.RoomType) {
			return group, failure.BadRequestFromString("roomType must be one of single double suite")
		}

		group.Add(gDto.Filter{Field: model.FieldRoomType, Value: q.RoomType, Operator: gDto.FilterOperatorEq})
	}

	if q.Status = strings.TrimSpace(q.Status); q.Status != "" {
		if !slices.Contains(model.Statuses, q.Status) {
			return group, failure.BadRequestFromString("status must be one of completed early_checkout extended_stay")
		}

		group.Add(gDto.Filter{Field: model.FieldStatus, Value: q.Status, Operator: gDto.FilterOperatorEq})
	}

	if q.GuestName = strings.TrimSpace(q.GuestName); q.GuestName != "" {
		group.Add(gDto.Filter{Field: model.FieldGuestName, Value: q.GuestName, Operator: gDto.FilterOperatorLike})
	}

	roomNo, err := parseInt(QueryRoomNo, q.RoomNo)
	if err != nil {
		return group, err
	}

	if roomNo != nil {
		group.Add(gDto.Filter{Field: model.FieldRoomNo, Value: *roomNo, Operator: gDto.FilterOperatorEq})
	}

	if err := q.addDateRange(&group); err != nil {
		return group, err
	}

	minNights, err := parseInt(QueryMinNights, q.MinNights)
	if err != nil {
		return group, err
	}

	maxNights, err := parseInt(QueryMaxNights, q.MaxNights)
	if err != nil {
		return group, err
	}

	if minNights != nil {
		group.Add(gDto.Filter{Field: model.FieldActualNightsStayed, Value: *minNights, Operator: gDto.FilterOperatorGreaterEq, ArgName: "min_nights"})
	}

	if maxNights != nil {
		group.Add(gDto.Filter{Field: model.FieldActualNightsStayed, Value: *maxNights, Operator: gDto.FilterOperatorLessEq, ArgName: "max_nights"})
	}

	return group, nil
}

func (q *HistoryQuery) addDateRange(group *gDto.FilterGroup) error {
	var start, end time.Time

	if q.StartDate = strings.TrimSpace(q.StartDate); q.StartDate != "" {
		parsed, err := parseDate(QueryStartDate, q.StartDate)
		if err != nil {
			return err
		}

		start = parsed
		group.Add(gDto.Filter{Field: model.FieldCheckOutDate, Value: start, Operator: gDto.FilterOperatorGreaterEq, ArgName: "start_date"})
	}

	if q.EndDate = strings.TrimSpace(q.EndDate); q.EndDate != "" {
		parsed, err := parseDate(QueryEndDate, q.EndDate)
		if err != nil {
			return err
		}

		end = timezone.EndOfDay(parsed)
		group.Add(gDto.Filter{Field: model.FieldCheckOutDate, Value: end, Operator: gDto.FilterOperatorLessEq, ArgName: "end_date"})
	}

	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return failure.BadRequestFromString("endDate must not be before startDate")
	}

	return nil
}

// CacheParts renders the query for the report cache key.
func (q *HistoryQuery) CacheParts() map[string]string {
	return map[string]string{
		QueryReportType: q.ReportType,
		QueryRoomType:   q.RoomType,
		QueryRoomNo:     q.RoomNo,
		QueryStatus:     q.Status,
		QueryGuestName:  strings.ToLower(q.GuestName),
		QueryStartDate:  q.StartDate,
		QueryEndDate:    q.EndDate,
		QueryMinNights:  q.MinNights,
		QueryMaxNights:  q.MaxNights,
	}
}

func parseInt(name, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil //nolint:nilnil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return nil, failure.BadRequestFromString(name + " must be a non-negative integer")
	}

	return &parsed, nil
}

func parseDate(name, value string) (time.Time, error) {
	if parsed, err := timezone.Parse(constant.DayFormat, value); err == nil {
		return parsed, nil
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return timezone.StartOfDay(parsed), nil
	}

	return time.Time{}, failure.BadRequestFromString(name + " must be a date formatted as YYYY-MM-DD")
}

type HistoryResponse struct {
	ID                 string  `json:"id"`
	RoomID             string  `json:"roomId"`
	GuestName          string  `json:"guestName"`
	RoomNo             int     `json:"roomNo"`
	RoomType           string  `json:"roomType"`
	CheckInDate        string  `json:"checkInDate"`
	CheckOutDate       string  `json:"checkOutDate"`
	Nights             int     `json:"nights"`
	PricePerNight      float64 `json:"pricePerNight"`
	TotalAmount        float64 `json:"totalAmount"`
	ActualNightsStayed int     `json:"actualNightsStayed"`
	ActualTotalAmount  float64 `json:"actualTotalAmount"`
	Status             string  `json:"status"`
	CreatedAt          string  `json:"createdAt"`
	CreatedBy          string  `json:"createdBy"`
}

func (r *HistoryResponse) FromModel(m model.BookingHistory) {
	r.ID = m.ID
	r.RoomID = m.RoomID
	r.GuestName = m.GuestName
	r.RoomNo = m.RoomNo
	r.RoomType = m.RoomType
	r.CheckInDate = timezone.Format(m.CheckInDate, constant.DateFormat)
	r.CheckOutDate = timezone.Format(m.CheckOutDate, constant.DateFormat)
	r.Nights = m.Nights
	r.PricePerNight = m.PricePerNight
	r.TotalAmount = m.TotalAmount
	r.ActualNightsStayed = m.ActualNightsStayed
	r.ActualTotalAmount = m.ActualTotalAmount
	r.Status = m.Status
	r.CreatedAt = timezone.Format(m.CreatedAt, constant.DateFormat)
	r.CreatedBy = m.CreatedBy
}

type Analytics struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalBookings       int     `json:"totalBookings"`
	AverageStayDuration float64 `json:"averageStayDuration"`
}

func NewAnalytics(totals model.Totals) Analytics {
	return Analytics{
		TotalRevenue:        totals.TotalRevenue,
		TotalBookings:       totals.TotalBookings,
		AverageStayDuration: round(totals.AverageStay),
	}
}

// HistoryResult is the outcome of a history query: either a paginated listing with its
// analytics and echoed filters, or one aggregated report.
type HistoryResult struct {
	ReportType string
	Data       any
	Analytics  *Analytics
	Pagination *gDto.Pagination
	Filters    *HistoryQuery
}

type StatusShare struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type DashboardStats struct {
	Analytics
	StatusBreakdown []StatusShare `json:"statusBreakdown"`
}

func NewDashboardStats(totals model.Totals, breakdown []model.StatusBreakdown) DashboardStats {
	res := DashboardStats{Analytics: NewAnalytics(totals), StatusBreakdown: make([]StatusShare, len(breakdown))}

	for i, row := range breakdown {
		res.StatusBreakdown[i] = StatusShare{Status: row.Status, Count: row.Count, Percentage: percentage(row.Count, totals.TotalBookings)}
	}

	return res
}

type TotalRevenue struct {
	TotalRevenue             float64 `json:"totalRevenue"`
	TotalBookings            int     `json:"totalBookings"`
	TotalNights              int     `json:"totalNights"`
	AverageRevenuePerBooking float64 `json:"averageRevenuePerBooking"`
}

func NewTotalRevenue(totals model.Totals) TotalRevenue {
	return TotalRevenue{
		TotalRevenue:             totals.TotalRevenue,
		TotalBookings:            totals.TotalBookings,
		TotalNights:              totals.TotalNights,
		AverageRevenuePerBooking: round(totals.AverageRevenuePerBooking),
	}
}

type StayDuration struct {
	AverageStay   float64 `json:"averageStay"`
	MinStay       int     `json:"minStay"`
	MaxStay       int     `json:"maxStay"`
	TotalBookings int     `json:"totalBookings"`
}

func NewStayDuration(totals model.Totals) StayDuration {
	return StayDuration{
		AverageStay:   round(totals.AverageStay),
		MinStay:       totals.MinStay,
		MaxStay:       totals.MaxStay,
		TotalBookings: totals.TotalBookings,
	}
}

type RoomTypeRevenue struct {
	RoomType     string  `json:"roomType"`
	TotalRevenue float64 `json:"totalRevenue"`
	BookingCount int     `json:"bookingCount"`
	AverageStay  float64 `json:"averageStay"`
	Rooms        []int   `json:"rooms"`
}

func NewRoomTypeRevenues(rows []model.RoomTypeRevenue) []RoomTypeRevenue {
	res := make([]RoomTypeRevenue, len(rows))

	for i, row := range rows {
		rooms := make([]int, len(row.Rooms))
		for j, roomNo := range row.Rooms {
			rooms[j] = int(roomNo)
		}

		res[i] = RoomTypeRevenue{
			RoomType:     row.RoomType,
			TotalRevenue: row.TotalRevenue,
			BookingCount: row.BookingCount,
			AverageStay:  round(row.AverageStay),
			Rooms:        rooms,
		}
	}

	return res
}

type RoomNoRevenue struct {
	RoomNo                 int     `json:"roomNo"`
	RoomType               string  `json:"roomType"`
	TotalRevenue           float64 `json:"totalRevenue"`
	BookingCount           int     `json:"bookingCount"`
	TotalNights            int     `json:"totalNights"`
	AverageRevenuePerNight float64 `json:"averageRevenuePerNight"`
}

func NewRoomNoRevenues(rows []model.RoomNoRevenue) []RoomNoRevenue {
	res := make([]RoomNoRevenue, len(rows))

	for i, row := range rows {
		res[i] = RoomNoRevenue{
			RoomNo:                 row.RoomNo,
			RoomType:               row.RoomType,
			TotalRevenue:           row.TotalRevenue,
			BookingCount:           row.BookingCount,
			TotalNights:            row.TotalNights,
			AverageRevenuePerNight: round(row.AverageRevenuePerNight),
		}
	}

	return res
}

type MonthRevenue struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	MonthName    string  `json:"monthName"`
	TotalRevenue float64 `json:"totalRevenue"`
	BookingCount int     `json:"bookingCount"`
	TotalNights  int     `json:"totalNights"`
}

func NewMonthRevenues(rows []model.MonthRevenue) []MonthRevenue {
	res := make([]MonthRevenue, len(rows))

	for i, row := range rows {
		res[i] = MonthRevenue{
			Year:         row.Year,
			Month:        row.Month,
			MonthName:    MonthName(row.Month),
			TotalRevenue: row.TotalRevenue,
			BookingCount: row.BookingCount,
			TotalNights:  row.TotalNights,
		}
	}

	return res
}

// MonthName returns the short English name of a 1-based month, empty when out of range.
func MonthName(month int) string {
	if month < 1 || month > len(monthNames) {
		return constant.Empty
	}

	return monthNames[month-1]
}

type RepeatGuest struct {
	GuestName   string  `json:"guestName"`
	VisitCount  int     `json:"visitCount"`
	TotalSpent  float64 `json:"totalSpent"`
	TotalNights int     `json:"totalNights"`
	LastVisit   string  `json:"lastVisit"`
}

func NewRepeatGuests(rows []model.RepeatGuest) []RepeatGuest {
	res := make([]RepeatGuest, len(rows))

	for i, row := range rows {
		res[i] = RepeatGuest{
			GuestName:   row.GuestName,
			VisitCount:  row.VisitCount,
			TotalSpent:  row.TotalSpent,
			TotalNights: row.TotalNights,
			LastVisit:   timezone.Format(row.LastVisit, constant.DateFormat),
		}
	}

	return res
}

type StayComparison struct {
	Status        string  `json:"status"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
	TotalRevenue  float64 `json:"totalRevenue"`
	AverageNights float64 `json:"averageNights"`
}

func NewStayComparisons(rows []model.StatusBreakdown) []StayComparison {
	total := 0
	for _, row := range rows {
		total += row.Count
	}

	res := make([]StayComparison, len(rows))

	for i, row := range rows {
		res[i] = StayComparison{
			Status:        row.Status,
			Count:         row.Count,
			Percentage:    percentage(row.Count, total),
			TotalRevenue:  row.TotalRevenue,
			AverageNights: round(row.AverageNights),
		}
	}

	return res
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return round(float64(part) / float64(total) * 100)
}

// round keeps two decimals.
func round(value float64) float64 {
	return math.Round(value*100) / 100
}
