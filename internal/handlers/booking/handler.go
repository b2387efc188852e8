package booking

import (
	"hotel/infras/otel"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/service"
	historyDto "hotel/internal/domains/history/model/dto"
	historyService "hotel/internal/domains/history/service"
	lifecycleService "hotel/internal/domains/lifecycle/service"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/validator"
	"hotel/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	MessageCreated    = "Booking created successfully"
	MessageUpdated    = "Booking updated successfully"
	MessageDeleted    = "Booking deleted successfully"
	MessageCheckedOut = "Checkout completed successfully"
)

type Handler struct {
	service   service.Booking
	lifecycle lifecycleService.Lifecycle
	history   historyService.History
	otel      otel.Otel
}

func New(service service.Booking, lifecycle lifecycleService.Lifecycle, history historyService.History, otel otel.Otel) Handler {
	return Handler{
		service:   service,
		lifecycle: lifecycle,
		history:   history,
		otel:      otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/summary", handler.GetSummary)
		routerGroup.Get("/history", handler.GetHistory)
		routerGroup.Get("/history/{id}", handler.GetHistoryByID)
		routerGroup.Get("/history/{id}/invoice", handler.GetInvoice)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Put("/{id}", handler.UpdateBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
		routerGroup.Post("/{id}/checkout", handler.Checkout)
	})
}

// CreateBooking books a free room.
// @Summary Create a booking
// @Description Occupies the room and snapshots its price. An occupied room answers 409 with
// @Description the current booking and the checkout or cancel options.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Envelope{data=dto.BookingResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Decode(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.lifecycle.CreateBooking(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created successfully by user " + shared.Actor(ctx))

	response.WithJSON(writer, http.StatusCreated, MessageCreated, res)
}

// GetBookings lists active bookings.
// @Summary Get all bookings
// @Description Active bookings with their room, newest first.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Envelope{data=[]dto.BookingResponse}
// @Failure 500 {object} response.Envelope
// @Router /api/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	res, err := handler.service.GetAll(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(writer, err)

		return
	}

	response.WithPage(writer, res.Bookings, res.Pagination)
}

// GetSummary reports active bookings per room.
// @Summary Booking summary
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Envelope{data=[]dto.SummaryResponse}
// @Failure 500 {object} response.Envelope
// @Router /api/bookings/summary [get]
// @Security BearerAuth
func (handler *Handler) GetSummary(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSummary")
	defer scope.End()

	res, err := handler.service.Summary(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking summary")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, constant.Empty, res)
}

// GetHistory lists archived stays or builds an analytics report.
// @Summary Booking history and analytics
// @Description Without reportType: paginated archive with analytics and the echoed filters.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param reportType query string false "Report" Enums(dashboard-stats, total-revenue, revenue-by-room-type, revenue-by-room-no, revenue-by-month, average-stay-duration, guest-repeat-count, stay-comparison)
// @Param roomType query string false "Room type"
// @Param roomNo query integer false "Room number"
// @Param status query string false "Stay status" Enums(completed, early_checkout, extended_stay)
// @Param guestName query string false "Guest name, case-insensitive contains"
// @Param startDate query string false "Checkout on or after (YYYY-MM-DD)"
// @Param endDate query string false "Checkout on or before (YYYY-MM-DD)"
// @Param minNights query integer false "Minimum nights stayed"
// @Param maxNights query integer false "Maximum nights stayed"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/bookings/history [get]
// @Security BearerAuth
func (handler *Handler) GetHistory(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHistory")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	values := request.URL.Query()
	query := historyDto.HistoryQuery{
		ReportType: values.Get(historyDto.QueryReportType),
		RoomType:   values.Get(historyDto.QueryRoomType),
		RoomNo:     values.Get(historyDto.QueryRoomNo),
		Status:     values.Get(historyDto.QueryStatus),
		GuestName:  values.Get(historyDto.QueryGuestName),
		StartDate:  values.Get(historyDto.QueryStartDate),
		EndDate:    values.Get(historyDto.QueryEndDate),
		MinNights:  values.Get(historyDto.QueryMinNights),
		MaxNights:  values.Get(historyDto.QueryMaxNights),
	}

	res, err := handler.history.Query(ctx, queryParams, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to query booking history")

		response.WithError(writer, err)

		return
	}

	envelope := response.Envelope{
		Success:    true,
		Data:       res.Data,
		Pagination: res.Pagination,
		ReportType: res.ReportType,
	}

	if res.Analytics != nil {
		envelope.Analytics = res.Analytics
	}

	if res.Filters != nil {
		envelope.Filters = res.Filters
	}

	response.WithEnvelope(writer, http.StatusOK, envelope)
}

// GetHistoryByID returns one archived stay.
// @Summary Get an archived stay
// @Tags Booking
// @Produce json
// @Param id path string true "Booking history ID"
// @Success 200 {object} response.Envelope{data=historyDto.HistoryResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/bookings/history/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetHistoryByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHistoryByID")
	defer scope.End()

	res, err := handler.history.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking history")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, constant.Empty, res)
}

// GetInvoice renders the PDF invoice of an archived stay.
// @Summary Download an invoice
// @Tags Booking
// @Produce application/pdf
// @Param id path string true "Booking history ID"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/bookings/history/{id}/invoice [get]
// @Security BearerAuth
func (handler *Handler) GetInvoice(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetInvoice")
	defer scope.End()

	fileName, pdf, err := handler.history.Invoice(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to render invoice")

		response.WithError(writer, err)

		return
	}

	response.WithFile(writer, constant.ContentTypePDF, fileName, pdf)
}

// GetBookingByID returns one active booking.
// @Summary Get a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope{data=dto.BookingResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, constant.Empty, res)
}

// UpdateBooking edits the guest name or planned nights.
// @Summary Update a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Update Booking Request"
// @Success 200 {object} response.Envelope{data=dto.BookingResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/bookings/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	req := dto.UpdateBookingRequest{}

	if err := validator.Decode(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Update(ctx, chi.URLParam(request, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking updated successfully by user " + shared.Actor(ctx))

	response.WithJSON(writer, http.StatusOK, MessageUpdated, res)
}

// DeleteBooking cancels an active booking without archiving it.
// @Summary Delete a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	if err := handler.lifecycle.CancelBooking(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking deleted successfully by user " + shared.Actor(ctx))

	response.WithMessage(writer, http.StatusOK, MessageDeleted)
}

// Checkout ends a stay, archives it and frees the room.
// @Summary Checkout a booking
// @Description Bills the nights actually stayed at the snapshot price.
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/bookings/{id}/checkout [post]
// @Security BearerAuth
func (handler *Handler) Checkout(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Checkout")
	defer scope.End()

	res, err := handler.lifecycle.Checkout(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to checkout booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking checked out by user " + shared.Actor(ctx))

	response.WithJSON(writer, http.StatusOK, MessageCheckedOut, res)
}
