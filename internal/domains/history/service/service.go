package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/internal/domains/history/model"
	"hotel/internal/domains/history/model/dto"
	"hotel/internal/domains/history/repository"
	invoiceService "hotel/internal/domains/invoice/service"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Reports are cached under the booking prefix, which every lifecycle commit clears.
var cacheHistory = shared.BuildCacheKey(constant.CachePrefixBooking, "history")

// History is the read side over archived stays.
type History interface {
	Query(ctx context.Context, params gDto.QueryParams, query dto.HistoryQuery) (dto.HistoryResult, error)
	Get(ctx context.Context, id string) (dto.HistoryResponse, error)
	Invoice(ctx context.Context, id string) (fileName string, pdf []byte, err error)
}

type serviceImpl struct {
	repo    repository.History
	invoice invoiceService.Invoice
	cache   cache.RedisCache
	cfg     *config.Config
	otel    otel.Otel
}

func New(repo repository.History, invoice invoiceService.Invoice, cache cache.RedisCache, cfg *config.Config, otel otel.Otel) History {
	return &serviceImpl{
		repo:    repo,
		invoice: invoice,
		cache:   cache,
		cfg:     cfg,
		otel:    otel,
	}
}

func (s *serviceImpl) Query(ctx context.Context, params gDto.QueryParams, query dto.HistoryQuery) (res dto.HistoryResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".history.Query")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter, err := query.FilterGroup()
	if err != nil {
		return res, err
	}

	if query.ReportType == constant.Empty {
		return s.list(ctx, params, query, filter)
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheHistory, gDto.QueryParams{}, query.CacheParts())

	res = dto.HistoryResult{ReportType: query.ReportType}

	if data, ok := s.cached(ctx, cacheKey, query.ReportType); ok {
		res.Data = data

		return res, nil
	}

	res.Data, err = s.report(ctx, query.ReportType, filter)
	if err != nil {
		log.Error().Err(err).Str("reportType", query.ReportType).Msg("failed to build history report")

		return res, err
	}

	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res.Data, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save history report to cache")
	}

	return res, nil
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, query dto.HistoryQuery, filter gDto.FilterGroup) (res dto.HistoryResult, err error) {
	params.SortBy = model.TableName + "." + model.FieldCheckOutDate
	params.SortDir = gDto.SortDirDesc

	totals, err := s.repo.Totals(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to aggregate booking history: %w", err)
	}

	records, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		return res, fmt.Errorf("failed to get booking history: %w", err)
	}

	data := make([]dto.HistoryResponse, len(records))
	for i, record := range records {
		data[i].FromModel(record)
	}

	analytics := dto.NewAnalytics(totals)
	pagination := gDto.NewPagination(params, totals.TotalBookings)

	res.Data = data
	res.Analytics = &analytics
	res.Pagination = &pagination
	res.Filters = &query

	return res, nil
}

func (s *serviceImpl) report(ctx context.Context, reportType string, filter gDto.FilterGroup) (any, error) {
	switch reportType {
	case dto.ReportDashboardStats:
		totals, err := s.repo.Totals(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate totals: %w", err)
		}

		breakdown, err := s.repo.StatusBreakdown(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate statuses: %w", err)
		}

		return dto.NewDashboardStats(totals, breakdown), nil
	case dto.ReportTotalRevenue, dto.ReportAverageStayDuration:
		totals, err := s.repo.Totals(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate totals: %w", err)
		}

		if reportType == dto.ReportTotalRevenue {
			return dto.NewTotalRevenue(totals), nil
		}

		return dto.NewStayDuration(totals), nil
	case dto.ReportRevenueByRoomType:
		rows, err := s.repo.RevenueByRoomType(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate revenue by room type: %w", err)
		}

		return dto.NewRoomTypeRevenues(rows), nil
	case dto.ReportRevenueByRoomNo:
		rows, err := s.repo.RevenueByRoomNo(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate revenue by room number: %w", err)
		}

		return dto.NewRoomNoRevenues(rows), nil
	case dto.ReportRevenueByMonth:
		rows, err := s.repo.RevenueByMonth(ctx, filter, timezone.GetLocation().String())
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate revenue by month: %w", err)
		}

		return dto.NewMonthRevenues(rows), nil
	case dto.ReportGuestRepeatCount:
		rows, err := s.repo.RepeatGuests(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate repeat guests: %w", err)
		}

		return dto.NewRepeatGuests(rows), nil
	case dto.ReportStayComparison:
		rows, err := s.repo.StatusBreakdown(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate statuses: %w", err)
		}

		return dto.NewStayComparisons(rows), nil
	default:
		return nil, failure.BadRequestFromString("Invalid report type: " + reportType)
	}
}

// cached decodes a cached report into its concrete type so the response keeps its shape.
func (s *serviceImpl) cached(ctx context.Context, key, reportType string) (any, bool) {
	var target any

	switch reportType {
	case dto.ReportDashboardStats:
		target = &dto.DashboardStats{}
	case dto.ReportTotalRevenue:
		target = &dto.TotalRevenue{}
	case dto.ReportAverageStayDuration:
		target = &dto.StayDuration{}
	case dto.ReportRevenueByRoomType:
		target = &[]dto.RoomTypeRevenue{}
	case dto.ReportRevenueByRoomNo:
		target = &[]dto.RoomNoRevenue{}
	case dto.ReportRevenueByMonth:
		target = &[]dto.MonthRevenue{}
	case dto.ReportGuestRepeatCount:
		target = &[]dto.RepeatGuest{}
	case dto.ReportStayComparison:
		target = &[]dto.StayComparison{}
	default:
		return nil, false
	}

	if err := s.cache.Get(ctx, key, target); err != nil {
		return nil, false
	}

	return target, true
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.HistoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".history.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	history, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(history)

	return res, nil
}

// Invoice renders the PDF invoice of an archived stay.
func (s *serviceImpl) Invoice(ctx context.Context, id string) (fileName string, pdf []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".history.Invoice")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	history, err := s.get(ctx, id)
	if err != nil {
		return constant.Empty, nil, err
	}

	pdf, err = s.invoice.Render(ctx, history)
	if err != nil {
		return constant.Empty, nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	return invoiceService.FileName(history), pdf, nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.BookingHistory, error) {
	if err := shared.ValidateID(id, dto.MessageInvalidID); err != nil {
		return model.BookingHistory{}, err //nolint:wrapcheck
	}

	history, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("historyId", id).Msg("failed to get booking history")

		return history, fmt.Errorf("failed to get booking history: %w", err)
	}

	if history.ID == constant.Empty {
		return history, failure.NotFound(model.MessageNotFound)
	}

	return history, nil
}
