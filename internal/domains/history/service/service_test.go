package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"hotel/config"
	otelMocks "hotel/infras/otel/mocks"
	"hotel/internal/domains/history/mocks"
	"hotel/internal/domains/history/model"
	"hotel/internal/domains/history/model/dto"
	"hotel/internal/domains/history/service"
	invoiceMocks "hotel/internal/domains/invoice/mocks"
	cacheMocks "hotel/shared/cache/mocks"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const historyID = "3c2b1a09-8f7e-4d6c-9b5a-4e3d2c1b0a9f"

var errCacheMiss = errors.New("redis: nil")

type fixture struct {
	repo    *mocks.MockHistory
	invoice *invoiceMocks.MockInvoice
	cache   *cacheMocks.MockRedisCache
	svc     service.History
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:    mocks.NewMockHistory(ctrl),
		invoice: invoiceMocks.NewMockInvoice(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.invoice, f.cache, &config.Config{}, otelMocks.NewOtel())

	return f
}

func record() model.BookingHistory {
	return model.BookingHistory{
		ID:                 historyID,
		GuestName:          "Jane",
		RoomNo:             101,
		RoomType:           "double",
		CheckInDate:        time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate:       time.Date(2025, time.January, 12, 10, 0, 0, 0, time.UTC),
		Nights:             2,
		PricePerNight:      100,
		TotalAmount:        200,
		ActualNightsStayed: 3,
		ActualTotalAmount:  300,
		Status:             model.StatusExtendedStay,
	}
}

func TestHistory_QueryListing(t *testing.T) {
	t.Run("empty archive yields zeros", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(model.Totals{}, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.svc.Query(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, dto.HistoryQuery{})
		require.NoError(t, err)

		require.NotNil(t, res.Analytics)
		assert.Equal(t, dto.Analytics{}, *res.Analytics)
		require.NotNil(t, res.Pagination)
		assert.Equal(t, 0, res.Pagination.Total)
		assert.Empty(t, res.Data)
		assert.Empty(t, res.ReportType)
	})

	t.Run("sorted by checkout date with echoed filters", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(model.Totals{TotalRevenue: 300, TotalBookings: 1, AverageStay: 3}, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, group gDto.FilterGroup, _ ...string) ([]model.BookingHistory, error) {
				assert.Equal(t, "booking_histories.check_out_date", params.SortBy)
				assert.Equal(t, gDto.SortDirDesc, params.SortDir)
				assert.False(t, group.IsEmpty())

				return []model.BookingHistory{record()}, nil
			})

		res, err := f.svc.Query(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, dto.HistoryQuery{Status: "extended_stay"})
		require.NoError(t, err)

		data, ok := res.Data.([]dto.HistoryResponse)
		require.True(t, ok)
		require.Len(t, data, 1)
		assert.Equal(t, 3, data[0].ActualNightsStayed)
		assert.InDelta(t, 300.0, res.Analytics.TotalRevenue, 0.001)
		require.NotNil(t, res.Filters)
		assert.Equal(t, "extended_stay", res.Filters.Status)
	})
}

func TestHistory_QueryReports(t *testing.T) {
	tests := []struct {
		name       string
		reportType string
		setupMock  func(f *fixture)
		check      func(t *testing.T, data any)
		wantCode   int
	}{
		{
			name:       "dashboard stats",
			reportType: dto.ReportDashboardStats,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(model.Totals{TotalRevenue: 500, TotalBookings: 4, AverageStay: 2}, nil)
				f.repo.EXPECT().StatusBreakdown(gomock.Any(), gomock.Any()).Return([]model.StatusBreakdown{
					{Status: model.StatusCompleted, Count: 3},
					{Status: model.StatusEarlyCheckout, Count: 1},
				}, nil)
			},
			check: func(t *testing.T, data any) {
				stats, ok := data.(dto.DashboardStats)
				require.True(t, ok)
				assert.Equal(t, 4, stats.TotalBookings)
				assert.InDelta(t, 75.0, stats.StatusBreakdown[0].Percentage, 0.001)
			},
		},
		{
			name:       "total revenue",
			reportType: dto.ReportTotalRevenue,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(model.Totals{TotalRevenue: 600, TotalBookings: 3, TotalNights: 6, AverageRevenuePerBooking: 200}, nil)
			},
			check: func(t *testing.T, data any) {
				assert.Equal(t, dto.TotalRevenue{TotalRevenue: 600, TotalBookings: 3, TotalNights: 6, AverageRevenuePerBooking: 200}, data)
			},
		},
		{
			name:       "average stay duration",
			reportType: dto.ReportAverageStayDuration,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(model.Totals{AverageStay: 2.5, MinStay: 1, MaxStay: 4, TotalBookings: 2}, nil)
			},
			check: func(t *testing.T, data any) {
				assert.Equal(t, dto.StayDuration{AverageStay: 2.5, MinStay: 1, MaxStay: 4, TotalBookings: 2}, data)
			},
		},
		{
			name:       "revenue by room type",
			reportType: dto.ReportRevenueByRoomType,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().RevenueByRoomType(gomock.Any(), gomock.Any()).Return([]model.RoomTypeRevenue{{RoomType: "suite", Rooms: []int64{301}}}, nil)
			},
			check: func(t *testing.T, data any) {
				rows, ok := data.([]dto.RoomTypeRevenue)
				require.True(t, ok)
				assert.Equal(t, []int{301}, rows[0].Rooms)
			},
		},
		{
			name:       "revenue by room number",
			reportType: dto.ReportRevenueByRoomNo,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().RevenueByRoomNo(gomock.Any(), gomock.Any()).Return([]model.RoomNoRevenue{{RoomNo: 101, RoomType: "single"}}, nil)
			},
			check: func(t *testing.T, data any) {
				rows, ok := data.([]dto.RoomNoRevenue)
				require.True(t, ok)
				assert.Equal(t, 101, rows[0].RoomNo)
			},
		},
		{
			name:       "revenue by month uses the application timezone",
			reportType: dto.ReportRevenueByMonth,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().RevenueByMonth(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ gDto.FilterGroup, location string) ([]model.MonthRevenue, error) {
						assert.NotEmpty(t, location)

						return []model.MonthRevenue{{Year: 2025, Month: 3, TotalRevenue: 100}}, nil
					})
			},
			check: func(t *testing.T, data any) {
				rows, ok := data.([]dto.MonthRevenue)
				require.True(t, ok)
				assert.Equal(t, "Mar", rows[0].MonthName)
			},
		},
		{
			name:       "repeat guests",
			reportType: dto.ReportGuestRepeatCount,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().RepeatGuests(gomock.Any(), gomock.Any()).Return([]model.RepeatGuest{{GuestName: "Jane", VisitCount: 2}}, nil)
			},
			check: func(t *testing.T, data any) {
				rows, ok := data.([]dto.RepeatGuest)
				require.True(t, ok)
				assert.Equal(t, 2, rows[0].VisitCount)
			},
		},
		{
			name:       "stay comparison",
			reportType: dto.ReportStayComparison,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().StatusBreakdown(gomock.Any(), gomock.Any()).Return([]model.StatusBreakdown{{Status: model.StatusCompleted, Count: 2}}, nil)
			},
			check: func(t *testing.T, data any) {
				rows, ok := data.([]dto.StayComparison)
				require.True(t, ok)
				assert.InDelta(t, 100.0, rows[0].Percentage, 0.001)
			},
		},
		{
			name:       "unknown report",
			reportType: "occupancy-forecast",
			setupMock:  func(_ *fixture) {},
			wantCode:   http.StatusBadRequest,
		},
		{
			name:       "store error",
			reportType: dto.ReportTotalRevenue,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(model.Totals{}, errors.New("boom"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Query(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, dto.HistoryQuery{ReportType: tt.reportType})

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.reportType, res.ReportType)
			assert.Nil(t, res.Pagination)
			tt.check(t, res.Data)
		})
	}
}

func TestHistory_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record(), nil)

		res, err := f.svc.Get(context.Background(), historyID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusExtendedStay, res.Status)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.BookingHistory{}, nil)

		_, err := f.svc.Get(context.Background(), historyID)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Get(context.Background(), "42")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestHistory_Invoice(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record(), nil)
	f.invoice.EXPECT().Render(gomock.Any(), record()).Return([]byte("%PDF-1.3"), nil)

	name, pdf, err := f.svc.Invoice(context.Background(), historyID)
	require.NoError(t, err)
	assert.Equal(t, "INVOICE_101_"+historyID+".pdf", name)
	assert.Equal(t, []byte("%PDF-1.3"), pdf)
}
