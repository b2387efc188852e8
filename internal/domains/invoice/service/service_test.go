package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"hotel/config"
	"hotel/infras/otel/mocks"
	s3Mocks "hotel/infras/s3/mocks"
	historyModel "hotel/internal/domains/history/model"
	"hotel/internal/domains/invoice/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func stay() historyModel.BookingHistory {
	checkIn := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	return historyModel.BookingHistory{
		ID:                 "history-1",
		RoomID:             "room-1",
		GuestName:          "Jane Doe",
		RoomNo:             204,
		RoomType:           "double",
		CheckInDate:        checkIn,
		CheckOutDate:       checkIn.Add(72 * time.Hour),
		Nights:             3,
		PricePerNight:      150,
		TotalAmount:        450,
		ActualNightsStayed: 3,
		ActualTotalAmount:  450,
		Status:             historyModel.StatusCompleted,
	}
}

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "hotel-management-api"
	cfg.External.S3.InvoiceDir = "invoices"

	return cfg
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "INVOICE_204_history-1.pdf", service.FileName(stay()))
}

func TestInvoiceService_Render(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.New(newConfig(), s3Mocks.NewMockS3(ctrl), mocks.NewOtel())

	data, err := svc.Render(context.Background(), stay())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestInvoiceService_Archive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockS3 := s3Mocks.NewMockS3(ctrl)
	svc := service.New(newConfig(), mockS3, mocks.NewOtel())

	tests := []struct {
		name      string
		setupMock func()
		wantURL   string
		wantErr   bool
	}{
		{
			name: "storage disabled",
			setupMock: func() {
				mockS3.EXPECT().Enabled().Return(false)
			},
		},
		{
			name: "uploads the rendered pdf",
			setupMock: func() {
				mockS3.EXPECT().Enabled().Return(true)
				mockS3.EXPECT().
					UploadFileBytes(gomock.Any(), "", "invoices", "INVOICE_204_history-1.pdf", "application/pdf", gomock.Any()).
					Return("https://cdn.example.com/invoices/INVOICE_204_history-1.pdf", nil)
			},
			wantURL: "https://cdn.example.com/invoices/INVOICE_204_history-1.pdf",
		},
		{
			name: "upload failure",
			setupMock: func() {
				mockS3.EXPECT().Enabled().Return(true)
				mockS3.EXPECT().
					UploadFileBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.New("access denied"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			url, err := svc.Archive(context.Background(), stay())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
		})
	}
}
