package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/s3"
	historyModel "hotel/internal/domains/history/model"
	"hotel/shared/constant"
	"hotel/shared/timezone"
	"strings"

	"github.com/phpdave11/gofpdf"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 7
)

var statusLabels = map[string]string{
	historyModel.StatusCompleted:     "Completed",
	historyModel.StatusEarlyCheckout: "Early checkout",
	historyModel.StatusExtendedStay:  "Extended stay",
}

type Invoice interface {
	Render(ctx context.Context, history historyModel.BookingHistory) ([]byte, error)
	Archive(ctx context.Context, history historyModel.BookingHistory) (string, error)
}

type serviceImpl struct {
	cfg     *config.Config
	storage s3.S3
	otel    otel.Otel
}

func New(cfg *config.Config, storage s3.S3, otel otel.Otel) Invoice {
	return &serviceImpl{
		cfg:     cfg,
		storage: storage,
		otel:    otel,
	}
}

// FileName is the object and download name of a stay's invoice.
func FileName(history historyModel.BookingHistory) string {
	return fmt.Sprintf("INVOICE_%d_%s.pdf", history.RoomNo, history.ID)
}

func (s *serviceImpl) Render(ctx context.Context, history historyModel.BookingHistory) (res []byte, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".invoice.Render")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+history.ID, false)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.Cell(0, 10, strings.ToUpper(s.cfg.App.Name)+" INVOICE")
	pdf.Ln(12)

	pdf.SetFont(fontFamily, "", 12)
	pdf.Cell(0, lineHeight, "Invoice No : INV-"+history.ID)
	pdf.Ln(lineHeight)
	pdf.Cell(0, lineHeight, "Issued     : "+timezone.Format(history.CheckOutDate, constant.InvoiceFormat))
	pdf.Ln(10)

	pdf.SetFont(fontFamily, "B", 12)
	pdf.Cell(0, lineHeight, "Guest")
	pdf.Ln(lineHeight)

	pdf.SetFont(fontFamily, "", 12)
	pdf.Cell(0, lineHeight, "Name       : "+history.GuestName)
	pdf.Ln(lineHeight)
	pdf.Cell(0, lineHeight, fmt.Sprintf("Room       : %d (%s)", history.RoomNo, history.RoomType))
	pdf.Ln(lineHeight)
	pdf.Cell(0, lineHeight, "Check-in   : "+timezone.Format(history.CheckInDate, constant.InvoiceFormat))
	pdf.Ln(lineHeight)
	pdf.Cell(0, lineHeight, "Check-out  : "+timezone.Format(history.CheckOutDate, constant.InvoiceFormat))
	pdf.Ln(10)

	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(70, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Nights", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Rate", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont(fontFamily, "", 11)
	pdf.CellFormat(70, 8, "Planned stay", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprint(history.Nights), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(history.PricePerNight), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(history.TotalAmount), "1", 1, "R", false, 0, "")
	pdf.CellFormat(70, 8, "Actual stay", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprint(history.ActualNightsStayed), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(history.PricePerNight), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(history.ActualTotalAmount), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(fontFamily, "B", 12)
	pdf.Cell(0, 8, "Total due : "+money(history.ActualTotalAmount))
	pdf.Ln(10)

	pdf.SetFont(fontFamily, "I", 10)
	pdf.MultiCell(0, 6, "Stay status: "+statusLabels[history.Status], "", "", false)

	var buf bytes.Buffer
	if err = pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	return buf.Bytes(), nil
}

// Archive renders the invoice and stores it in object storage. It returns an empty URL
// without error when object storage is disabled.
func (s *serviceImpl) Archive(ctx context.Context, history historyModel.BookingHistory) (url string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".invoice.Archive")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !s.storage.Enabled() {
		return constant.Empty, nil
	}

	data, err := s.Render(ctx, history)
	if err != nil {
		return constant.Empty, err
	}

	url, err = s.storage.UploadFileBytes(ctx, constant.Empty, s.cfg.External.S3.InvoiceDir, FileName(history), constant.ContentTypePDF, data)
	if errors.Is(err, s3.ErrDisabled) {
		return constant.Empty, nil
	}

	if err != nil {
		return constant.Empty, fmt.Errorf("failed to archive invoice: %w", err)
	}

	return url, nil
}

func money(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
