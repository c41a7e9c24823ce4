package mock

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/mxcd/docgate/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	SamplePDFID = "sample-pdf"
	SampleQRID  = "sample-qr"
)

// SamplePDF renders a one-page A4 PDF carrying the given title.
func SamplePDF(title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, title)
	pdf.Ln(16)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "This document is served by the development orchestrator.", "", "", false)

	if pdf.Err() {
		return nil, fmt.Errorf("generate PDF: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// SampleQR renders a 256px PNG QR code encoding url.
func SampleQR(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}
	return png, nil
}

// Seed stores the sample PDF and a QR code pointing at its docgate URL.
func Seed(s *store.Store, publicBaseURL string, ttl time.Duration) error {
	pdf, err := SamplePDF("docgate sample document")
	if err != nil {
		return err
	}
	if err := s.StoreFile(SamplePDFID, pdf, "application/pdf", ttl); err != nil {
		return err
	}

	qr, err := SampleQR(publicBaseURL + "/doc/" + SamplePDFID)
	if err != nil {
		return err
	}
	if err := s.StoreFile(SampleQRID, qr, "image/png", ttl); err != nil {
		return err
	}

	log.Info().Str("pdf", SamplePDFID).Str("qr", SampleQRID).Msg("mock: sample files seeded")
	return nil
}
