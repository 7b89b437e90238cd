// Package document renders the registration confirmation PDF.
package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/gosimple/slug"
	"github.com/yeqown/go-qrcode"

	"github.com/iliyamo/festival-registration/internal/model"
)

// AttachmentName returns registration-<slug of full name>.pdf, falling back
// to the registration number when the name slugs to nothing.
func AttachmentName(reg model.Registration) string {
	s := slug.Make(reg.FullName())
	if s == "" {
		s = slug.Make(reg.RegistrationNumber)
	}
	if s == "" {
		s = "confirmation"
	}
	return "registration-" + s + ".pdf"
}

// qrJPEG encodes text as a QR code image.  go-qrcode writes JPEG by default.
func qrJPEG(text string) ([]byte, error) {
	qrc, err := qrcode.New(text)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RegistrationPDF renders an A4 confirmation for reg: a header with the
// event name, a participant and vehicle table, and a QR code carrying the
// registration number for gate check-in.
func RegistrationPDF(reg model.Registration, eventName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(eventName+" registration "+reg.RegistrationNumber, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(183, 28, 28)
	pdf.CellFormat(0, 12, tr(eventName), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Registration confirmation", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, reg.RegistrationNumber, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	year := ""
	if reg.VehicleYear > 0 {
		year = strconv.Itoa(reg.VehicleYear)
	}
	rows := [][2]string{
		{"Participant", reg.FullName()},
		{"Email", reg.Email},
		{"Phone", reg.Phone},
		{"City", reg.City},
		{"Vehicle", strings.TrimSpace(reg.VehicleMake + " " + reg.VehicleModel)},
		{"Year", year},
		{"Category", reg.VehicleCategory},
		{"Plate", reg.PlateNumber},
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(45, 8, r[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(0, 8, tr(r[1]), "1", 1, "L", false, 0, "")
	}

	img, err := qrJPEG(reg.RegistrationNumber)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	const qrName = "qr"
	opts := fpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(qrName, opts, bytes.NewReader(img))
	pdf.Ln(8)
	pdf.ImageOptions(qrName, 20, pdf.GetY(), 45, 45, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + 48)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Present this code at the gate.", "", 1, "L", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out.Bytes(), nil
}
