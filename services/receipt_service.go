package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"hotel-pms/models"
	"hotel-pms/utils"
)

// Receipt is the checkout breakdown handed to the guest: one row per room
// stay, one per service, plus totals and the amount still due.
type Receipt struct {
	BookingCode  string              `json:"bookingCode"`
	CustomerName string              `json:"customerName"`
	IssuedAt     time.Time           `json:"issuedAt"`
	Rooms        []ReceiptRoomRow    `json:"rooms"`
	Services     []ReceiptServiceRow `json:"services"`

	RoomTotal     float64 `json:"roomTotal"`
	ServicesTotal float64 `json:"servicesTotal"`
	Total         float64 `json:"total"`
	Paid          float64 `json:"paid"`
	Due           float64 `json:"due"`
}

type ReceiptRoomRow struct {
	RoomNumber   string  `json:"roomNumber"`
	TypeName     string  `json:"typeName"`
	Nights       int     `json:"nights"`
	NightlyPrice float64 `json:"nightlyPrice"`
	Amount       float64 `json:"amount"`
}

type ReceiptServiceRow struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`
}

// BuildReceipt derives the receipt from a priced booking aggregate. Pure.
func BuildReceipt(b models.Booking, paid float64, now time.Time) Receipt {
	breakdown := PriceBooking(b)

	r := Receipt{
		BookingCode:  b.Code,
		CustomerName: b.CustomerName,
		IssuedAt:     now,

		RoomTotal:     breakdown.RoomTotal,
		ServicesTotal: breakdown.ServicesTotal,
		Total:         breakdown.Total,
		Paid:          paid,
	}
	r.Due = r.Total - paid
	if r.Due < 0 {
		r.Due = 0
	}

	stayNights := 1
	persons := 0
	for _, line := range b.RoomLines {
		nights := LineNights(line)
		if nights > stayNights {
			stayNights = nights
		}
		persons += line.Adults + line.Children

		number := line.RoomNumber
		if number == "" && line.Room != nil {
			number = line.Room.RoomNumber
		}
		typeName := line.TypeName
		if typeName == "" {
			typeName = line.RoomType.TypeName
		}
		r.Rooms = append(r.Rooms, ReceiptRoomRow{
			RoomNumber:   number,
			TypeName:     typeName,
			Nights:       nights,
			NightlyPrice: line.NightlyPrice,
			Amount:       line.NightlyPrice * float64(nights),
		})
		for _, sl := range line.ServiceLines {
			r.Services = append(r.Services, serviceRow(sl, nights, line.Adults+line.Children))
		}
	}
	for _, sl := range b.ServiceLines {
		if sl.RoomLineID != nil {
			continue
		}
		r.Services = append(r.Services, serviceRow(sl, stayNights, persons))
	}
	return r
}

func serviceRow(sl models.ServiceLine, nights, persons int) ReceiptServiceRow {
	qty := sl.Quantity
	if qty < 1 {
		qty = 1
	}
	return ReceiptServiceRow{
		Name:      sl.Name,
		Quantity:  qty,
		UnitPrice: sl.UnitPrice,
		Amount:    ServiceCost(sl, nights, persons),
	}
}

// RenderReceiptPDF renders the printable receipt and returns the bytes plus a
// download filename.
func RenderReceiptPDF(r Receipt) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Checkout Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "CHECKOUT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Booking   : "+r.BookingCode)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Guest     : "+r.CustomerName)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued at : "+r.IssuedAt.Format("2006-01-02 15:04"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Rooms")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range r.Rooms {
		pdf.Cell(0, 6, fmt.Sprintf("Room %s (%s)  %d night(s) x %s = %s",
			row.RoomNumber, row.TypeName, row.Nights,
			utils.FormatMoney(row.NightlyPrice), utils.FormatMoney(row.Amount)))
		pdf.Ln(6)
	}

	if len(r.Services) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Services")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, row := range r.Services {
			pdf.Cell(0, 6, fmt.Sprintf("%s  x%d = %s",
				row.Name, row.Quantity, utils.FormatMoney(row.Amount)))
			pdf.Ln(6)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Room total     : "+utils.FormatMoney(r.RoomTotal))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Services total : "+utils.FormatMoney(r.ServicesTotal))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Total          : "+utils.FormatMoney(r.Total))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Paid           : "+utils.FormatMoney(r.Paid))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Due            : "+utils.FormatMoney(r.Due))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", &Error{Kind: KindInternal, Message: "failed to render receipt", Err: err}
	}
	return buf.Bytes(), fmt.Sprintf("RECEIPT_%s.pdf", r.BookingCode), nil
}
