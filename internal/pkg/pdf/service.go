// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/pkg/money"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	AppName        string
	Reference      string
	PlacedAt       string
	Status         string
	CustomerName   string
	Phone          string
	Address        string
	Campus         string
	University     string
	Persons        int
	Lines          []ReceiptLine
	ItemTotal      string
	DeliveryCharge string
	GrandTotal     string
	PayeeName      string
	PayeeBank      string
	PayeeAccount   string
	Notes          string
}

// ReceiptLine is one item row
type ReceiptLine struct {
	Name       string
	Restaurant string
	Quantity   int
	UnitPrice  string
	Total      string
}

// NewReceiptData prepares an order for the receipt template
func NewReceiptData(appName string, o *order.Order, loc *time.Location) ReceiptData {
	data := ReceiptData{
		AppName:        appName,
		Reference:      o.Reference,
		PlacedAt:       o.CreatedAt.In(loc).Format("January 2, 2006 3:04 PM"),
		Status:         string(o.EffectiveStatus()),
		CustomerName:   o.CustomerName,
		Phone:          o.Phone,
		Address:        o.Address,
		Campus:         o.CampusName,
		University:     o.UniversityName,
		Persons:        o.Persons,
		ItemTotal:      money.FormatRs(o.ItemTotal),
		DeliveryCharge: money.FormatRs(o.DeliveryCharge),
		GrandTotal:     money.FormatRs(o.GrandTotal),
		PayeeName:      o.PayeeName,
		PayeeBank:      o.PayeeBank,
		PayeeAccount:   o.PayeeAccount,
		Notes:          o.Notes,
	}

	for _, it := range o.Items() {
		line := ReceiptLine{Name: it.Name, Restaurant: it.Restaurant, Quantity: it.Quantity}
		if it.UnitPrice > 0 {
			line.UnitPrice = money.Format(it.UnitPrice)
			line.Total = money.Format(money.LineTotal(it.UnitPrice, it.Quantity))
		}
		data.Lines = append(data.Lines, line)
	}
	return data
}

// RenderHTML renders the receipt template
func RenderHTML(data ReceiptData) ([]byte, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateReceipt generates a PDF receipt for an order
func (s *Service) GenerateReceipt(o *order.Order) ([]byte, error) {
	htmlContent, err := RenderHTML(NewReceiptData(s.config.App.Name, o, s.config.Location()))
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.Reference}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 12px; margin-bottom: 20px; }
        .title { font-size: 24px; font-weight: bold; color: #16a34a; }
        .details td { padding: 3px 0; vertical-align: top; }
        .details .label { font-weight: bold; width: 120px; }
        .items { width: 100%; border-collapse: collapse; margin: 20px 0; }
        .items th, .items td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        .items th { background-color: #f8f9fa; }
        .items .num { text-align: right; width: 70px; }
        .totals { width: 260px; margin-left: auto; border-collapse: collapse; }
        .totals td { padding: 6px; border-bottom: 1px solid #eee; }
        .totals .amount { text-align: right; }
        .grand { font-size: 16px; font-weight: bold; }
        .payee { margin-top: 24px; padding: 12px; background: #f0fdf4; }
        .status { text-transform: uppercase; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.AppName}}</div>
        <p>Receipt <strong>{{.Reference}}</strong> &middot; {{.PlacedAt}} &middot; <span class="status">{{.Status}}</span></p>
    </div>

    <table class="details">
        <tr><td class="label">Name</td><td>{{.CustomerName}}</td></tr>
        <tr><td class="label">Phone</td><td>{{.Phone}}</td></tr>
        <tr><td class="label">Address</td><td>{{.Address}}</td></tr>
        <tr><td class="label">Campus</td><td>{{.Campus}}{{if .University}}, {{.University}}{{end}}</td></tr>
        <tr><td class="label">Persons</td><td>{{.Persons}}</td></tr>
    </table>

    <table class="items">
        <thead>
            <tr><th>Item</th><th>Restaurant</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
        {{range .Lines}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.Restaurant}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.UnitPrice}}</td>
                <td class="num">{{.Total}}</td>
            </tr>
        {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Items</td><td class="amount">{{.ItemTotal}}</td></tr>
        <tr><td>Delivery</td><td class="amount">{{.DeliveryCharge}}</td></tr>
        <tr class="grand"><td>Total</td><td class="amount">{{.GrandTotal}}</td></tr>
    </table>

    {{if .PayeeName}}
    <div class="payee">
        Payment to <strong>{{.PayeeName}}</strong>, {{.PayeeBank}} {{.PayeeAccount}}
    </div>
    {{end}}
    {{if .Notes}}<p><em>{{.Notes}}</em></p>{{end}}
</body>
</html>
`
