// internal/domain/ledger/row.go
package ledger

import (
	"strings"
	"time"

	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/pkg/money"
)

const (
	// RowFields is the number of positional order columns before the gender split
	RowFields = 18

	timestampLayout = "2006-01-02 15:04:05"
	defaultTab      = "Orders"
)

// BuildRow renders an order as one spreadsheet row: the positional order
// fields followed by maleOrders, maleOrderDetails, femaleOrders, femaleOrderDetails
func BuildRow(o *order.Order, loc *time.Location) []interface{} {
	created := o.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	row := []interface{}{
		created.In(loc).Format(timestampLayout),
		o.Reference,
		o.CustomerName,
		o.Phone,
		o.Email,
		o.Gender,
		o.UniversityName,
		o.CampusName,
		o.Address,
		o.Persons,
		itemsText(o),
		strings.Join(o.Restaurants(), ", "),
		money.Format(o.ItemTotal),
		money.Format(o.DeliveryCharge),
		money.Format(o.GrandTotal),
		string(o.EffectiveStatus()),
		o.PaymentScreenshotURL,
		o.Notes,
	}

	maleOrders, maleDetails, femaleOrders, femaleDetails := 0, "", 0, ""
	switch strings.ToLower(o.Gender) {
	case "male":
		maleOrders, maleDetails = 1, itemsText(o)
	case "female":
		femaleOrders, femaleDetails = 1, itemsText(o)
	}
	return append(row, maleOrders, maleDetails, femaleOrders, femaleDetails)
}

// TabName is the spreadsheet tab an order is written to
func TabName(o *order.Order) string {
	if name := strings.TrimSpace(o.CampusName); name != "" {
		return name
	}
	return defaultTab
}

func itemsText(o *order.Order) string {
	if o.CartItemsText != "" {
		return o.CartItemsText
	}
	return order.FormatItemsText(o.Items())
}
