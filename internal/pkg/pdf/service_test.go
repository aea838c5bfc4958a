package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

func receiptOrder() *order.Order {
	return &order.Order{
		Reference:      "ORD-20250320-ABCDEF12",
		CustomerName:   "Ali <script>",
		Phone:          "03001234567",
		Address:        "Hostel 4",
		CampusName:     "Lahore",
		UniversityName: "FAST",
		Persons:        3,
		ItemTotal:      400,
		DeliveryCharge: 450,
		GrandTotal:     850,
		CartItemsArray: []order.Item{{Name: "Burger", Quantity: 2, UnitPrice: 200, Restaurant: "Pizza Hut"}},
		PayeeName:      "Maratib Ali",
		PayeeBank:      "SadaPay",
		PayeeAccount:   "03330374616",
		CreatedAt:      time.Date(2025, 3, 20, 18, 5, 0, 0, time.UTC),
	}
}

func TestNewReceiptData(t *testing.T) {
	data := NewReceiptData("Campus Eats", receiptOrder(), time.UTC)

	assert.Equal(t, "March 20, 2025 6:05 PM", data.PlacedAt)
	assert.Equal(t, "pending", data.Status)
	assert.Equal(t, "Rs 850.00", data.GrandTotal)
	require.Len(t, data.Lines, 1)
	assert.Equal(t, ReceiptLine{Name: "Burger", Restaurant: "Pizza Hut", Quantity: 2, UnitPrice: "200.00", Total: "400.00"}, data.Lines[0])
}

func TestNewReceiptDataFromText(t *testing.T) {
	o := receiptOrder()
	o.CartItemsArray = nil
	o.CartItemsText = "3x Tea (Dhaba)"

	data := NewReceiptData("Campus Eats", o, time.UTC)
	require.Len(t, data.Lines, 1)
	assert.Equal(t, 3, data.Lines[0].Quantity)
	assert.Empty(t, data.Lines[0].UnitPrice)
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(NewReceiptData("Campus Eats", receiptOrder(), time.UTC))
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "ORD-20250320-ABCDEF12")
	assert.Contains(t, out, "Rs 450.00")
	assert.Contains(t, out, "Maratib Ali")
	assert.Contains(t, out, "Ali &lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}
