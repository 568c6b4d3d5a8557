// AngelaMos | 2026
// entity.go

package cart

import (
	"time"

	"github.com/carterperez-dev/agriconnect/internal/advisory"
)

const (
	MethodGPay           = "gpay"
	MethodCashOnDelivery = "cod"

	StatusPaymentPending = "payment_pending"
	StatusBooked         = "booked"
)

type Item struct {
	Market   advisory.MarketInfo `json:"market"`
	Crop     advisory.CropPrice  `json:"crop"`
	Quantity int                 `json:"quantity"`
}

// LineKey identifies a cart line by market id and crop name. Adding an
// item with an existing key merges into that line.
type LineKey struct {
	MarketID string
	CropName string
}

func (i Item) Key() LineKey {
	return LineKey{MarketID: i.Market.ID, CropName: i.Crop.Name}
}

func (i Item) Subtotal() float64 {
	return i.Crop.Price * float64(i.Quantity)
}

type Cart struct {
	Items []Item  `json:"items"`
	Total float64 `json:"total"`
}

func newCart(items []Item) *Cart {
	if items == nil {
		items = []Item{}
	}

	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}

	return &Cart{Items: items, Total: total}
}

type Order struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	PaymentURL string    `json:"payment_url,omitempty"`
	Items      []Item    `json:"items"`
	PlacedAt   time.Time `json:"placed_at"`
}
