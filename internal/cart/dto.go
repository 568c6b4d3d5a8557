// AngelaMos | 2026
// dto.go

package cart

import (
	"github.com/carterperez-dev/agriconnect/internal/advisory"
)

type AddItemRequest struct {
	Market   advisory.MarketInfo `json:"market"   validate:"required"`
	Crop     advisory.CropPrice  `json:"crop"     validate:"required"`
	Quantity int                 `json:"quantity" validate:"gt=0"`
}

type RemoveItemRequest struct {
	MarketID string `json:"market_id" validate:"required"`
	CropName string `json:"crop_name" validate:"required"`
}

type CheckoutRequest struct {
	Method string `json:"method" validate:"required,oneof=gpay cod"`
}
