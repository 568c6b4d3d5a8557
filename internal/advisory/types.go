// AngelaMos | 2026
// types.go

package advisory

const PriceUnitKg = "kg"

type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// CropPrice is always expressed in INR per kilogram.
type CropPrice struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Unit  string  `json:"unit"`
}

type MarketInfo struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Type          string      `json:"type,omitempty"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	State         string      `json:"state"`
	Phone         string      `json:"phone"`
	Latitude      *float64    `json:"latitude,omitempty"`
	Longitude     *float64    `json:"longitude,omitempty"`
	GoogleMapsURL string      `json:"google_maps_url,omitempty"`
	Crops         []CropPrice `json:"crops"`
}

type FarmConditions struct {
	City        string  `json:"city,omitempty"`
	District    string  `json:"district,omitempty"`
	State       string  `json:"state"`
	SoilType    string  `json:"soil_type"`
	Rainfall    float64 `json:"rainfall"`
	Temperature float64 `json:"temperature"`
}

type CropRecommendation struct {
	Name               string `json:"name"`
	Reason             string `json:"reason"`
	CultivationDetails string `json:"cultivation_details"`
}
