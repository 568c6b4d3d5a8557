// AngelaMos | 2026
// extract.go

package advisory

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrMalformedJSON = errors.New("model response is not valid JSON")
	ErrWrongShape    = errors.New("model response has an unexpected shape")
)

var fenceRe = regexp.MustCompile("^```(?:json)?\\s*|\\s*```$")

// stripFences removes a leading ```json marker and a trailing ``` marker,
// which models add despite being told not to.
func stripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(text), ""))
}

func payload(text string) ([]byte, error) {
	cleaned := stripFences(text)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	data := []byte(cleaned)
	if !json.Valid(data) {
		return nil, ErrMalformedJSON
	}

	return data, nil
}

// decodeArray parses a JSON array of T out of a model response.
func decodeArray[T any](text string) ([]T, error) {
	data, err := payload(text)
	if err != nil {
		return nil, err
	}

	if data[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrWrongShape)
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongShape, err)
	}

	return out, nil
}

type rawCropPrice struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	PriceUnit string  `json:"price_unit"`
}

type rawMarket struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	Phone         *string        `json:"phone"`
	Latitude      *float64       `json:"latitude"`
	Longitude     *float64       `json:"longitude"`
	GoogleMapsURL string         `json:"googleMapsUrl"`
	Crops         []rawCropPrice `json:"crops"`
}

func parseMarkets(text string) ([]MarketInfo, error) {
	raw, err := decodeArray[rawMarket](text)
	if err != nil {
		return nil, err
	}

	markets := make([]MarketInfo, 0, len(raw))
	for _, m := range raw {
		market := MarketInfo{
			ID:            uuid.New().String(),
			Name:          m.Name,
			Type:          m.Type,
			Address:       m.Address,
			City:          m.City,
			State:         m.State,
			Latitude:      m.Latitude,
			Longitude:     m.Longitude,
			GoogleMapsURL: m.GoogleMapsURL,
			Crops:         make([]CropPrice, 0, len(m.Crops)),
		}
		if m.Phone != nil {
			market.Phone = *m.Phone
		}
		for _, c := range m.Crops {
			market.Crops = append(market.Crops, normalizePrice(c))
		}
		markets = append(markets, market)
	}

	return markets, nil
}

func normalizePrice(c rawCropPrice) CropPrice {
	price := c.Price
	switch strings.ToLower(strings.TrimSpace(c.PriceUnit)) {
	case "quintal", "qtl", "q":
		price /= 100
	}
	return CropPrice{Name: c.Name, Price: price, Unit: PriceUnitKg}
}

func parseRecommendations(text string) ([]CropRecommendation, error) {
	return decodeArray[CropRecommendation](text)
}

func parseConditions(text string) (FarmConditions, error) {
	data, err := payload(text)
	if err != nil {
		return FarmConditions{}, err
	}

	if data[0] != '{' {
		return FarmConditions{}, fmt.Errorf("%w: expected a JSON object", ErrWrongShape)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return FarmConditions{}, fmt.Errorf("%w: %v", ErrWrongShape, err)
	}

	state, okState := fields["state"].(string)
	soil, okSoil := fields["soilType"].(string)
	rainfall, okRain := fields["rainfall"].(float64)
	temperature, okTemp := fields["temperature"].(float64)
	if !okState || !okSoil || !okRain || !okTemp {
		return FarmConditions{}, fmt.Errorf(
			"%w: state and soilType must be strings, rainfall and temperature numbers",
			ErrWrongShape,
		)
	}

	city, _ := fields["city"].(string)
	district, _ := fields["district"].(string)

	return FarmConditions{
		City:        city,
		District:    district,
		State:       state,
		SoilType:    soil,
		Rainfall:    rainfall,
		Temperature: temperature,
	}, nil
}
