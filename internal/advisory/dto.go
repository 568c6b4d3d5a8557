// AngelaMos | 2026
// dto.go

package advisory

type GuideRequest struct {
	Topic    string `json:"topic"    validate:"required,min=1,max=500"`
	Language string `json:"language" validate:"omitempty,max=8"`
}

// TextResponse carries model prose. Fallback is set when the model call
// failed and Content holds the stock apology instead.
type TextResponse struct {
	Content  string `json:"content"`
	Fallback bool   `json:"fallback"`
}

type MarketsRequest struct {
	Query    string    `json:"query"    validate:"required,min=1,max=300"`
	Language string    `json:"language" validate:"omitempty,max=8"`
	Location *Location `json:"location,omitempty"`
}

type MarketsResponse struct {
	Markets []MarketInfo `json:"markets"`
}

type ConditionsRequest struct {
	Lat      *float64 `json:"lat"      validate:"required,gte=-90,lte=90"`
	Lon      *float64 `json:"lon"      validate:"required,gte=-180,lte=180"`
	Language string   `json:"language" validate:"omitempty,max=8"`
}

type RecommendationsRequest struct {
	State       string   `json:"state"       validate:"required,max=100"`
	SoilType    string   `json:"soil_type"   validate:"required,max=100"`
	Rainfall    *float64 `json:"rainfall"    validate:"required,gte=0"`
	Temperature *float64 `json:"temperature" validate:"required,gte=-50,lte=60"`
	Language    string   `json:"language"    validate:"omitempty,max=8"`
}

type RecommendationsResponse struct {
	Recommendations []CropRecommendation `json:"recommendations"`
}

type AssessResponse struct {
	Conditions      FarmConditions       `json:"conditions"`
	Recommendations []CropRecommendation `json:"recommendations"`
}

func languageOrDefault(code string) string {
	if code == "" {
		return DefaultLanguage
	}
	return code
}
