// AngelaMos | 2026
// prompts.go

package advisory

import (
	"fmt"
	"strings"
)

func guidePrompt(topic, language string) string {
	return fmt.Sprintf(
		`Write a concise and practical best practice guide for %q aimed at small to medium-sized farms. `+
			`Include actionable steps and key considerations. Format the response using markdown. `+
			`IMPORTANT: Provide the entire response in the %s language.`,
		topic, LanguageName(language),
	)
}

func imagePrompt(question, language string) string {
	return fmt.Sprintf(
		`Analyze the provided crop image. The user asks: %q. `+
			`Provide a helpful analysis based on what you can see in the image. `+
			`If you cannot determine an answer from the image, say so clearly. `+
			`Format the response using markdown. `+
			`IMPORTANT: Provide the entire response in the %s language.`,
		question, LanguageName(language),
	)
}

func marketsPrompt(query, language string, loc *Location) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		`Find a comprehensive list of agricultural markets (mandis) or wholesale shops in India related to the query: %q. `+
			`Please provide at least 5 results, and more if they are relevant. Aim for 5 to 10 results if possible. `+
			`The names and addresses should be in a way that is locally understandable in %s.`,
		query, LanguageName(language),
	)

	if loc != nil {
		fmt.Fprintf(&b,
			` Prioritize markets near the location with latitude %g and longitude %g.`,
			loc.Lat, loc.Lon,
		)
	}

	b.WriteString(` For each market found, provide its name, full address (including city and state), ` +
		`a phone number (this is crucial), its latitude and longitude, a direct Google Maps URL, ` +
		`and the current price for the relevant crop(s) in Indian Rupees (INR) per kg. ` +
		`If a price is only known per quintal, give that figure and set "price_unit": "quintal" on the crop.`)

	b.WriteString(" \n\nIMPORTANT: Respond with ONLY a valid JSON array of objects. " +
		"Do not include any text, explanation, or markdown formatting before or after the JSON array. " +
		"Each object in the array should represent a market and have the following structure: " +
		`{ "name": string, "type": "Mandi" | "Wholesale Shop", "address": string, "city": string, "state": string, ` +
		`"phone": string | null, "latitude": number, "longitude": number, "googleMapsUrl": string, ` +
		`"crops": [{ "name": string, "price": number, "price_unit": "kg" | "quintal" }] }`)

	return b.String()
}

func conditionsPrompt(lat, lon float64, language string) string {
	return fmt.Sprintf(`For the location with latitude %g and longitude %g in India, determine the following agricultural conditions:
- The city/town/village
- The district
- The state
- The dominant soil type in the area (choose from: Alluvial, Black, Red and Yellow, Laterite, Arid, Saline, Peaty, Forest, Loamy, Clay, Sandy)
- The average annual rainfall in millimeters (mm)
- The average annual temperature in Celsius (°C)

The names for city, district, and state should be in the %s language.

IMPORTANT: Respond with ONLY a valid JSON object. Do not include any text, explanation, or markdown formatting before or after the JSON. The object must have this exact structure: { "city": string, "district": string, "state": string, "soilType": string, "rainfall": number, "temperature": number }`,
		lat, lon, LanguageName(language),
	)
}

func recommendationPrompt(
	state, soilType string,
	rainfall, temperature float64,
	language string,
) string {
	return fmt.Sprintf(`As an agricultural expert for India, recommend the most suitable and profitable crops based on the following conditions:
- State: %s
- Soil Type: %s
- Average Annual Rainfall: %g mm
- Average Temperature: %g°C

For each recommended crop, provide a brief reason why it is suitable and some key cultivation details.

IMPORTANT: Provide the entire response in the %s language. The response must be ONLY a valid JSON array of objects. Do not include any text, explanation, or markdown formatting before or after the JSON array. Each object in the array should represent a crop and have the following structure:
{ "name": string, "reason": string, "cultivation_details": string }`,
		state, soilType, rainfall, temperature, LanguageName(language),
	)
}
