// AngelaMos | 2026
// language.go

package advisory

const DefaultLanguage = "en"

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
	"kn": "Kannada",
	"ml": "Malayalam",
	"bn": "Bengali",
	"mr": "Marathi",
	"gu": "Gujarati",
	"pa": "Punjabi",
	"or": "Odia",
}

// LanguageName maps a language code to the name used in prompts. Unknown
// codes fall back to English.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return languageNames[DefaultLanguage]
}
