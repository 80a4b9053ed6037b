package webserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

//go:embed translations/*.json
var translationFiles embed.FS

// Translation holds the UI strings for one language.
type Translation map[string]string

// supportedLanguages lists the bundled translation files.
var supportedLanguages = []string{"en", "uk"}

var translations map[string]Translation

// LoadTranslations loads the bundled translation files.
func LoadTranslations() error {
	translations = make(map[string]Translation)

	for _, lang := range supportedLanguages {
		data, err := translationFiles.ReadFile("translations/" + lang + ".json")
		if err != nil {
			return fmt.Errorf("reading %s translations: %w", lang, err)
		}

		var trans Translation
		if err := json.Unmarshal(data, &trans); err != nil {
			return fmt.Errorf("parsing %s translations: %w", lang, err)
		}

		translations[lang] = trans
	}

	return nil
}

// GetLanguageFromRequest determines the language from the URL parameter
// or the Accept-Language header, defaulting to English.
func GetLanguageFromRequest(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); isValidLanguage(lang) {
		return lang
	}

	// Format: "en-US,en;q=0.9,uk;q=0.8"
	for _, lang := range strings.Split(r.Header.Get("Accept-Language"), ",") {
		lang = strings.TrimSpace(strings.Split(lang, ";")[0])
		lang = strings.Split(lang, "-")[0]

		if isValidLanguage(lang) {
			return lang
		}
	}

	return "en"
}

func isValidLanguage(lang string) bool {
	_, exists := translations[lang]
	return exists
}

// GetTranslations returns all UI strings for a language, falling back to
// English for unknown languages.
func GetTranslations(lang string) Translation {
	if trans, exists := translations[lang]; exists {
		return trans
	}

	if trans, exists := translations["en"]; exists {
		return trans
	}

	return make(Translation)
}
