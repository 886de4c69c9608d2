package localization

import (
	"strings"

	locale "github.com/jeandeaual/go-locale"
)

type LabelSet struct {
	AppTitle                 string
	BufferPlaceholder        string
	StatusReady              string
	StatusNoTarget           string
	StatusTargetGone         string
	StatusClipboardFormat    string
	StatusUnsupportedFormat  string
	StatusPasted             string
	StatusNothingToPaste     string
	StatusDispatchFailFormat string
	CapsTooltip              string
	ShiftTooltip             string
	CloseTooltip             string
}

type LanguageMetadata struct {
	Code       string
	NativeName string
}

type languageDefinition struct {
	metadata LanguageMetadata
	labels   LabelSet
}

var (
	defaultCode = "en"
	languages   = []languageDefinition{
		{
			metadata: LanguageMetadata{Code: "en", NativeName: "English"},
			labels: LabelSet{
				AppTitle:                 "glasskey",
				BufferPlaceholder:        "Type here…",
				StatusReady:              "Ready.",
				StatusNoTarget:           "No target window. Click a window, then reopen the keyboard.",
				StatusTargetGone:         "Target window has closed.",
				StatusClipboardFormat:    "Clipboard unavailable: %s",
				StatusUnsupportedFormat:  "Not supported on this system: %s",
				StatusPasted:             "Pasted.",
				StatusNothingToPaste:     "Nothing to paste.",
				StatusDispatchFailFormat: "Key not delivered: %s",
				CapsTooltip:              "Caps Lock",
				ShiftTooltip:             "Shift (next key)",
				CloseTooltip:             "Close keyboard",
			},
		},
		{
			metadata: LanguageMetadata{Code: "de", NativeName: "Deutsch"},
			labels: LabelSet{
				AppTitle:                 "glasskey",
				BufferPlaceholder:        "Hier tippen…",
				StatusReady:              "Bereit.",
				StatusNoTarget:           "Kein Zielfenster. Fenster anklicken und Tastatur neu öffnen.",
				StatusTargetGone:         "Zielfenster wurde geschlossen.",
				StatusClipboardFormat:    "Zwischenablage nicht verfügbar: %s",
				StatusUnsupportedFormat:  "Auf diesem System nicht unterstützt: %s",
				StatusPasted:             "Eingefügt.",
				StatusNothingToPaste:     "Nichts einzufügen.",
				StatusDispatchFailFormat: "Taste nicht zugestellt: %s",
				CapsTooltip:              "Feststelltaste",
				ShiftTooltip:             "Umschalt (nächste Taste)",
				CloseTooltip:             "Tastatur schließen",
			},
		},
	}
	languageMap = func() map[string]languageDefinition {
		m := make(map[string]languageDefinition, len(languages))
		for _, lang := range languages {
			m[lang.metadata.Code] = lang
		}
		return m
	}()
)

func SupportedLanguages() []LanguageMetadata {
	result := make([]LanguageMetadata, 0, len(languages))
	for _, lang := range languages {
		result = append(result, lang.metadata)
	}
	return result
}

func Labels(code string) LabelSet {
	if lang, ok := languageMap[code]; ok {
		return lang.labels
	}
	return languageMap[defaultCode].labels
}

func DefaultCode() string {
	return defaultCode
}

func DetectSystemLanguage() string {
	locales, err := locale.GetLocales()
	if err == nil {
		for _, loc := range locales {
			if code := normalizeCode(loc); code != "" {
				if _, ok := languageMap[code]; ok {
					return code
				}
			}
		}
	}
	return defaultCode
}

func NormalizeCode(code string) string {
	return normalizeCode(code)
}

func normalizeCode(code string) string {
	code = strings.TrimSpace(strings.ToLower(code))
	if code == "" {
		return ""
	}
	if idx := strings.Index(code, "-"); idx > 0 {
		code = code[:idx]
	}
	if len(code) > 2 {
		code = code[:2]
	}
	return code
}

// ResolveCode maps a configured language to a supported one, falling back to
// the default.
func ResolveCode(code string) string {
	if normalized := normalizeCode(code); normalized != "" {
		if _, ok := languageMap[normalized]; ok {
			return normalized
		}
	}
	return defaultCode
}

func IsSupported(code string) bool {
	_, ok := languageMap[normalizeCode(code)]
	return ok
}
