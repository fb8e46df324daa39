package tlrun

import "strings"

// LanguageNames maps ISO 639-1 codes to English names, used in LLM prompts
// and in setup utility output.
var LanguageNames = map[string]string{
	"ar": "Arabic",
	"bg": "Bulgarian",
	"ca": "Catalan",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"et": "Estonian",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"nb": "Norwegian Bokmål",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// detectionRemap corrects known detector confusions.
// Afrikaans is reported for short Dutch texts often enough that Dutch is the
// better guess.
var detectionRemap = map[string]string{
	"af": "nl",
}

// ModelPair is an offline language package to install by default.
type ModelPair struct {
	From string
	To   string
	Name string
}

// DefaultModelPairs lists the packages installed by "tlrun-models install-defaults".
// All pairs translate into English.
var DefaultModelPairs = []ModelPair{
	{"nl", "en", "Dutch"},
	{"es", "en", "Spanish"},
	{"fr", "en", "French"},
	{"de", "en", "German"},
	{"it", "en", "Italian"},
	{"pt", "en", "Portuguese"},
	{"ru", "en", "Russian"},
	{"zh", "en", "Chinese"},
	{"ja", "en", "Japanese"},
	{"ko", "en", "Korean"},
	{"ar", "en", "Arabic"},
	{"pl", "en", "Polish"},
	{"tr", "en", "Turkish"},
}

// BaseLang extracts the lowercase base language code ("pt" from "pt_BR" or "pt-BR").
func BaseLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, "_-"); i >= 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}

// SameLanguage reports whether two codes share a base language.
// Empty codes and AutoLang never match.
func SameLanguage(a, b string) bool {
	a, b = BaseLang(a), BaseLang(b)
	if a == "" || b == "" || a == AutoLang || b == AutoLang {
		return false
	}
	return a == b
}

// RemapDetected applies the detection remap table to a detected code.
func RemapDetected(lang string) string {
	base := BaseLang(lang)
	if mapped, ok := detectionRemap[base]; ok {
		return mapped
	}
	return base
}

// GetLanguageName returns the English name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(lang string) string {
	if name, ok := LanguageNames[BaseLang(lang)]; ok {
		return name
	}
	return lang
}

var rtlLanguages = map[string]bool{
	"ar": true,
	"fa": true,
	"he": true,
	"ur": true,
}

// IsRTL reports whether a language is written right-to-left.
func IsRTL(lang string) bool {
	return rtlLanguages[BaseLang(lang)]
}
