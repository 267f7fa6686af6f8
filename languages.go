package doclai

import "strings"

// OfferedLanguages are the target languages offered to users by default.
var OfferedLanguages = []string{"Ukrainian", "English", "French", "Spanish", "Russian"}

// OtherLanguage is the selector entry that asks for a free-form language label.
const OtherLanguage = "Other language"

// LanguageNames maps locale codes to the names used in directives.
var LanguageNames = map[string]string{
	"uk_UA": "Ukrainian",
	"en_US": "English",
	"en_GB": "English (United Kingdom)",
	"fr_FR": "French",
	"es_ES": "Spanish",
	"es_MX": "Spanish (Mexico)",
	"ru_RU": "Russian",
	"de_DE": "German",
	"it_IT": "Italian",
	"pl_PL": "Polish",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"ja_JP": "Japanese",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
	"ko_KR": "Korean",
	"tr_TR": "Turkish",
	"ar_SA": "Arabic",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"uk": "uk_UA",
	"en": "en_US",
	"fr": "fr_FR",
	"es": "es_ES",
	"ru": "ru_RU",
	"de": "de_DE",
	"it": "it_IT",
	"pl": "pl_PL",
	"pt": "pt_BR",
	"ja": "ja_JP",
	"zh": "zh_CN",
	"ko": "ko_KR",
	"tr": "tr_TR",
	"ar": "ar_SA",
}

// GetLanguageName returns the human-readable name for a language code.
// Anything that is not a known code is returned unchanged, so free-form
// labels such as "Ukrainian" or "Klingon" pass through.
func GetLanguageName(langCode string) string {
	code := NormalizeLocale(strings.TrimSpace(langCode))
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	if locale, ok := ShortCodeToLocale[strings.ToLower(code)]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	return strings.TrimSpace(langCode)
}

// ResolveLanguage turns a selector choice into the target language label.
// Choosing OtherLanguage uses custom instead.
func ResolveLanguage(choice, custom string) string {
	if choice == OtherLanguage {
		return GetLanguageName(custom)
	}
	return GetLanguageName(choice)
}

// NormalizeLocale converts a language code to the standard format (e.g., "uk-UA" → "uk_UA").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}
