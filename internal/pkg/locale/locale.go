// Package locale converts free-form user language input ("EN", "en-us",
// "nl_NL") into the exact representation each carrier API expects.
// Normalization never fails: unrecognized input falls back to a value
// every carrier accepts.
package locale

import "strings"

// defaultRegions maps a language to the region used when a carrier
// wants a full xx_YY locale and the user only supplied a language.
var defaultRegions = map[string]string{
	"en": "US",
	"nl": "NL",
	"de": "DE",
	"fr": "FR",
	"it": "IT",
	"es": "ES",
	"pl": "PL",
	"cs": "CZ",
	"pt": "PT",
}

// supportedLocales are the full locales the DPD PLC endpoint accepts.
// The endpoint is case sensitive (lowercase_UPPERCASE) and falls back
// to English for anything else, so unsupported combinations are
// re-resolved through the language table.
var supportedLocales = map[string]bool{
	"en_US": true,
	"de_DE": true,
	"fr_FR": true,
	"es_ES": true,
	"it_IT": true,
	"nl_NL": true,
	"pl_PL": true,
	"cs_CZ": true,
}

// Normalize converts language into the form expected by carrier and
// reports whether normalization changed the input (used for an
// advisory message to the user).
//
// Conventions:
//
//	dpd, ecoscooting  locale xx_YY (EN → en_US, unrecognized → en_US)
//	dhl               two-letter lower-case (EN → en)
//	correos, ctt, gls two-letter upper-case (en-us → EN)
func Normalize(language, carrier string) (string, bool) {
	raw := strings.TrimSpace(language)

	var out string
	switch strings.ToLower(carrier) {
	case "dpd", "ecoscooting":
		out = toLocale(raw)
	case "dhl":
		out = lang2(raw, "en")
	default:
		out = strings.ToUpper(lang2(raw, "en"))
	}
	return out, out != raw
}

// toLocale resolves input to a supported xx_YY locale, falling back to
// en_US for anything unrecognized.
func toLocale(raw string) string {
	if raw == "" {
		return "en_US"
	}
	c := strings.ReplaceAll(raw, "-", "_")
	if len(c) == 5 && c[2] == '_' {
		lang := strings.ToLower(c[:2])
		region := strings.ToUpper(c[3:])
		if loc := lang + "_" + region; supportedLocales[loc] {
			return loc
		}
		if region, ok := defaultRegions[lang]; ok {
			return lang + "_" + region
		}
		return "en_US"
	}
	lang := strings.ToLower(c)
	if region, ok := defaultRegions[lang]; ok {
		return lang + "_" + region
	}
	return "en_US"
}

// lang2 extracts the bare two-letter language code, stripping any
// region ("en-us" → "en"). Empty input yields fallback.
func lang2(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	c := strings.ReplaceAll(strings.ToLower(raw), "-", "_")
	if i := strings.IndexByte(c, '_'); i >= 0 {
		c = c[:i]
	}
	if len(c) > 2 {
		c = c[:2]
	}
	if c == "" {
		return fallback
	}
	return c
}
