package whitelabel

import (
	"net/http"
	"strconv"
	"strings"
)

// Background style ids exposed to the client
const (
	StyleTransparent = "TRANSPARENT"
	StylePureWhite   = "PURE_WHITE"
	StyleStudioGrey  = "STUDIO_GREY"
	StyleDarkMode    = "DARK_MODE"
)

// backgroundColors - style id → hex color; TRANSPARENT sends no color at all
var backgroundColors = map[string]string{
	StylePureWhite:  "FFFFFF",
	StyleStudioGrey: "E5E5E5",
	StyleDarkMode:   "1A1A1A",
}

// Options - white-label request fields with their defaults applied
type Options struct {
	BackgroundStyle string
	ShadowIntensity int
	Format          string // "" keeps the provider output, "webp" transcodes
}

// ParseOptions - form fields with lenient fallbacks: unknown styles and
// out-of-range intensities become the defaults rather than a 400
func ParseOptions(r *http.Request) Options {
	opts := Options{
		BackgroundStyle: StylePureWhite,
		ShadowIntensity: 50,
	}

	if style := strings.TrimSpace(r.FormValue("backgroundStyle")); style != "" {
		switch style {
		case StyleTransparent, StylePureWhite, StyleStudioGrey, StyleDarkMode:
			opts.BackgroundStyle = style
		}
	}

	if raw := strings.TrimSpace(r.FormValue("shadowIntensity")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 100 {
			opts.ShadowIntensity = n
		}
	}

	if format := strings.TrimSpace(r.FormValue("format")); format == "webp" {
		opts.Format = "webp"
	}

	return opts
}

// ShadowMode - intensity 50 and above switches to the hard AI shadow
func (o Options) ShadowMode() string {
	if o.ShadowIntensity >= 50 {
		return "ai.hard"
	}
	return "ai.soft"
}

// BackgroundColor - hex color for the style, ok=false for transparent output
func (o Options) BackgroundColor() (string, bool) {
	color, ok := backgroundColors[o.BackgroundStyle]
	return color, ok
}
