package main

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

const placeholderPrefix = "data:image/svg+xml;base64,"

type colorPair struct {
	inner, outer string
}

var placeholderPalette = []colorPair{
	{"#e10600", "#5c0200"},
	{"#00d2be", "#004d45"},
	{"#ff8700", "#5c3100"},
	{"#3671c6", "#13294a"},
	{"#229971", "#0b3326"},
	{"#ff87bc", "#5c2f43"},
	{"#b6babd", "#42484d"},
	{"#6692ff", "#1d2a4d"},
	{"#52e252", "#164d16"},
	{"#9b59b6", "#36203f"},
}

// initials derives up to two uppercase letters from a driver id such as
// "max_verstappen" ("MV") or "hamilton" ("H").
func initials(driverID string) string {
	var b strings.Builder
	n := 0
	for _, part := range strings.Split(driverID, "_") {
		r, _ := utf8.DecodeRuneInString(part)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		n++
		if n == 2 {
			break
		}
	}
	if n == 0 {
		return "?"
	}
	return b.String()
}

func paletteFor(driverID string) colorPair {
	sum := 0
	for _, r := range driverID {
		sum += int(r)
	}
	return placeholderPalette[sum%len(placeholderPalette)]
}

// placeholderImage renders a circular gradient badge with the driver's
// initials as a self-contained SVG data URI. Same id, same bytes.
func placeholderImage(driverID string) string {
	colors := paletteFor(driverID)
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200">`+
			`<defs><radialGradient id="g" cx="50%%" cy="40%%" r="65%%">`+
			`<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/>`+
			`</radialGradient></defs>`+
			`<circle cx="100" cy="100" r="100" fill="url(#g)"/>`+
			`<text x="100" y="100" dy=".35em" text-anchor="middle" font-family="Helvetica, Arial, sans-serif" font-size="72" font-weight="700" fill="#ffffff">%s</text>`+
			`</svg>`,
		colors.inner, colors.outer, html.EscapeString(initials(driverID)),
	)
	return placeholderPrefix + base64.StdEncoding.EncodeToString([]byte(svg))
}

func isPlaceholder(imageURL string) bool {
	return strings.HasPrefix(imageURL, placeholderPrefix)
}
