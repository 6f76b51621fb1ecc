// Package svg draws small inline charts for the dashboard.
package svg

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"strconv"
	"strings"
)

// Gauge geometry, in viewBox units.
const (
	centerX = 100.0
	centerY = 100.0
	radius  = 80.0
	stroke  = 16.0
)

// Band colours by value.
const (
	ColorLow    = "#2e7d32"
	ColorMedium = "#f9a825"
	ColorHigh   = "#c62828"
	ColorTrack  = "#e0e0e0"
)

// GaugeOptions labels the gauge for assistive technologies. ID prefixes the
// title and desc element ids and must be unique on the page; it defaults to
// "gauge".
type GaugeOptions struct {
	ID          string
	Title       string
	Description string
}

// Point is a coordinate in the gauge viewBox.
type Point struct {
	X, Y float64
}

// Clamp bounds value to [0, 100]. NaN reads as 0.
func Clamp(value float64) float64 {
	switch {
	case math.IsNaN(value), value < 0:
		return 0
	case value > 100:
		return 100
	}
	return value
}

// Band returns the colour for value: low under 40, medium under 70, high above.
func Band(value float64) string {
	switch v := Clamp(value); {
	case v < 40:
		return ColorLow
	case v < 70:
		return ColorMedium
	default:
		return ColorHigh
	}
}

// ArcEnd returns the end point of the value arc. The arc starts on the left
// at 180 degrees and sweeps over the top to 0 degrees at 100.
func ArcEnd(value float64) Point {
	theta := math.Pi * (1 - Clamp(value)/100)
	return Point{
		X: round(centerX + radius*math.Cos(theta)),
		Y: round(centerY - radius*math.Sin(theta)),
	}
}

// ArcPath returns the SVG path data of the value arc.
func ArcPath(value float64) string {
	end := ArcEnd(value)
	return fmt.Sprintf("M %s %s A %s %s 0 0 1 %s %s",
		num(centerX-radius), num(centerY), num(radius), num(radius), num(end.X), num(end.Y))
}

// Gauge renders a semicircular gauge for value in [0, 100].
func Gauge(value float64, opts GaugeOptions) template.HTML {
	v := Clamp(value)
	title := opts.Title
	if title == "" {
		title = "Jauge"
	}
	desc := opts.Description
	if desc == "" {
		desc = fmt.Sprintf("%s sur 100", num(round(v)))
	}
	id := elementID(opts.ID)
	track := fmt.Sprintf("M %s %s A %s %s 0 0 1 %s %s",
		num(centerX-radius), num(centerY), num(radius), num(radius), num(centerX+radius), num(centerY))
	out := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 120" role="img" aria-labelledby="%[1]s-title %[1]s-desc">`+
		`<title id="%[1]s-title">%[2]s</title><desc id="%[1]s-desc">%[3]s</desc>`+
		`<path d="%[4]s" fill="none" stroke="%[5]s" stroke-width="%[6]s" stroke-linecap="round"/>`+
		`<path d="%[7]s" fill="none" stroke="%[8]s" stroke-width="%[6]s" stroke-linecap="round"/>`+
		`<text x="100" y="96" text-anchor="middle" font-size="24">%[9]s</text></svg>`,
		id, html.EscapeString(title), html.EscapeString(desc),
		track, ColorTrack, num(stroke),
		ArcPath(v), Band(v),
		num(math.Round(v)))
	return template.HTML(out)
}

// elementID keeps letters, digits, '-' and '_' so the id is safe inside
// attributes.
func elementID(raw string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, raw)
	if id == "" {
		return "gauge"
	}
	return id
}

func round(x float64) float64 {
	return math.Round(x*100) / 100
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
