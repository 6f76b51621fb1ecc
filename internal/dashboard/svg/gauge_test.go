package svg

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArcEndGeometry(t *testing.T) {
	cases := []struct {
		value float64
		want  Point
		path  string
	}{
		{0, Point{20, 100}, "M 20 100 A 80 80 0 0 1 20 100"},
		{50, Point{100, 20}, "M 20 100 A 80 80 0 0 1 100 20"},
		{100, Point{180, 100}, "M 20 100 A 80 80 0 0 1 180 100"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ArcEnd(tc.value), "value %v", tc.value)
		assert.Equal(t, tc.path, ArcPath(tc.value), "value %v", tc.value)
	}
}

func TestClampAndBand(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
	assert.Equal(t, 100.0, Clamp(130))
	assert.Equal(t, ColorLow, Band(39.9))
	assert.Equal(t, ColorMedium, Band(40))
	assert.Equal(t, ColorMedium, Band(69.9))
	assert.Equal(t, ColorHigh, Band(70))
	assert.Equal(t, ArcPath(100), ArcPath(250))
}

func TestGaugeMarkup(t *testing.T) {
	out := string(Gauge(62.4, GaugeOptions{Title: "Risque <moyen>"}))
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `role="img"`)
	assert.Contains(t, out, "<title id=\"gauge-title\">Risque &lt;moyen&gt;</title>")
	assert.Contains(t, out, "62.4 sur 100")
	assert.Contains(t, out, ColorMedium)
	assert.Contains(t, out, ">62</text>")
}

func TestGaugeIDsAreDistinct(t *testing.T) {
	risk := string(Gauge(20, GaugeOptions{ID: "risque", Title: "Risque"}))
	maturity := string(Gauge(80, GaugeOptions{ID: "maturite", Title: "Maturité"}))

	assert.Contains(t, risk, `aria-labelledby="risque-title risque-desc"`)
	assert.Contains(t, risk, `<desc id="risque-desc">`)
	assert.Contains(t, maturity, `aria-labelledby="maturite-title maturite-desc"`)
	assert.Contains(t, maturity, `<title id="maturite-title">`)
	assert.NotContains(t, risk, "maturite")

	odd := string(Gauge(50, GaugeOptions{ID: `x" onload="y`}))
	assert.Contains(t, odd, `<title id="xonloady-title">`)
}
