// Package palette ranks dominant color candidates and formats them as hex codes.
package palette

import (
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultLimit is the number of colors returned to clients.
const DefaultLimit = 5

// Candidate is one dominant color reported by the vision provider.
// Channels are in [0,255]; a channel the provider omitted is zero.
type Candidate struct {
	Red   float64
	Green float64
	Blue  float64
	Score float64
}

// RGBToHex formats the channels as an uppercase #RRGGBB string.
// Channels outside [0,255] are clamped.
func RGBToHex(r, g, b int) string {
	c := colorful.Color{
		R: float64(clamp(r)) / 255.0,
		G: float64(clamp(g)) / 255.0,
		B: float64(clamp(b)) / 255.0,
	}
	return strings.ToUpper(c.Hex())
}

// Rank orders candidates by descending score and returns the hex codes of at
// most limit of them. Candidates with equal scores keep their input order.
// The input slice is not modified.
func Rank(candidates []Candidate, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	colors := make([]string, 0, len(sorted))
	for _, c := range sorted {
		colors = append(colors, RGBToHex(round(c.Red), round(c.Green), round(c.Blue)))
	}
	return colors
}

// round clamps v to [0,255] and rounds half up, so 2.5 becomes 3.
func round(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(0, math.Min(255, v))
	return int(math.Floor(v + 0.5))
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}
