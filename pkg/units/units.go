// Package units converts cooking quantities between volume or weight units.
package units

import (
	"math"
	"sort"
	"strings"
)

const (
	CategoryVolume = "volume"
	CategoryWeight = "weight"
)

// factors to milliliters
var volume = map[string]float64{
	"ml":           1,
	"milliliter":   1,
	"milliliters":  1,
	"l":            1000,
	"liter":        1000,
	"liters":       1000,
	"tsp":          4.92892,
	"teaspoon":     4.92892,
	"teaspoons":    4.92892,
	"tbsp":         14.7868,
	"tablespoon":   14.7868,
	"tablespoons":  14.7868,
	"cup":          236.588,
	"cups":         236.588,
	"fl oz":        29.5735,
	"fluid ounce":  29.5735,
	"fluid ounces": 29.5735,
	"pint":         473.176,
	"pints":        473.176,
	"quart":        946.353,
	"quarts":       946.353,
	"gallon":       3785.41,
	"gallons":      3785.41,
}

// factors to grams
var weight = map[string]float64{
	"g":         1,
	"gram":      1,
	"grams":     1,
	"kg":        1000,
	"kilogram":  1000,
	"kilograms": 1000,
	"oz":        28.3495,
	"ounce":     28.3495,
	"ounces":    28.3495,
	"lb":        453.592,
	"pound":     453.592,
	"pounds":    453.592,
}

func normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// Convert returns quantity expressed in to, rounded to three decimals. ok is
// false when either unit is unknown or the units belong to different
// categories.
func Convert(quantity float64, from, to string) (float64, bool) {
	from, to = normalize(from), normalize(to)

	var table map[string]float64
	switch {
	case volume[from] != 0 && volume[to] != 0:
		table = volume
	case weight[from] != 0 && weight[to] != 0:
		table = weight
	default:
		return 0, false
	}

	base := quantity * table[from]
	return math.Round(base/table[to]*1000) / 1000, true
}

// Category reports which table a unit belongs to, or "" when unknown.
func Category(unit string) string {
	u := normalize(unit)
	if _, ok := volume[u]; ok {
		return CategoryVolume
	}
	if _, ok := weight[u]; ok {
		return CategoryWeight
	}
	return ""
}

// Units lists the known unit names per category, sorted.
func Units() (volumeUnits, weightUnits []string) {
	return keys(volume), keys(weight)
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
