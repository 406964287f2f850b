// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"strconv"
	"strings"
)

// knownUnits maps the unit spellings found in recipes to the names
// Spoonacular accepts. Anything else is dropped and the amount is taken as
// a count.
var knownUnits = map[string]string{
	"g": "g", "gram": "g", "grams": "g",
	"kg": "kg", "kilogram": "kg", "kilograms": "kg",
	"mg": "mg",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml",
	"l": "l", "liter": "l", "liters": "l",
	"cup": "cup", "cups": "cup",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"pinch": "pinch", "clove": "clove", "cloves": "clove",
	"slice": "slice", "slices": "slice",
	"piece": "piece", "pieces": "piece",
}

// ParseQuantity splits a free-text quantity such as "2 cups", "1 1/2 tbsp"
// or "250g" into an amount and a normalized unit. A missing or unreadable
// amount defaults to 1.
func ParseQuantity(q string) (amount float64, unit string) {
	fields := strings.Fields(strings.ToLower(q))
	if len(fields) == 0 {
		return 1, ""
	}

	// "250g" -> "250", "g"
	if n, rest := splitNumberPrefix(fields[0]); n != "" && rest != "" {
		fields = append([]string{n, rest}, fields[1:]...)
	}

	i := 0
	for ; i < len(fields); i++ {
		v, ok := parseNumber(fields[i])
		if !ok {
			break
		}
		amount += v
	}
	if amount <= 0 {
		amount = 1
	}
	if i < len(fields) {
		unit = knownUnits[strings.TrimSuffix(fields[i], ".")]
	}
	return amount, unit
}

// parseNumber reads "2", "0.5" or "1/2".
func parseNumber(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func splitNumberPrefix(s string) (number, rest string) {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || s[end] == '/') {
		end++
	}
	if end == 0 {
		return "", s
	}
	return s[:end], s[end:]
}
