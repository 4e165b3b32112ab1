package services

import "strings"

var ordinalUnits = []string{
	"Zeroth", "First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth", "Ninth",
	"Tenth", "Eleventh", "Twelfth", "Thirteenth", "Fourteenth", "Fifteenth", "Sixteenth",
	"Seventeenth", "Eighteenth", "Nineteenth",
}

var cardinalUnits = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}

var ordinalTens = []string{"", "", "Twentieth", "Thirtieth", "Fortieth", "Fiftieth", "Sixtieth", "Seventieth", "Eightieth", "Ninetieth"}

// OrdinalName spells n as an English ordinal: 1 -> "First", 21 ->
// "Twenty-First", 100 -> "One Hundredth". Values outside 0..999 fall back to
// "<n>th"-style digits.
func OrdinalName(n int) string {
	switch {
	case n < 0 || n > 999:
		return digitsOrdinal(n)
	case n < 20:
		return ordinalUnits[n]
	case n < 100:
		if n%10 == 0 {
			return ordinalTens[n/10]
		}
		return tens[n/10] + "-" + ordinalUnits[n%10]
	}
	head := cardinalUnits[n/100] + " Hundred"
	if n%100 == 0 {
		return head + "th"
	}
	return head + " " + OrdinalName(n%100)
}

func digitsOrdinal(n int) string {
	s := stringify(n)
	suffix := "th"
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if abs%100 < 11 || abs%100 > 13 {
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strings.TrimSpace(s + suffix)
}
