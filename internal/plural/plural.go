// Package plural picks Russian word forms for counts and formats the
// amounts shown in reports.
package plural

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Forms is a word in its three count forms: one (1, 21), few (2-4, 22-24)
// and many (0, 5-20, 25).
type Forms [3]string

// Ready-made forms for the words reports use most.
var (
	Lessons  = Forms{"занятие", "занятия", "занятий"}
	Hours    = Forms{"час", "часа", "часов"}
	Students = Forms{"ученик", "ученика", "учеников"}
	Times    = Forms{"раз", "раза", "раз"}
	Weeks    = Forms{"неделю", "недели", "недель"} // accusative: "на 4 недели"
)

// Pluralize returns the form of forms that agrees with n.
func Pluralize(n int, forms Forms) string {
	if n < 0 {
		n = -n
	}
	n10 := n % 10
	n100 := n % 100

	switch {
	case n100 > 10 && n100 < 20:
		return forms[2]
	case n10 == 1:
		return forms[0]
	case n10 >= 2 && n10 <= 4:
		return forms[1]
	default:
		return forms[2]
	}
}

// WithNumber returns "n word", e.g. "5 занятий".
func WithNumber(n int, forms Forms) string {
	return fmt.Sprintf("%d %s", n, Pluralize(n, forms))
}

var printer = message.NewPrinter(language.Russian)

// FormatMoney formats whole currency units with Russian digit grouping,
// e.g. "1 500 ₽".
func FormatMoney(amount int64) string {
	return printer.Sprintf("%d", amount) + " ₽"
}

// FormatHours formats fractional hours with at most one decimal,
// e.g. "1,5 ч" or "2 ч".
func FormatHours(hours float64) string {
	s := strconv.FormatFloat(hours, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return strings.Replace(s, ".", ",", 1) + " ч"
}

// FormatDuration formats a lesson length in minutes.
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}
