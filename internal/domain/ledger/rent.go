package ledger

import (
	"fmt"
	"time"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// MonthName returns the capitalized Spanish name of a month ("Enero")
func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return month.String()
	}
	return cases.Title(language.Spanish).String(spanishMonths[month-1])
}

// RentConcept returns the concept of the recurring rent charge of a period, e.g. "Renta Marzo 2025"
func RentConcept(year int, month time.Month) string {
	return fmt.Sprintf("Renta %s %d", MonthName(month), year)
}

// maxConceptLen is the longest concept a charge accepts
const maxConceptLen = 200

// PenaltyConcept returns the concept of a billed penalty charge, cut to fit a charge concept
func PenaltyConcept(base string) string {
	concept := []rune("Penalidad por atraso: " + base)
	if len(concept) > maxConceptLen {
		concept = concept[:maxConceptLen]
	}
	return string(concept)
}

// RentSchedule returns the charge and due dates of the rent of a period.
// The charge falls on the payment day, clamped to the last day of short
// months, and is due graceDays later.
func RentSchedule(year int, month time.Month, paymentDay, graceDays int) (chargeDate, dueDate time.Time) {
	day := paymentDay
	if last := shared.LastDayOfMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	chargeDate = shared.Date(year, month, day)
	return chargeDate, chargeDate.AddDate(0, 0, graceDays)
}
