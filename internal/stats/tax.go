package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// Burden is a year's tax load under one regime.
type Burden struct {
	Regime    model.TaxRegime
	TaxAmount int64
	Insurance int64
	// Rate is set for percentage regimes only.
	Rate        float64
	Total       int64
	Description string
}

// ComputeBurden applies terms to the year's accrued earnings.
func ComputeBurden(terms model.TaxTerms, earnings int64) Burden {
	switch t := terms.(type) {
	case model.PatentTerms:
		return Burden{
			Regime:      model.RegimePatent,
			TaxAmount:   t.PatentCost,
			Insurance:   t.InsuranceCost,
			Total:       t.PatentCost + t.InsuranceCost,
			Description: "Патент + Страховые",
		}
	case model.PercentTerms:
		tax := int64(math.Round(float64(earnings) * t.Rate / 100))
		desc := fmt.Sprintf("УСН %s%% + Страховые", formatRate(t.Rate))
		if t.Selected == model.RegimeSelfEmployed {
			desc = fmt.Sprintf("НПД %s%%", formatRate(t.Rate))
		}
		return Burden{
			Regime:      t.Selected,
			TaxAmount:   tax,
			Insurance:   t.InsuranceCost,
			Rate:        t.Rate,
			Total:       tax + t.InsuranceCost,
			Description: desc,
		}
	case model.NoTax:
		desc := "Без налогов"
		if t.Selected != model.RegimeNone {
			desc = "Не указано"
		}
		return Burden{Regime: t.Selected, Description: desc}
	default:
		return Burden{Description: "Не указано"}
	}
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

// YearSummary is the financial report of one calendar year.
type YearSummary struct {
	Year          int
	LessonsCount  int
	TotalEarnings int64
	PaidAmount    int64
	UnpaidAmount  int64
	Record        model.TaxRecord
	Burden        Burden
	// NetIncome is cash received minus the tax burden.
	NetIncome int64
}

// SummarizeYear computes the tax burden for year from the year's period
// statistics and the settings' regime and tax record.
func SummarizeYear(year int, ps *PeriodStats, settings *model.Settings) YearSummary {
	record := settings.TaxRecordFor(year)
	burden := ComputeBurden(record.Terms(settings.TaxRegime), ps.TotalEarnings)

	return YearSummary{
		Year:          year,
		LessonsCount:  ps.TotalLessons,
		TotalEarnings: ps.TotalEarnings,
		PaidAmount:    ps.PaidAmount,
		UnpaidAmount:  ps.UnpaidAmount,
		Record:        record,
		Burden:        burden,
		NetIncome:     ps.PaidAmount - burden.Total,
	}
}
