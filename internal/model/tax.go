package model

import (
	"slices"
	"time"
)

// TaxRegime selects how the yearly tax burden is computed.
type TaxRegime string

const (
	RegimePatent       TaxRegime = "patent"
	RegimeUSN          TaxRegime = "usn"
	RegimeSelfEmployed TaxRegime = "self-employed"
	RegimeNone         TaxRegime = "none"
)

// Default percentage rates when a tax record leaves the rate unset.
const (
	DefaultUSNRate          = 6.0
	DefaultSelfEmployedRate = 4.0
)

// Values a freshly added tax record starts with.
const (
	NewRecordPatentCost    = 30000
	NewRecordInsuranceCost = 49500
	NewRecordTaxRate       = 6.0
)

// Label returns the regime's display name.
func (r TaxRegime) Label() string {
	switch r {
	case RegimePatent, "":
		return "ПСН (Патент)"
	case RegimeUSN:
		return "УСН"
	case RegimeSelfEmployed:
		return "Самозанятый (НПД)"
	case RegimeNone:
		return "Без налогов"
	default:
		return "Не указано"
	}
}

// TaxRecord holds the manually entered tax inputs for one calendar year.
// It is stored flat; which fields matter depends on the regime, see Terms.
type TaxRecord struct {
	Year          int     `json:"year"`
	PatentCost    int64   `json:"patentCost"`
	InsuranceCost int64   `json:"insuranceCost"`
	TaxRate       float64 `json:"taxRate"`
}

// TaxTerms is the regime-specific view of a TaxRecord. The concrete types
// are NoTax, PatentTerms and PercentTerms.
type TaxTerms interface {
	Regime() TaxRegime
	isTaxTerms()
}

// NoTax carries no burden. Unrecognized regimes also map here.
type NoTax struct {
	Selected TaxRegime
}

// PatentTerms is a flat, income-independent patent plus insurance.
type PatentTerms struct {
	PatentCost    int64
	InsuranceCost int64
}

// PercentTerms is a percentage of earnings plus insurance. It covers the
// simplified regime and self-employment.
type PercentTerms struct {
	Selected      TaxRegime
	Rate          float64
	InsuranceCost int64
}

func (t NoTax) Regime() TaxRegime        { return t.Selected }
func (t PatentTerms) Regime() TaxRegime  { return RegimePatent }
func (t PercentTerms) Regime() TaxRegime { return t.Selected }

func (NoTax) isTaxTerms()        {}
func (PatentTerms) isTaxTerms()  {}
func (PercentTerms) isTaxTerms() {}

// Terms projects the record onto regime. An empty regime is treated as
// patent, the historical default.
func (r TaxRecord) Terms(regime TaxRegime) TaxTerms {
	switch regime {
	case RegimePatent, "":
		return PatentTerms{PatentCost: r.PatentCost, InsuranceCost: r.InsuranceCost}
	case RegimeUSN:
		return PercentTerms{Selected: regime, Rate: rateOr(r.TaxRate, DefaultUSNRate), InsuranceCost: r.InsuranceCost}
	case RegimeSelfEmployed:
		return PercentTerms{Selected: regime, Rate: rateOr(r.TaxRate, DefaultSelfEmployedRate), InsuranceCost: r.InsuranceCost}
	default:
		return NoTax{Selected: regime}
	}
}

func rateOr(rate, fallback float64) float64 {
	if rate == 0 {
		return fallback
	}
	return rate
}

// NewTaxRecord returns a record with the default inputs for the current
// year, or for the nearest earlier year that has no record yet.
func (s *Settings) NewTaxRecord(now time.Time) TaxRecord {
	year := now.Year()
	for s.hasTaxYear(year) {
		year--
	}
	return TaxRecord{
		Year:          year,
		PatentCost:    NewRecordPatentCost,
		InsuranceCost: NewRecordInsuranceCost,
		TaxRate:       NewRecordTaxRate,
	}
}

// PutTaxRecord returns a patch inserting rec or replacing the record of
// the same year.
func (s *Settings) PutTaxRecord(rec TaxRecord) SettingsPatch {
	records := slices.Clone(s.TaxRecords)
	if i := slices.IndexFunc(records, func(r TaxRecord) bool { return r.Year == rec.Year }); i >= 0 {
		records[i] = rec
	} else {
		records = append(records, rec)
	}
	return SettingsPatch{TaxRecords: &records}
}

// RemoveTaxRecord returns a patch dropping the record for year.
func (s *Settings) RemoveTaxRecord(year int) SettingsPatch {
	records := slices.DeleteFunc(slices.Clone(s.TaxRecords), func(r TaxRecord) bool {
		return r.Year == year
	})
	return SettingsPatch{TaxRecords: &records}
}

// SortedTaxRecords returns the records newest year first.
func (s *Settings) SortedTaxRecords() []TaxRecord {
	records := slices.Clone(s.TaxRecords)
	slices.SortFunc(records, func(a, b TaxRecord) int { return b.Year - a.Year })
	return records
}

func (s *Settings) hasTaxYear(year int) bool {
	return slices.ContainsFunc(s.TaxRecords, func(r TaxRecord) bool { return r.Year == year })
}
