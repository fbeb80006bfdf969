package models

import (
	dErrors "coursehub/pkg/domain-errors"
)

const (
	minYear = 1900
	maxYear = 2100
)

// Period is the month-granular date range of a credential. A current period
// has no end; a finished one ends no earlier than it starts.
type Period struct {
	StartYear  int  `json:"start_year"`
	StartMonth int  `json:"start_month"`
	EndYear    *int `json:"end_year,omitempty"`
	EndMonth   *int `json:"end_month,omitempty"`
	Current    bool `json:"is_current"`
}

func (p Period) Validate() error {
	if err := checkYearMonth("start", p.StartYear, p.StartMonth); err != nil {
		return err
	}
	if p.Current {
		if p.EndYear != nil || p.EndMonth != nil {
			return periodErr("end_year", "end date must be empty while the credential is current")
		}
		return nil
	}
	if p.EndYear == nil || p.EndMonth == nil {
		return periodErr("end_year", "end date is required unless the credential is current")
	}
	if err := checkYearMonth("end", *p.EndYear, *p.EndMonth); err != nil {
		return err
	}
	if *p.EndYear*12+*p.EndMonth < p.StartYear*12+p.StartMonth {
		return periodErr("end_year", "end date must not be before start date")
	}
	return nil
}

func checkYearMonth(prefix string, year, month int) error {
	if year < minYear || year > maxYear {
		return periodErr(prefix+"_year", prefix+"_year must be between 1900 and 2100")
	}
	if month < 1 || month > 12 {
		return periodErr(prefix+"_month", prefix+"_month must be between 1 and 12")
	}
	return nil
}

func periodErr(field, msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg).
		WithReason(ReasonInvalidPeriod).
		WithDetail("field", field)
}
