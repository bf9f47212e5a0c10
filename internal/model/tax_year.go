package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/hntax/internal/common"
)

// Supported tax years. A tax year Y runs from 6 April Y to 5 April Y+1.
const (
	FirstTaxYear TaxYear = 2020
	LastTaxYear  TaxYear = 2023
)

// TaxYear selects the reporting window for a job.
type TaxYear int

// TaxYears returns every supported tax year in ascending order.
func TaxYears() []TaxYear {
	years := make([]TaxYear, 0, LastTaxYear-FirstTaxYear+1)
	for y := FirstTaxYear; y <= LastTaxYear; y++ {
		years = append(years, y)
	}
	return years
}

// ParseTaxYear parses and validates a tax year as sent on the wire.
func ParseTaxYear(s string) (TaxYear, error) {
	value, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a year", common.ErrInvalidTaxYear, s)
	}

	year := TaxYear(value)
	if err := year.Validate(); err != nil {
		return 0, err
	}
	return year, nil
}

// Validate checks the year is one the backend can compute.
func (y TaxYear) Validate() error {
	if y < FirstTaxYear || y > LastTaxYear {
		return fmt.Errorf("%w: %d is not between %d and %d", common.ErrInvalidTaxYear, int(y), int(FirstTaxYear), int(LastTaxYear))
	}
	return nil
}

// String returns the wire form used in the tax_year query parameter.
func (y TaxYear) String() string {
	return strconv.Itoa(int(y))
}

// Label renders the year the way tax returns name it, e.g. "2020/21".
func (y TaxYear) Label() string {
	return fmt.Sprintf("%d/%02d", int(y), (int(y)+1)%100)
}

// Period returns the half-open window [6 April Y, 6 April Y+1) in UK time.
func (y TaxYear) Period() (time.Time, time.Time) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	start := time.Date(int(y), time.April, 6, 0, 0, 0, 0, loc)
	end := time.Date(int(y)+1, time.April, 6, 0, 0, 0, 0, loc)
	return start, end
}
