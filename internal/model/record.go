package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day form the backend emits.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String renders the date as the backend sent it.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(buf []byte) error {
	var raw string
	if err := json.Unmarshal(buf, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Record is one day of mining earnings.
type Record struct {
	Date     Date            `json:"date"`
	Earnings decimal.Decimal `json:"earnings"`
	Tokens   decimal.Decimal `json:"tokens"`
	Price    decimal.Decimal `json:"price"`
}

// DataSet is the ordered result of a job. Order is the backend's.
type DataSet []Record

// PollResult is the backend's answer to a status check.
type PollResult struct {
	Data  DataSet
	Ready bool
}

// pollEnvelope mirrors the /data response body. Data stays raw so that
// missing and falsy values all read as "not ready yet".
type pollEnvelope struct {
	Data json.RawMessage `json:"data"`
}

var falsyData = [][]byte{
	[]byte("null"),
	[]byte("false"),
	[]byte("0"),
	[]byte(`""`),
}

func isFalsy(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	for _, f := range falsyData {
		if bytes.Equal(raw, f) {
			return true
		}
	}
	return false
}

// DecodePollResult parses a /data response body.
func DecodePollResult(body []byte) (PollResult, error) {
	var env pollEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return PollResult{}, fmt.Errorf("failed to decode poll response: %w", err)
	}

	raw := bytes.TrimSpace(env.Data)
	if isFalsy(raw) {
		return PollResult{}, nil
	}

	var data DataSet
	if err := json.Unmarshal(raw, &data); err != nil {
		return PollResult{}, fmt.Errorf("failed to decode dataset: %w", err)
	}
	// An empty list carries nothing to report; keep waiting for the job.
	if len(data) == 0 {
		return PollResult{}, nil
	}

	return PollResult{Ready: true, Data: data}, nil
}
