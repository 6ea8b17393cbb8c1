package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Nested package collections persist as JSONB columns. Each named slice type
// round-trips through its JSON form via driver.Valuer / sql.Scanner.

type (
	PriceRanges   []PriceRange
	ItineraryDays []ItineraryDay
	Inclusions    []Inclusion
	Highlights    []Highlight
	Stays         []Stay
	StringList    []string
	DateList      []time.Time
)

func jsonbValue(v any) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(dst any, src any) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("jsonb: cannot scan %T", src)
	}
}

func (v PriceRanges) Value() (driver.Value, error)   { return jsonbValue([]PriceRange(v)) }
func (v *PriceRanges) Scan(src any) error            { return jsonbScan(v, src) }
func (v ItineraryDays) Value() (driver.Value, error) { return jsonbValue([]ItineraryDay(v)) }
func (v *ItineraryDays) Scan(src any) error          { return jsonbScan(v, src) }
func (v Inclusions) Value() (driver.Value, error)    { return jsonbValue([]Inclusion(v)) }
func (v *Inclusions) Scan(src any) error             { return jsonbScan(v, src) }
func (v Highlights) Value() (driver.Value, error)    { return jsonbValue([]Highlight(v)) }
func (v *Highlights) Scan(src any) error             { return jsonbScan(v, src) }
func (v Stays) Value() (driver.Value, error)         { return jsonbValue([]Stay(v)) }
func (v *Stays) Scan(src any) error                  { return jsonbScan(v, src) }
func (v StringList) Value() (driver.Value, error)    { return jsonbValue([]string(v)) }
func (v *StringList) Scan(src any) error             { return jsonbScan(v, src) }
func (v DateList) Value() (driver.Value, error)      { return jsonbValue([]time.Time(v)) }
func (v *DateList) Scan(src any) error               { return jsonbScan(v, src) }

func (v AvailableDates) Value() (driver.Value, error) {
	if v.Start == nil && v.End == nil {
		return nil, nil
	}
	return jsonbValue(v)
}

func (v *AvailableDates) Scan(src any) error { return jsonbScan(v, src) }
