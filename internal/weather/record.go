// Package weather reads tabular weather input and turns it into one
// environment sample per simulation step.
package weather

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMalformedRecord = errors.New("malformed weather record")
	ErrNoRecords       = errors.New("no weather records")
	ErrInvalidRecord   = errors.New("invalid weather record")
)

const numColumns = 7

// Record is one day of weather.
type Record struct {
	Week     int
	Day      int
	Low      float64 // °F
	High     float64 // °F
	LowTime  string
	HighTime string
	SunAngle float64 // degrees above the horizon
}

func (r *Record) Validate() error {
	for _, v := range []float64{r.Low, r.High, r.SunAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidRecord)
		}
	}
	if r.Low > r.High {
		return fmt.Errorf("%w: low %.1f above high %.1f", ErrInvalidRecord, r.Low, r.High)
	}
	if r.SunAngle < 0 || r.SunAngle > 90 {
		return fmt.Errorf("%w: sun angle %.1f out of range", ErrInvalidRecord, r.SunAngle)
	}
	return nil
}

func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weather file: %w", err)
	}
	defer f.Close()
	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Load parses week, day, low, high, low_time, high_time, sun_angle rows. A
// header row is skipped when its first field is not a number.
func Load(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var records []Record
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if _, err := strconv.Atoi(strings.TrimSpace(row[0])); err != nil {
				continue
			}
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

func parseRow(row []string) (Record, error) {
	if len(row) != numColumns {
		return Record{}, fmt.Errorf("%w: want %d columns, got %d", ErrMalformedRecord, numColumns, len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	var rec Record
	var err error
	if rec.Week, err = strconv.Atoi(row[0]); err != nil {
		return Record{}, columnErr("week", row[0])
	}
	if rec.Day, err = strconv.Atoi(row[1]); err != nil {
		return Record{}, columnErr("day", row[1])
	}
	if rec.Low, err = strconv.ParseFloat(row[2], 64); err != nil {
		return Record{}, columnErr("low", row[2])
	}
	if rec.High, err = strconv.ParseFloat(row[3], 64); err != nil {
		return Record{}, columnErr("high", row[3])
	}
	rec.LowTime = row[4]
	rec.HighTime = row[5]
	if rec.SunAngle, err = strconv.ParseFloat(row[6], 64); err != nil {
		return Record{}, columnErr("sun_angle", row[6])
	}
	return rec, nil
}

func columnErr(column, value string) error {
	return fmt.Errorf("%w: column %s: %q", ErrMalformedRecord, column, value)
}
