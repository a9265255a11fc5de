package rates

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrRateNotAvailable signals that no rate file exists for the requested day.
var ErrRateNotAvailable = errors.New("rate table not available")

// ErrCountryNotFound signals that the loaded table has no entry for a country.
var ErrCountryNotFound = errors.New("country not in rate table")

// Band is one tier of a tiered country's rate schedule. Bands are contiguous
// and ascending; amounts above the last band's Max saturate to the last band.
type Band struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Rate float64 `json:"rate"`
}

// Table holds one calendar day's exchange rates. Tiered countries map to an
// ordered band list, flat countries to a single destination-per-source rate.
type Table struct {
	Date   string
	Tiered map[string][]Band
	Flat   map[string]float64
}

// LookupResult is a priced rate lookup for a bank or cash transfer.
type LookupResult struct {
	Rate           float64
	ReceivedAmount float64
}

// DefaultTable returns the hardcoded last-known-good table used when no
// daily file can be loaded. Operating on it is degraded mode, not an error.
func DefaultTable() *Table {
	return &Table{
		Date: "default",
		Tiered: map[string][]Band{
			"dominican": {
				{Min: 0, Max: 2000, Rate: 2.11944},
				{Min: 2001, Max: 10000, Rate: 2.11991},
				{Min: 10001, Max: 20000, Rate: 2.12061},
				{Min: 20001, Max: 9999999, Rate: 2.12085},
			},
		},
		Flat: map[string]float64{
			"peru":     35.13,
			"ecuador":  128.22,
			"colombia": 31.038,
			"chile":    0.136,
		},
	}
}

// Load reads <dir>/<date>.json where date is an ISO day (2006-01-02).
//
// File shape: {"date": "...", "dominican": {"range1": {"min":0,"max":2000,
// "rate":2.11944}, ...}, "peru": 35.13, ...}. Object values are tiered
// schedules, numeric values are flat rates.
func Load(dir, date string) (*Table, error) {
	path := filepath.Join(dir, date+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRateNotAvailable, date)
		}
		return nil, fmt.Errorf("read rate file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rate file %s: %w", path, err)
	}

	t := &Table{
		Date:   date,
		Tiered: make(map[string][]Band),
		Flat:   make(map[string]float64),
	}

	for key, val := range raw {
		if key == "date" {
			var d string
			if err := json.Unmarshal(val, &d); err == nil && d != "" {
				t.Date = d
			}
			continue
		}

		var flat float64
		if err := json.Unmarshal(val, &flat); err == nil {
			t.Flat[key] = flat
			continue
		}

		var ranges map[string]Band
		if err := json.Unmarshal(val, &ranges); err != nil {
			return nil, fmt.Errorf("parse rates for %q: %w", key, err)
		}
		bands := make([]Band, 0, len(ranges))
		for _, b := range ranges {
			bands = append(bands, b)
		}
		sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })
		t.Tiered[key] = bands
	}

	return t, nil
}

// Lookup resolves the rate for an amount going to a country. Tiered
// countries use the first band containing the amount, saturating to the
// last band above its Max.
func (t *Table) Lookup(amount float64, country string) (LookupResult, error) {
	country = strings.ToLower(country)

	if bands, ok := t.Tiered[country]; ok && len(bands) > 0 {
		rate := bands[len(bands)-1].Rate
		for _, b := range bands {
			if amount >= b.Min && amount <= b.Max {
				rate = b.Rate
				break
			}
		}
		return LookupResult{Rate: rate, ReceivedAmount: round2(amount * rate)}, nil
	}

	if rate, ok := t.Flat[country]; ok {
		return LookupResult{Rate: rate, ReceivedAmount: round2(amount * rate)}, nil
	}

	return LookupResult{}, fmt.Errorf("%w: %s", ErrCountryNotFound, country)
}

// Countries lists every country the table can price, sorted.
func (t *Table) Countries() []string {
	names := make([]string, 0, len(t.Tiered)+len(t.Flat))
	for c := range t.Tiered {
		names = append(names, c)
	}
	for c := range t.Flat {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
