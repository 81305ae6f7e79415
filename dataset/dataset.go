// Package dataset loads market snapshots and backtest rows from JSON
// or CSV files. Loading is lenient: missing or malformed numeric
// fields coerce to zero rather than failing the whole file.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quantdesk/desk/backtest"
	"github.com/quantdesk/desk/desk"
	"github.com/quantdesk/desk/signal"
)

// returnKeys are the accepted column names for a realized return, in
// precedence order.
var returnKeys = []string{
	"market_return_pct",
	"next_return_pct",
	"return_pct",
	"price_change_pct",
}

// LoadMarketInputs reads a .json or .csv dataset of market snapshots.
// A JSON object loads as a single-row dataset.
func LoadMarketInputs(path string) ([]signal.MarketInput, error) {
	rows, err := loadRows(path)
	if err != nil {
		return nil, err
	}

	out := make([]signal.MarketInput, 0, len(rows))
	for _, row := range rows {
		out = append(out, signal.MarketInput{
			Timestamp:           stringOr(row, "timestamp", ""),
			Underlying:          stringOr(row, "underlying", "NIFTY50"),
			LTP:                 floatOr(row, "ltp"),
			PrevClose:           floatOr(row, "prev_close"),
			Session:             stringOr(row, "session", "OPEN"),
			DailyRealizedPnLPct: floatOr(row, "daily_realized_pnl_pct"),
			BidAskSpreadBps:     floatOr(row, "bid_ask_spread_bps"),
		})
	}
	return out, nil
}

// LoadBacktestRows reads a .json or .csv dataset of action/return
// pairs. The realized return may appear under any of the recognized
// column names.
func LoadBacktestRows(path string) ([]backtest.Row, error) {
	rows, err := loadRows(path)
	if err != nil {
		return nil, err
	}

	out := make([]backtest.Row, 0, len(rows))
	for _, row := range rows {
		rec := backtest.Row{
			Action: desk.Action(strings.ToUpper(stringOr(row, "action", string(desk.NoTrade)))),
		}
		for _, key := range returnKeys {
			if _, ok := row[key]; ok {
				rec.MarketReturnPct = floatOr(row, key)
				break
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func loadRows(path string) ([]map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported input extension %q, use .json or .csv", filepath.Ext(path))
	}
}

func loadJSON(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []map[string]any
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single map[string]any
	if err := json.Unmarshal(data, &single); err == nil {
		return []map[string]any{single}, nil
	}
	return nil, fmt.Errorf("%s: JSON input must be an object or list of objects", path)
}

func loadCSV(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[strings.TrimSpace(col)] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringOr(row map[string]any, key, fallback string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return fallback
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return fallback
	}
	return s
}

// floatOr coerces the value to float64, tolerating string-typed
// numbers from CSV. Anything unparseable becomes 0.
func floatOr(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
