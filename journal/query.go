package journal

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/quantdesk/desk/desk"
)

// ListRecent returns experiences most-recent-first, optionally
// filtered by symbol. A non-positive limit returns an empty slice.
func (j *SQLite) ListRecent(symbol string, limit int) ([]Experience, error) {
	if limit <= 0 {
		return []Experience{}, nil
	}

	query := `
		SELECT id, created_at, owner, symbol, action, confidence, approved, rationale,
		       hard_blocks_json, outcome_label, pnl_pct
		FROM experiences`
	var params []any

	if symbol = strings.TrimSpace(symbol); symbol != "" {
		query += ` WHERE symbol = ?`
		params = append(params, symbol)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	params = append(params, limit)

	rows, err := j.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Experience{}
	for rows.Next() {
		var rec Experience
		var owner, action, confidence, rationale, blocksJSON sql.NullString
		var approved int
		var label sql.NullString
		var pnl sql.NullFloat64

		if err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&owner,
			&rec.Symbol,
			&action,
			&confidence,
			&approved,
			&rationale,
			&blocksJSON,
			&label,
			&pnl,
		); err != nil {
			return nil, err
		}

		rec.Owner = owner.String
		rec.Action = desk.Action(action.String)
		rec.Confidence = desk.Confidence(confidence.String)
		rec.Approved = approved != 0
		rec.Rationale = rationale.String
		rec.HardBlocks = decodeBlocks(blocksJSON.String)
		if label.Valid {
			rec.OutcomeLabel = OutcomeLabel(label.String)
		}
		if pnl.Valid {
			v := pnl.Float64
			rec.PnLPct = &v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentReflections returns reflections most-recent-first, joined
// against the owning experience for the symbol filter.
func (j *SQLite) RecentReflections(symbol string, limit int) ([]Reflection, error) {
	if limit <= 0 {
		return []Reflection{}, nil
	}

	query := `
		SELECT r.id, r.experience_id, r.created_at, e.symbol, r.outcome_label, r.pnl_pct,
		       r.reflection_note, r.decision_quality, r.risk_efficiency, r.timing_quality
		FROM reflections r
		JOIN experiences e ON e.id = r.experience_id`
	var params []any

	if symbol = strings.TrimSpace(symbol); symbol != "" {
		query += ` WHERE e.symbol = ?`
		params = append(params, symbol)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC LIMIT ?`
	params = append(params, limit)

	rows, err := j.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reflection{}
	for rows.Next() {
		var rec Reflection
		var label string
		var dq, re, tq sql.NullFloat64

		if err := rows.Scan(
			&rec.ID,
			&rec.ExperienceID,
			&rec.CreatedAt,
			&rec.Symbol,
			&label,
			&rec.PnLPct,
			&rec.Note,
			&dq,
			&re,
			&tq,
		); err != nil {
			return nil, err
		}

		rec.OutcomeLabel = OutcomeLabel(label)
		rec.DecisionQuality = floatPtr(dq)
		rec.RiskEfficiency = floatPtr(re)
		rec.TimingQuality = floatPtr(tq)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStrategyPrior returns the symbol's prior, or a zeroed default
// when no outcome has been recorded for the symbol yet.
func (j *SQLite) GetStrategyPrior(symbol string) (StrategyPrior, error) {
	prior := StrategyPrior{Symbol: symbol}

	err := j.db.QueryRow(`
		SELECT buy_call_bias, buy_put_bias, sample_count, updated_at
		FROM strategy_priors WHERE symbol = ?`, symbol).
		Scan(&prior.BuyCallBias, &prior.BuyPutBias, &prior.SampleCount, &prior.UpdatedAt)
	if err == sql.ErrNoRows {
		return StrategyPrior{Symbol: symbol}, nil
	}
	if err != nil {
		return StrategyPrior{}, err
	}
	return prior, nil
}

func decodeBlocks(raw string) []string {
	if raw == "" {
		return nil
	}
	var blocks []string
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil
	}
	return blocks
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
