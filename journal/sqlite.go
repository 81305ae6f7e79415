package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantdesk/desk/desk"
)

// SQLite is the Ledger implementation backed by a SQLite database.
// The database is the durability boundary: the composite outcome
// update runs inside one transaction, never via in-memory locking.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func (j *SQLite) RecordDecision(owner string, payload json.RawMessage, d desk.Decision) (int64, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	blocksJSON, err := json.Marshal(d.Risk.HardBlocks)
	if err != nil {
		return 0, fmt.Errorf("marshal hard blocks: %w", err)
	}
	decisionJSON, err := json.Marshal(d)
	if err != nil {
		return 0, fmt.Errorf("marshal decision: %w", err)
	}

	res, err := j.db.Exec(`
		INSERT INTO experiences
		(created_at, owner, symbol, action, confidence, approved, rationale, hard_blocks_json, payload_json, decision_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.now().UTC(), owner, d.Symbol, string(d.Action), string(d.Confidence),
		boolToInt(d.Approved), d.Rationale, string(blocksJSON), string(payload), string(decisionJSON),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (j *SQLite) UpdateOutcome(experienceID int64, label OutcomeLabel, pnlPct float64) (bool, error) {
	if !label.Valid() {
		return false, outcomeLabelError(label)
	}

	// The guard on outcome_label enforces set-at-most-once.
	res, err := j.db.Exec(`
		UPDATE experiences SET outcome_label = ?, pnl_pct = ?
		WHERE id = ? AND outcome_label IS NULL`,
		string(label), pnlPct, experienceID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (j *SQLite) UpdateOutcomeWithReflection(experienceID int64, r OutcomeReflection) (StrategyPrior, error) {
	if !r.OutcomeLabel.Valid() {
		return StrategyPrior{}, outcomeLabelError(r.OutcomeLabel)
	}

	tx, err := j.db.Begin()
	if err != nil {
		return StrategyPrior{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var symbol, action string
	var existing sql.NullString
	err = tx.QueryRow(`SELECT symbol, action, outcome_label FROM experiences WHERE id = ?`, experienceID).
		Scan(&symbol, &action, &existing)
	if err == sql.ErrNoRows {
		return StrategyPrior{}, &NotFoundError{ExperienceID: experienceID}
	}
	if err != nil {
		return StrategyPrior{}, err
	}
	if existing.Valid {
		return StrategyPrior{}, fmt.Errorf("experience %d: %w", experienceID, ErrOutcomeAlreadySet)
	}

	now := j.now().UTC()

	if _, err := tx.Exec(`
		UPDATE experiences SET outcome_label = ?, pnl_pct = ? WHERE id = ?`,
		string(r.OutcomeLabel), r.PnLPct, experienceID,
	); err != nil {
		return StrategyPrior{}, fmt.Errorf("update outcome: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO reflections
		(experience_id, created_at, outcome_label, pnl_pct, reflection_note, decision_quality, risk_efficiency, timing_quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		experienceID, now, string(r.OutcomeLabel), r.PnLPct, r.Note,
		nullableFloat(r.DecisionQuality), nullableFloat(r.RiskEfficiency), nullableFloat(r.TimingQuality),
	); err != nil {
		return StrategyPrior{}, fmt.Errorf("insert reflection: %w", err)
	}

	// Read-modify-write of the prior stays inside this transaction so
	// concurrent updates to the same symbol serialize on the store.
	prior := StrategyPrior{Symbol: symbol}
	err = tx.QueryRow(`
		SELECT buy_call_bias, buy_put_bias, sample_count
		FROM strategy_priors WHERE symbol = ?`, symbol).
		Scan(&prior.BuyCallBias, &prior.BuyPutBias, &prior.SampleCount)
	if err != nil && err != sql.ErrNoRows {
		return StrategyPrior{}, fmt.Errorf("load prior: %w", err)
	}

	step := LearningRate * r.OutcomeLabel.Reward()
	switch desk.Action(action) {
	case desk.BuyCall:
		prior.BuyCallBias = clampBias(prior.BuyCallBias + step)
	case desk.BuyPut:
		prior.BuyPutBias = clampBias(prior.BuyPutBias + step)
	}
	prior.SampleCount++
	prior.UpdatedAt = now

	if _, err := tx.Exec(`
		INSERT INTO strategy_priors (symbol, buy_call_bias, buy_put_bias, sample_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			buy_call_bias = excluded.buy_call_bias,
			buy_put_bias = excluded.buy_put_bias,
			sample_count = excluded.sample_count,
			updated_at = excluded.updated_at`,
		prior.Symbol, prior.BuyCallBias, prior.BuyPutBias, prior.SampleCount, prior.UpdatedAt,
	); err != nil {
		return StrategyPrior{}, fmt.Errorf("upsert prior: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return StrategyPrior{}, err
	}
	return prior, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func outcomeLabelError(label OutcomeLabel) error {
	return &desk.ValidationError{
		Field:  "outcome_label",
		Reason: fmt.Sprintf("must be one of {WIN, LOSS, BREAKEVEN}, got %q", string(label)),
	}
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
