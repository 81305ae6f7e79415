// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS experiences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME NOT NULL,
	owner TEXT,
	symbol TEXT,
	action TEXT,
	confidence TEXT,
	approved INTEGER NOT NULL,
	rationale TEXT,
	hard_blocks_json TEXT,
	payload_json TEXT NOT NULL,
	decision_json TEXT NOT NULL,
	outcome_label TEXT,
	pnl_pct REAL
);

CREATE INDEX IF NOT EXISTS idx_experiences_symbol_created ON experiences(symbol, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_experiences_owner_created ON experiences(owner, created_at DESC);

CREATE TABLE IF NOT EXISTS reflections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	experience_id INTEGER NOT NULL REFERENCES experiences(id),
	created_at DATETIME NOT NULL,
	outcome_label TEXT NOT NULL,
	pnl_pct REAL NOT NULL,
	reflection_note TEXT NOT NULL,
	decision_quality REAL,
	risk_efficiency REAL,
	timing_quality REAL
);

CREATE INDEX IF NOT EXISTS idx_reflections_experience ON reflections(experience_id);

CREATE TABLE IF NOT EXISTS strategy_priors (
	symbol TEXT PRIMARY KEY,
	buy_call_bias REAL NOT NULL DEFAULT 0,
	buy_put_bias REAL NOT NULL DEFAULT 0,
	sample_count INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL
);
`
