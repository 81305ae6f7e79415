package desk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"analysts": []map[string]any{
			analystPayload("technical", "BULLISH", "HIGH"),
			analystPayload("fundamental", "BULLISH", "MEDIUM"),
			analystPayload("sentiment", "NEUTRAL", "LOW"),
		},
		"trader_proposal": map[string]any{
			"action":          "BUY_CALL",
			"symbol":          "NIFTY50",
			"quantity":        50,
			"confidence":      "HIGH",
			"rationale":       "Momentum breakout above resistance.",
			"risk_budget_pct": 1.5,
		},
		"risk_review": map[string]any{
			"approved":         true,
			"reason":           "Within limits.",
			"hard_blocks":      []string{},
			"max_position_pct": 10.0,
		},
	}
}

func analystPayload(role, stance, confidence string) map[string]any {
	return map[string]any{
		"role":       role,
		"stance":     stance,
		"confidence": confidence,
		"rationale":  "Signals align.",
		"evidence":   []string{"price above 20 DMA"},
	}
}

func marshalPayload(t *testing.T, payload map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return data
}

func TestParseRequestValid(t *testing.T) {
	t.Parallel()

	req, err := ParseRequest(marshalPayload(t, validPayload()))
	require.NoError(t, err)

	assert.Len(t, req.Analysts, 3)
	assert.Equal(t, BuyCall, req.TraderProposal.Action)
	assert.Equal(t, "NIFTY50", req.TraderProposal.Symbol)
	assert.True(t, req.RiskReview.Approved)
	assert.Nil(t, req.RiskContext)
}

func TestParseRequestNormalizesCase(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["analysts"] = []map[string]any{
		analystPayload("TECHNICAL", "bullish", "high"),
		analystPayload("Fundamental", "Bullish", "Medium"),
		analystPayload("sentiment", "neutral", "low"),
	}
	payload["trader_proposal"].(map[string]any)["action"] = "buy_call"

	req, err := ParseRequest(marshalPayload(t, payload))
	require.NoError(t, err)

	assert.Equal(t, Technical, req.Analysts[0].Role)
	assert.Equal(t, Bullish, req.Analysts[0].Stance)
	assert.Equal(t, High, req.Analysts[0].Confidence)
	assert.Equal(t, BuyCall, req.TraderProposal.Action)
}

func TestParseRequestMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseRequest([]byte(`{not json`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payload", vErr.Field)
}

func TestParseRequestWrongFieldType(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["trader_proposal"].(map[string]any)["quantity"] = "fifty"

	_, err := ParseRequest(marshalPayload(t, payload))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Field, "quantity")
}

func TestParseRequestMissingSections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		strip string
		field string
	}{
		{"no trader proposal", "trader_proposal", "payload.trader_proposal"},
		{"no risk review", "risk_review", "payload.risk_review"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload := validPayload()
			delete(payload, tc.strip)

			_, err := ParseRequest(marshalPayload(t, payload))

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestParseRequestTooFewAnalysts(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["analysts"] = []map[string]any{
		analystPayload("technical", "BULLISH", "HIGH"),
	}

	_, err := ParseRequest(marshalPayload(t, payload))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payload.analysts", vErr.Field)
}

func TestParseRequestDuplicateRole(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["analysts"] = []map[string]any{
		analystPayload("technical", "BULLISH", "HIGH"),
		analystPayload("technical", "BEARISH", "LOW"),
		analystPayload("sentiment", "NEUTRAL", "LOW"),
	}

	_, err := ParseRequest(marshalPayload(t, payload))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "more than one technical")
}

func TestParseRequestMissingRole(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["analysts"] = []map[string]any{
		analystPayload("technical", "BULLISH", "HIGH"),
		analystPayload("fundamental", "BULLISH", "MEDIUM"),
		analystPayload("fundamental", "NEUTRAL", "LOW"),
	}

	_, err := ParseRequest(marshalPayload(t, payload))
	require.Error(t, err)
}

func TestParseRequestInvalidEnums(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(payload map[string]any)
		field  string
	}{
		{
			"bad stance",
			func(p map[string]any) {
				p["analysts"].([]map[string]any)[0]["stance"] = "SIDEWAYS"
			},
			"analyst.stance",
		},
		{
			"bad confidence",
			func(p map[string]any) {
				p["analysts"].([]map[string]any)[1]["confidence"] = "EXTREME"
			},
			"analyst.confidence",
		},
		{
			"bad action",
			func(p map[string]any) {
				p["trader_proposal"].(map[string]any)["action"] = "SELL_CALL"
			},
			"trader_proposal.action",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload := validPayload()
			tc.mutate(payload)

			_, err := ParseRequest(marshalPayload(t, payload))

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestParseRequestBoundedPercentages(t *testing.T) {
	t.Parallel()

	for _, bad := range []float64{0, -1, 100.5} {
		payload := validPayload()
		payload["trader_proposal"].(map[string]any)["risk_budget_pct"] = bad

		_, err := ParseRequest(marshalPayload(t, payload))

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "risk_budget_pct=%v", bad)
		assert.Equal(t, "trader_proposal.risk_budget_pct", vErr.Field)
	}
}

func TestParseRequestRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["trader_proposal"].(map[string]any)["quantity"] = 0

	_, err := ParseRequest(marshalPayload(t, payload))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "trader_proposal.quantity", vErr.Field)
}

func TestParseRequestEmptyEvidence(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["analysts"].([]map[string]any)[0]["evidence"] = []string{}

	_, err := ParseRequest(marshalPayload(t, payload))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "analyst.evidence", vErr.Field)
}

func TestParseRequestRiskContextDefaults(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload["risk_context"] = map[string]any{
		"daily_realized_pnl_pct": -0.5,
	}

	req, err := ParseRequest(marshalPayload(t, payload))
	require.NoError(t, err)
	require.NotNil(t, req.RiskContext)

	// Omitted limits take the desk policy defaults.
	assert.Equal(t, -0.5, req.RiskContext.DailyRealizedPnLPct)
	assert.Equal(t, 2.0, req.RiskContext.MaxDailyLossPct)
	assert.Equal(t, 50.0, req.RiskContext.MaxBidAskSpreadBps)
	assert.Equal(t, 100.0, req.RiskContext.AvailableRiskBudgetPct)
}
