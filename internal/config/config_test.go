package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MARKET_CUTOFF_HOURS", "")
	t.Setenv("AUTH_USERS", "")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "")

	cfg := Load()

	assert.Equal(t, []string{"localhost:9093"}, cfg.KafkaBrokers)
	assert.Equal(t, 150, cfg.SLABudgetMs)
	assert.Equal(t, 15, cfg.MarketCutoffHours["JP"])
	assert.Equal(t, 13, cfg.MarketCutoffHours["TW"])
	assert.Equal(t, 300, cfg.IdempotencyTTL)
	assert.Contains(t, cfg.AuthUsers, "approver:")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("SLA_BUDGET_MS", "200")
	t.Setenv("EXPIRY_SWEEP_ENABLED", "false")
	t.Setenv("MARKET_CUTOFF_HOURS", "jp=14,hk=17")

	cfg := Load()

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 200, cfg.SLABudgetMs)
	assert.False(t, cfg.ExpirySweepEnabled)
	assert.Equal(t, map[string]int{"JP": 14, "HK": 17}, cfg.MarketCutoffHours)
}

func TestParseCutoffHours_SkipsMalformed(t *testing.T) {
	hours := parseCutoffHours("JP=15,bad,TW=x,US=25,KR=9")

	assert.Equal(t, map[string]int{"JP": 15, "KR": 9}, hours)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")

	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}
