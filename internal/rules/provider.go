package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"locate-service/internal/database"

	"go.uber.org/zap"
)

// Provider supplies the active locate rules for a market and evaluates them.
type Provider interface {
	GetActiveLocateRules(ctx context.Context, market string) ([]WorkflowRule, error)
	ProcessRules(ctx context.Context, rules []WorkflowRule, evalCtx map[string]interface{}) (map[string]interface{}, error)
}

// StaticProvider serves a fixed in-memory rule set.
type StaticProvider struct {
	mu     sync.RWMutex
	rules  []WorkflowRule
	engine *Engine
}

// NewStaticProvider creates a provider over a copy of rules
func NewStaticProvider(engine *Engine, rules ...WorkflowRule) *StaticProvider {
	p := &StaticProvider{engine: engine}
	p.SetRules(rules)
	return p
}

// SetRules replaces the rule set
func (p *StaticProvider) SetRules(rules []WorkflowRule) {
	cp := make([]WorkflowRule, len(rules))
	copy(cp, rules)
	SortRules(cp)

	p.mu.Lock()
	p.rules = cp
	p.mu.Unlock()
}

func (p *StaticProvider) GetActiveLocateRules(ctx context.Context, market string) ([]WorkflowRule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]WorkflowRule, 0, len(p.rules))
	for _, rule := range p.rules {
		if rule.AppliesTo(market) {
			result = append(result, rule)
		}
	}
	return result, nil
}

func (p *StaticProvider) ProcessRules(ctx context.Context, rules []WorkflowRule, evalCtx map[string]interface{}) (map[string]interface{}, error) {
	return p.engine.ProcessRules(rules, evalCtx), nil
}

// SQLiteProvider reads rules from the workflow_rules table. Conditions and
// actions are stored as JSON documents.
type SQLiteProvider struct {
	db     *database.SingleWriterDB
	engine *Engine
	logger *zap.Logger
}

// NewSQLiteProvider creates a new SQLite-backed rule provider
func NewSQLiteProvider(db *database.SingleWriterDB, engine *Engine, logger *zap.Logger) *SQLiteProvider {
	return &SQLiteProvider{
		db:     db,
		engine: engine,
		logger: logger,
	}
}

func (p *SQLiteProvider) GetActiveLocateRules(ctx context.Context, market string) ([]WorkflowRule, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT rule_id, name, market, rule_type, priority, active, conditions, action
		FROM workflow_rules
		WHERE active = 1 AND rule_type = ? AND (market = ? OR market = ?)
		ORDER BY priority, rule_id
	`, RuleTypeLocate, strings.ToUpper(market), AllMarkets)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow rules: %w", err)
	}
	defer rows.Close()

	result := make([]WorkflowRule, 0)
	for rows.Next() {
		var (
			rule       WorkflowRule
			active     int
			conditions string
			action     string
		)
		if err := rows.Scan(&rule.RuleID, &rule.Name, &rule.Market, &rule.RuleType, &rule.Priority, &active, &conditions, &action); err != nil {
			return nil, fmt.Errorf("failed to scan workflow rule: %w", err)
		}
		rule.Active = active == 1
		if err := json.Unmarshal([]byte(conditions), &rule.Conditions); err != nil {
			// A corrupt rule must not approve anything; skip it and keep evaluating the rest.
			p.logger.Error("Skipping workflow rule with invalid conditions",
				zap.String("rule_id", rule.RuleID),
				zap.Error(err),
			)
			continue
		}
		if err := json.Unmarshal([]byte(action), &rule.Action); err != nil {
			p.logger.Error("Skipping workflow rule with invalid action",
				zap.String("rule_id", rule.RuleID),
				zap.Error(err),
			)
			continue
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflow rules: %w", err)
	}
	return result, nil
}

func (p *SQLiteProvider) ProcessRules(ctx context.Context, rules []WorkflowRule, evalCtx map[string]interface{}) (map[string]interface{}, error) {
	return p.engine.ProcessRules(rules, evalCtx), nil
}

// SaveRule inserts or replaces a rule
func (p *SQLiteProvider) SaveRule(ctx context.Context, rule WorkflowRule) error {
	if rule.RuleType == "" {
		rule.RuleType = RuleTypeLocate
	}
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal rule conditions: %w", err)
	}
	action, err := json.Marshal(rule.Action)
	if err != nil {
		return fmt.Errorf("failed to marshal rule action: %w", err)
	}
	now := database.FormatTime(time.Now())

	return p.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO workflow_rules (rule_id, name, market, rule_type, priority, active, conditions, action, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(rule_id) DO UPDATE SET
				name = excluded.name,
				market = excluded.market,
				rule_type = excluded.rule_type,
				priority = excluded.priority,
				active = excluded.active,
				conditions = excluded.conditions,
				action = excluded.action,
				updated_at = excluded.updated_at
		`,
			rule.RuleID, rule.Name, strings.ToUpper(rule.Market), rule.RuleType, rule.Priority,
			database.BoolToInt(rule.Active), string(conditions), string(action), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save workflow rule: %w", err)
		}
		return nil
	})
}

var (
	_ Provider = (*StaticProvider)(nil)
	_ Provider = (*SQLiteProvider)(nil)
)
