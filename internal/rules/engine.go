package rules

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine evaluates workflow rules against an evaluation context.
//
// Rules are evaluated in the order given and the first rule whose conditions
// all hold and whose action carries a verdict wins. Providers are responsible
// for ordering (see SortRules).
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new rule engine
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// ProcessRules returns the result context of the first matching rule, or an
// empty map when no rule produced a verdict.
func (e *Engine) ProcessRules(rules []WorkflowRule, evalCtx map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		status := strings.ToUpper(rule.Action.Status)
		if status != StatusApproved && status != StatusRejected {
			e.logger.Debug("Skipping rule without verdict", zap.String("rule_id", rule.RuleID))
			continue
		}
		if !e.matches(rule, evalCtx) {
			continue
		}

		result[ResultStatus] = status
		result[ResultRuleID] = rule.RuleID
		if status == StatusApproved {
			result[ResultSecurityTemperature] = rule.Action.SecurityTemperature
			rate := decimal.Zero
			if rule.Action.BorrowRate != nil {
				rate = *rule.Action.BorrowRate
			}
			result[ResultBorrowRate] = rate
		} else {
			result[ResultRejectionReason] = rule.Action.RejectionReason
		}

		e.logger.Debug("Rule matched",
			zap.String("rule_id", rule.RuleID),
			zap.String("status", status),
		)
		return result
	}

	return result
}

func (e *Engine) matches(rule WorkflowRule, evalCtx map[string]interface{}) bool {
	for _, cond := range rule.Conditions {
		if !e.evaluate(cond, evalCtx) {
			return false
		}
	}
	return true
}

func (e *Engine) evaluate(cond Condition, evalCtx map[string]interface{}) bool {
	actual, exists := evalCtx[cond.Field]
	if !exists || actual == nil {
		return false
	}

	switch cond.Operator {
	case OpEQ:
		return equals(actual, cond.Value)
	case OpNE:
		return !equals(actual, cond.Value)
	case OpIN:
		for _, candidate := range cond.Values {
			if equals(actual, candidate) {
				return true
			}
		}
		return false
	case OpGT, OpGTE, OpLT, OpLTE:
		cmp, ok := compare(actual, cond.Value)
		if !ok {
			e.logger.Debug("Non-numeric ordering comparison",
				zap.String("field", cond.Field),
				zap.String("operator", string(cond.Operator)),
			)
			return false
		}
		switch cond.Operator {
		case OpGT:
			return cmp > 0
		case OpGTE:
			return cmp >= 0
		case OpLT:
			return cmp < 0
		default:
			return cmp <= 0
		}
	default:
		e.logger.Warn("Unknown rule operator", zap.String("operator", string(cond.Operator)))
		return false
	}
}

// equals compares numerically when both sides are numbers, otherwise as
// case-insensitive strings.
func equals(actual interface{}, expected string) bool {
	if cmp, ok := compare(actual, expected); ok {
		return cmp == 0
	}
	return strings.EqualFold(stringValue(actual), strings.TrimSpace(expected))
}

func compare(actual interface{}, expected string) (int, bool) {
	left, ok := toDecimal(actual)
	if !ok {
		return 0, false
	}
	right, err := decimal.NewFromString(strings.TrimSpace(expected))
	if err != nil {
		return 0, false
	}
	return left.Cmp(right), true
}

func toDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// SortRules orders rules by ascending priority, then rule id.
func SortRules(rules []WorkflowRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].RuleID < rules[j].RuleID
	})
}
