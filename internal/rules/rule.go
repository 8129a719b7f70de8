package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Operator compares a context value with a condition value.
type Operator string

const (
	OpEQ  Operator = "EQ"
	OpNE  Operator = "NE"
	OpGT  Operator = "GT"
	OpGTE Operator = "GTE"
	OpLT  Operator = "LT"
	OpLTE Operator = "LTE"
	OpIN  Operator = "IN"
)

// AllMarkets scopes a rule to every market.
const AllMarkets = "*"

// RuleTypeLocate is the only rule type the workflow reads.
const RuleTypeLocate = "LOCATE"

// Evaluation context keys supplied by the workflow.
const (
	KeySecurityID        = "securityId"
	KeyClientID          = "clientId"
	KeyRequestedQuantity = "requestedQuantity"
	KeyMarket            = "market"
	KeyAggregationUnitID = "aggregationUnitId"
)

// Result context keys.
const (
	ResultStatus              = "status"
	ResultSecurityTemperature = "securityTemperature"
	ResultBorrowRate          = "borrowRate"
	ResultRejectionReason     = "rejectionReason"
	ResultRuleID              = "ruleId"
)

// Verdict statuses a rule can produce.
const (
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// WorkflowRule is a market-scoped rule. All conditions must hold for the
// action to apply.
type WorkflowRule struct {
	RuleID     string      `json:"ruleId"`
	Name       string      `json:"name"`
	Market     string      `json:"market"`
	RuleType   string      `json:"ruleType"`
	Priority   int         `json:"priority"`
	Active     bool        `json:"active"`
	Conditions []Condition `json:"conditions"`
	Action     Action      `json:"action"`
}

// Condition tests one context field. IN takes its candidates from Values.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// Action is the verdict a matching rule contributes.
type Action struct {
	Status              string           `json:"status"`
	SecurityTemperature string           `json:"securityTemperature,omitempty"`
	BorrowRate          *decimal.Decimal `json:"borrowRate,omitempty"`
	RejectionReason     string           `json:"rejectionReason,omitempty"`
}

// AppliesTo reports whether the rule is active and scoped to market.
func (r WorkflowRule) AppliesTo(market string) bool {
	if !r.Active {
		return false
	}
	if r.RuleType != "" && r.RuleType != RuleTypeLocate {
		return false
	}
	return r.Market == AllMarkets || strings.EqualFold(r.Market, market)
}

// Verdict is the typed view of a result context.
type Verdict struct {
	Status              string
	SecurityTemperature string
	BorrowRate          decimal.Decimal
	RejectionReason     string
	RuleID              string
}

// HasVerdict is false when no rule produced a status (manual review).
func (v Verdict) HasVerdict() bool {
	return v.Status == StatusApproved || v.Status == StatusRejected
}

// ParseVerdict reads a result context. Unknown statuses read as no verdict.
func ParseVerdict(result map[string]interface{}) Verdict {
	v := Verdict{
		Status:              stringValue(result[ResultStatus]),
		SecurityTemperature: stringValue(result[ResultSecurityTemperature]),
		RejectionReason:     stringValue(result[ResultRejectionReason]),
		RuleID:              stringValue(result[ResultRuleID]),
	}
	v.Status = strings.ToUpper(v.Status)
	if !v.HasVerdict() {
		v.Status = ""
	}
	if rate, ok := toDecimal(result[ResultBorrowRate]); ok {
		v.BorrowRate = rate
	}
	return v
}

func stringValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	if d, ok := toDecimal(value); ok {
		return d.String()
	}
	return ""
}

var operators = map[Operator]bool{
	OpEQ: true, OpNE: true, OpGT: true, OpGTE: true, OpLT: true, OpLTE: true, OpIN: true,
}

// Validate checks that a rule can be stored and evaluated.
func (r WorkflowRule) Validate() error {
	if strings.TrimSpace(r.RuleID) == "" {
		return fmt.Errorf("ruleId is required")
	}
	if strings.TrimSpace(r.Market) == "" {
		return fmt.Errorf("market is required, use %q for every market", AllMarkets)
	}
	for i, cond := range r.Conditions {
		if cond.Field == "" {
			return fmt.Errorf("condition %d: field is required", i)
		}
		if !operators[cond.Operator] {
			return fmt.Errorf("condition %d: unknown operator %q", i, cond.Operator)
		}
	}
	switch strings.ToUpper(r.Action.Status) {
	case StatusApproved, StatusRejected:
	default:
		return fmt.Errorf("action status must be %s or %s", StatusApproved, StatusRejected)
	}
	return nil
}
