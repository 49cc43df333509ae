// Package policy evaluates operator-configured guard rules against bills
// before they are committed. Rules are CEL expressions that must hold for
// the bill to pass, e.g. "total <= 100000.0" or
// "bill_type == 'sales' ? tax_rate <= 30.0 : true".
package policy

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/shopspring/decimal"

	"stockbook/internal/core/apperror"
)

// Rule is one named guard expression.
type Rule struct {
	Name       string
	Expression string
}

// BillFacts is the view of a bill exposed to rule expressions.
type BillFacts struct {
	BillType    string // "sales" or "purchase"
	Status      string
	Subtotal    decimal.Decimal
	ExtraTotal  decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	TaxRate     decimal.Decimal
	LineCount   int
	ChargeCount int
}

// Guard holds compiled rules. A nil Guard passes everything.
type Guard struct {
	rules []compiledRule
}

type compiledRule struct {
	name    string
	program cel.Program
}

// NewGuard compiles the given rules. A rule that fails to compile is a
// configuration error and aborts startup rather than silently passing bills.
func NewGuard(rules []Rule) (*Guard, error) {
	env, err := cel.NewEnv(
		cel.Variable("bill_type", cel.StringType),
		cel.Variable("status", cel.StringType),
		cel.Variable("subtotal", cel.DoubleType),
		cel.Variable("extra_total", cel.DoubleType),
		cel.Variable("tax", cel.DoubleType),
		cel.Variable("total", cel.DoubleType),
		cel.Variable("tax_rate", cel.DoubleType),
		cel.Variable("line_count", cel.IntType),
		cel.Variable("charge_count", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("policy env: %w", err)
	}

	g := &Guard{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("policy rule %q: %w", r.Name, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("policy rule %q: expression must be boolean, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("policy rule %q: %w", r.Name, err)
		}
		g.rules = append(g.rules, compiledRule{name: r.Name, program: prg})
	}
	return g, nil
}

// Check evaluates every rule against the bill. The first violated rule is
// reported as a validation error naming the rule.
func (g *Guard) Check(ctx context.Context, facts BillFacts) error {
	if g == nil || len(g.rules) == 0 {
		return nil
	}

	vars := map[string]any{
		"bill_type":    facts.BillType,
		"status":       facts.Status,
		"subtotal":     facts.Subtotal.InexactFloat64(),
		"extra_total":  facts.ExtraTotal.InexactFloat64(),
		"tax":          facts.Tax.InexactFloat64(),
		"total":        facts.Total.InexactFloat64(),
		"tax_rate":     facts.TaxRate.InexactFloat64(),
		"line_count":   facts.LineCount,
		"charge_count": facts.ChargeCount,
	}

	for _, r := range g.rules {
		out, _, err := r.program.ContextEval(ctx, vars)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("policy rule %q: %w", r.name, err))
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return apperror.NewInternal(fmt.Errorf("policy rule %q: non-boolean result", r.name))
		}
		if !ok {
			return apperror.NewValidation(fmt.Sprintf("bill rejected by policy rule %q", r.name)).
				WithDetail("rule", r.name)
		}
	}
	return nil
}
