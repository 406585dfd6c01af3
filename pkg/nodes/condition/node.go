// Package condition provides the branching node: it evaluates configured
// comparisons against the execution context and routes on the True/False
// edge labels.
package condition

import (
	"context"
	"errors"
	"fmt"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/template"
)

// Logic modes combining multiple comparisons.
const (
	LogicAll = "all"
	LogicAny = "any"
)

// Comparison is one configured check. Field is a context path or template;
// Value is the (templated) operand.
type Comparison struct {
	Field    string
	Operator string
	Value    string
}

type ConditionNode struct {
	id          string
	logic       string
	comparisons []Comparison
}

func NewConditionNode(id string, config map[string]any) (*ConditionNode, error) {
	node := &ConditionNode{id: id, logic: LogicAll}

	if logic, ok := config["logic"].(string); ok && logic != "" {
		if logic != LogicAll && logic != LogicAny {
			return nil, fmt.Errorf("unknown logic mode %q", logic)
		}

		node.logic = logic
	}

	raw, ok := config["conditions"].([]any)
	if !ok || len(raw) == 0 {
		return nil, errors.New("missing required field 'conditions'")
	}

	for i, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("condition %d is not an object", i)
		}

		cmp := Comparison{}
		cmp.Field, _ = entry["field"].(string)
		cmp.Operator, _ = entry["operator"].(string)
		cmp.Value = template.Stringify(entry["value"])

		if cmp.Field == "" || cmp.Operator == "" {
			return nil, fmt.Errorf("condition %d missing field or operator", i)
		}

		node.comparisons = append(node.comparisons, cmp)
	}

	return node, nil
}

func (n *ConditionNode) ID() string {
	return n.id
}

func (n *ConditionNode) Type() string {
	return models.NodeTypeCondition
}

func (n *ConditionNode) Execute(_ context.Context, ec *models.ExecutionContext, _ *models.NodeInput) (*models.NodeResult, error) {
	outcome := n.logic == LogicAll

	for _, cmp := range n.comparisons {
		matched := evaluate(cmp, ec)

		if n.logic == LogicAll && !matched {
			outcome = false

			break
		}

		if n.logic == LogicAny && matched {
			outcome = true

			break
		}
	}

	result := models.Success(n.id, map[string]any{"result": outcome})
	result.Condition = &outcome

	return result, nil
}

func evaluate(cmp Comparison, ec *models.ExecutionContext) bool {
	fieldValue, fieldSet := ec.Get(cmp.Field)
	left := template.Stringify(fieldValue)
	right := template.Resolve(cmp.Value, ec)

	switch cmp.Operator {
	case "equals":
		return compare(left, right) == 0
	case "not_equals":
		return compare(left, right) != 0
	case "greater_than":
		return compare(left, right) > 0
	case "greater_equal":
		return compare(left, right) >= 0
	case "less_than":
		return compare(left, right) < 0
	case "less_equal":
		return compare(left, right) <= 0
	case "contains":
		return left != "" && right != "" && contains(left, right)
	case "starts_with":
		return hasPrefix(left, right)
	case "ends_with":
		return hasSuffix(left, right)
	case "is_set":
		return fieldSet && left != ""
	case "is_empty":
		return !fieldSet || left == ""
	default:
		return false
	}
}
