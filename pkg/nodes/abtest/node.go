// Package abtest provides the deterministic traffic-split node. The same
// lead always lands in the same path; across many leads the split converges
// to the configured percentages.
package abtest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	"github.com/convy/flow/pkg/models"
)

// Path is one weighted branch of the split. The engine follows the edge whose
// SourceHandle equals the selected path's id.
type Path struct {
	ID         string
	Percentage int
}

type ABTestNode struct {
	id    string
	paths []Path
}

func NewABTestNode(id string, config map[string]any) (*ABTestNode, error) {
	node := &ABTestNode{id: id}

	raw, _ := config["paths"].([]any)
	for i, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("path %d is not an object", i)
		}

		path := Path{}
		path.ID, _ = entry["id"].(string)

		switch pct := entry["percentage"].(type) {
		case float64:
			path.Percentage = int(pct)
		case int:
			path.Percentage = pct
		}

		if path.ID == "" {
			return nil, fmt.Errorf("path %d missing id", i)
		}

		node.paths = append(node.paths, path)
	}

	// Default split: two even paths named a and b.
	if len(node.paths) == 0 {
		node.paths = []Path{{ID: "a", Percentage: 50}, {ID: "b", Percentage: 50}}
	}

	return node, nil
}

func (n *ABTestNode) ID() string {
	return n.id
}

func (n *ABTestNode) Type() string {
	return models.NodeTypeABTest
}

func (n *ABTestNode) Execute(_ context.Context, ec *models.ExecutionContext, _ *models.NodeInput) (*models.NodeResult, error) {
	identifier := n.identifier(ec)
	bucket := int(murmur3.Sum32([]byte(identifier+n.id)) % 100)

	selected := n.paths[len(n.paths)-1].ID
	cumulative := 0

	for _, path := range n.paths {
		cumulative += path.Percentage
		if bucket < cumulative {
			selected = path.ID

			break
		}
	}

	result := models.Success(n.id, map[string]any{
		"selected_path": selected,
		"bucket":        bucket,
	})
	result.SelectedHandle = selected

	return result, nil
}

// identifier prefers the lead id so a returning lead stays in its bucket; a
// random fallback still distributes anonymous traffic.
func (n *ABTestNode) identifier(ec *models.ExecutionContext) string {
	if leadID, ok := ec.Get("lead.id"); ok {
		if s, ok := leadID.(string); ok && s != "" {
			return s
		}
	}

	if contactID, ok := ec.Get("contact.id"); ok {
		if s, ok := contactID.(string); ok && s != "" {
			return s
		}
	}

	return uuid.New().String()
}
