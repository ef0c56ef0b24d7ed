package tree

import (
	"strings"

	"github.com/ammiranda/notetree/models"

	"golang.org/x/text/cases"
)

// Match is a search hit together with the names of its ancestors
type Match struct {
	Node models.Node `json:"node"`
	Path []string    `json:"path"`
}

// Search returns nodes whose name contains query, ignoring case.
// Results are in pre-order.
func Search(forest models.Forest, query string) []Match {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var matches []Match
	var visit func(nodes []models.Node, path []string)
	visit = func(nodes []models.Node, path []string) {
		for _, n := range nodes {
			if strings.Contains(fold.String(n.NodeName()), needle) {
				matches = append(matches, Match{Node: n, Path: append([]string(nil), path...)})
			}
			if children := models.ChildrenOf(n); len(children) > 0 {
				visit(children, append(path, n.NodeName()))
			}
		}
	}
	visit(forest, nil)
	return matches
}
