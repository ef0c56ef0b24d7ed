package tree

import "github.com/ammiranda/notetree/models"

// FindNode returns the first node with the given id in depth-first pre-order
func FindNode(id string, forest models.Forest) (models.Node, bool) {
	for _, n := range forest {
		if n.NodeID() == id {
			return n, true
		}
		if children := models.ChildrenOf(n); len(children) > 0 {
			if found, ok := FindNode(id, children); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// IsDescendant reports whether candidateID is reachable below ancestorID.
// It is false when the ancestor is missing or is a file.
func IsDescendant(ancestorID, candidateID string, forest models.Forest) bool {
	ancestor, ok := FindNode(ancestorID, forest)
	if !ok {
		return false
	}
	folder, ok := ancestor.(*models.Folder)
	if !ok {
		return false
	}
	_, found := FindNode(candidateID, folder.Children)
	return found
}

// Walk visits every node in pre-order. Returning false from fn skips the node's children.
func Walk(forest models.Forest, fn func(n models.Node, depth int) bool) {
	walk(forest, 0, fn)
}

func walk(nodes []models.Node, depth int, fn func(models.Node, int) bool) {
	for _, n := range nodes {
		if !fn(n, depth) {
			continue
		}
		walk(models.ChildrenOf(n), depth+1, fn)
	}
}

// IDs returns every node id in pre-order
func IDs(forest models.Forest) []string {
	var ids []string
	Walk(forest, func(n models.Node, _ int) bool {
		ids = append(ids, n.NodeID())
		return true
	})
	return ids
}

// Count returns the number of nodes in the forest
func Count(forest models.Forest) int {
	count := 0
	Walk(forest, func(models.Node, int) bool {
		count++
		return true
	})
	return count
}

// Path returns the chain of nodes from a top-level node down to id
func Path(id string, forest models.Forest) ([]models.Node, bool) {
	for _, n := range forest {
		if n.NodeID() == id {
			return []models.Node{n}, true
		}
		if rest, ok := Path(id, models.ChildrenOf(n)); ok {
			return append([]models.Node{n}, rest...), true
		}
	}
	return nil, false
}
