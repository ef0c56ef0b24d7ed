package tree

import "github.com/ammiranda/notetree/models"

// Transform maps a node to its replacement. It must keep the node's id and type.
type Transform func(models.Node) models.Node

// UpdateRecursively applies fn to every node, parents before children, and
// returns the new forest. Subtrees in which fn changed nothing are shared
// with the input.
func UpdateRecursively(forest models.Forest, fn Transform) models.Forest {
	out, _ := mapNodes(forest, fn)
	return out
}

func mapNodes(nodes []models.Node, fn Transform) ([]models.Node, bool) {
	var out []models.Node
	for i, n := range nodes {
		updated := fn(n)
		if folder, ok := updated.(*models.Folder); ok {
			if children, changed := mapNodes(folder.Children, fn); changed {
				folder = folder.Clone()
				folder.Children = children
				updated = folder
			}
		}
		if updated != n && out == nil {
			out = make([]models.Node, len(nodes))
			copy(out, nodes[:i])
		}
		if out != nil {
			out[i] = updated
		}
	}
	if out == nil {
		return nodes, false
	}
	return out, true
}

// UpdateNode applies fn to the first node with the given id and rebuilds only
// the path leading to it. It reports whether the node was found.
func UpdateNode(forest models.Forest, id string, fn Transform) (models.Forest, bool) {
	out, ok := updateIn(forest, id, fn)
	if !ok {
		return forest, false
	}
	return out, true
}

func updateIn(nodes []models.Node, id string, fn Transform) ([]models.Node, bool) {
	for i, n := range nodes {
		var replacement models.Node
		if n.NodeID() == id {
			replacement = fn(n)
		} else if folder, ok := n.(*models.Folder); ok {
			children, found := updateIn(folder.Children, id, fn)
			if !found {
				continue
			}
			clone := folder.Clone()
			clone.Children = children
			replacement = clone
		} else {
			continue
		}
		out := make([]models.Node, len(nodes))
		copy(out, nodes)
		out[i] = replacement
		return out, true
	}
	return nodes, false
}

// RemoveNode detaches the first node with the given id, subtree included.
// When the id is not found the forest is returned unchanged and ok is false.
func RemoveNode(forest models.Forest, id string) (models.Forest, models.Node, bool) {
	out, removed, ok := removeFrom(forest, id)
	if !ok {
		return forest, nil, false
	}
	return out, removed, true
}

func removeFrom(nodes []models.Node, id string) ([]models.Node, models.Node, bool) {
	for i, n := range nodes {
		if n.NodeID() == id {
			out := make([]models.Node, 0, len(nodes)-1)
			out = append(out, nodes[:i]...)
			out = append(out, nodes[i+1:]...)
			return out, n, true
		}
		folder, ok := n.(*models.Folder)
		if !ok {
			continue
		}
		children, removed, found := removeFrom(folder.Children, id)
		if !found {
			continue
		}
		clone := folder.Clone()
		clone.Children = children
		out := make([]models.Node, len(nodes))
		copy(out, nodes)
		out[i] = clone
		return out, removed, true
	}
	return nodes, nil, false
}

// InsertNode places node relative to targetID. Before and After splice it
// next to the target among the target's siblings; Inside appends it to a
// folder target and opens that folder. RootID appends to the top level.
// ok is false, and the forest unchanged, when the target is missing or
// cannot take the position.
func InsertNode(forest models.Forest, targetID string, pos Position, node models.Node) (models.Forest, bool) {
	if targetID == RootID {
		return appendNode(forest, node), true
	}
	if pos == None {
		return forest, false
	}
	out, ok := insertInto(forest, targetID, pos, node)
	if !ok {
		return forest, false
	}
	return out, true
}

func insertInto(nodes []models.Node, targetID string, pos Position, node models.Node) ([]models.Node, bool) {
	for i, n := range nodes {
		if n.NodeID() == targetID {
			switch pos {
			case Before:
				return spliceAt(nodes, i, node), true
			case After:
				return spliceAt(nodes, i+1, node), true
			case Inside:
				folder, ok := n.(*models.Folder)
				if !ok {
					return nodes, false
				}
				clone := folder.Clone()
				clone.IsOpen = true
				clone.Children = appendNode(folder.Children, node)
				return replaceAt(nodes, i, clone), true
			}
			return nodes, false
		}
		folder, ok := n.(*models.Folder)
		if !ok {
			continue
		}
		children, found := insertInto(folder.Children, targetID, pos, node)
		if !found {
			continue
		}
		clone := folder.Clone()
		clone.Children = children
		return replaceAt(nodes, i, clone), true
	}
	return nodes, false
}

func spliceAt(nodes []models.Node, i int, node models.Node) []models.Node {
	out := make([]models.Node, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, node)
	return append(out, nodes[i:]...)
}

func replaceAt(nodes []models.Node, i int, node models.Node) []models.Node {
	out := make([]models.Node, len(nodes))
	copy(out, nodes)
	out[i] = node
	return out
}

func appendNode(nodes []models.Node, node models.Node) []models.Node {
	out := make([]models.Node, 0, len(nodes)+1)
	out = append(out, nodes...)
	return append(out, node)
}
