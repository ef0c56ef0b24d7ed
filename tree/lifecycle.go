package tree

import "github.com/ammiranda/notetree/models"

// NewFile returns an unlocked empty file
func NewFile(id, name string) *models.File {
	return &models.File{ID: id, Name: name}
}

// NewFolder returns a closed, unlocked, empty folder
func NewFolder(id, name string) *models.Folder {
	return &models.Folder{ID: id, Name: name, Children: []models.Node{}}
}

// Create appends node to the top level when parentID is empty, otherwise
// inside the parent folder, which is opened. A missing or non-folder
// parent leaves the forest unchanged and ok false.
func Create(forest models.Forest, parentID string, node models.Node) (models.Forest, bool) {
	if parentID == "" {
		return InsertNode(forest, RootID, Inside, node)
	}
	parent, ok := FindNode(parentID, forest)
	if !ok || parent.NodeType() != models.TypeFolder {
		return forest, false
	}
	return InsertNode(forest, parentID, Inside, node)
}

// CanRename returns a warning when node is locked
func CanRename(node models.Node) error {
	if node.Locked() {
		return warn(ErrLocked, MsgRenameLocked)
	}
	return nil
}

// Rename sets the name of the node with the given id
func Rename(forest models.Forest, id, name string) (models.Forest, error) {
	node, ok := FindNode(id, forest)
	if !ok {
		return forest, nil
	}
	if err := CanRename(node); err != nil {
		return forest, err
	}
	out, _ := UpdateNode(forest, id, func(n models.Node) models.Node {
		switch v := n.(type) {
		case *models.Folder:
			c := v.Clone()
			c.Name = name
			return c
		case *models.File:
			c := v.Clone()
			c.Name = name
			return c
		}
		return n
	})
	return out, nil
}

// ToggleLock flips IsLocked on one node. Descendants are not affected.
func ToggleLock(forest models.Forest, id string) models.Forest {
	out, _ := UpdateNode(forest, id, func(n models.Node) models.Node {
		switch v := n.(type) {
		case *models.Folder:
			c := v.Clone()
			c.IsLocked = !c.IsLocked
			return c
		case *models.File:
			c := v.Clone()
			c.IsLocked = !c.IsLocked
			return c
		}
		return n
	})
	return out
}

// ToggleOpen flips IsOpen on a folder. Files are left untouched.
func ToggleOpen(forest models.Forest, id string) models.Forest {
	out, _ := UpdateNode(forest, id, func(n models.Node) models.Node {
		folder, ok := n.(*models.Folder)
		if !ok {
			return n
		}
		c := folder.Clone()
		c.IsOpen = !c.IsOpen
		return c
	})
	return out
}

// SetContent replaces the content of a file. Locked files are refused,
// and folders yield ErrNotAFile.
func SetContent(forest models.Forest, id, content string) (models.Forest, error) {
	node, ok := FindNode(id, forest)
	if !ok {
		return forest, nil
	}
	file, ok := node.(*models.File)
	if !ok {
		return forest, ErrNotAFile
	}
	if file.IsLocked {
		return forest, warn(ErrLocked, MsgEditLocked)
	}
	out, _ := UpdateNode(forest, id, func(models.Node) models.Node {
		c := file.Clone()
		c.Content = content
		return c
	})
	return out, nil
}

// SelectionLocked reports whether deleting sel would remove a locked node:
// either a selected node is locked or a folder being deleted holds one.
func SelectionLocked(forest models.Forest, sel Selection) bool {
	return lockedIn(forest, sel, false)
}

func lockedIn(nodes []models.Node, sel Selection, deleting bool) bool {
	for _, n := range nodes {
		doomed := deleting || sel.Has(n.NodeID())
		if doomed && n.Locked() {
			return true
		}
		if lockedIn(models.ChildrenOf(n), sel, doomed) {
			return true
		}
	}
	return false
}

// DeleteSelected removes every selected node, with its subtree, from every
// level of the forest in one step. The whole batch is refused when it is
// empty or touches a locked node.
func DeleteSelected(forest models.Forest, sel Selection) (models.Forest, error) {
	if len(sel) == 0 {
		return forest, warn(ErrEmptySelection, MsgEmptySelection)
	}
	if SelectionLocked(forest, sel) {
		return forest, warn(ErrLockedSelection, MsgLockedDelete)
	}
	out, _ := prune(forest, sel)
	return out, nil
}

func prune(nodes []models.Node, sel Selection) ([]models.Node, bool) {
	out := make([]models.Node, 0, len(nodes))
	changed := false
	for _, n := range nodes {
		if sel.Has(n.NodeID()) {
			changed = true
			continue
		}
		if folder, ok := n.(*models.Folder); ok {
			if children, pruned := prune(folder.Children, sel); pruned {
				c := folder.Clone()
				c.Children = children
				n = c
				changed = true
			}
		}
		out = append(out, n)
	}
	if !changed {
		return nodes, false
	}
	return out, true
}
