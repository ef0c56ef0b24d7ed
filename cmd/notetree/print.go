package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/tree"

	"github.com/fatih/color"
)

var (
	folderColor = color.New(color.FgHiBlue, color.Bold)
	lockedColor = color.New(color.FgYellow)
	idColor     = color.New(color.FgHiBlack)
)

// printForest writes the forest as an indented outline. Collapsed folders
// hide their children unless all is set.
func printForest(w io.Writer, forest models.Forest, all bool) {
	if len(forest) == 0 {
		fmt.Fprintln(w, "(no notes)")
		return
	}
	tree.Walk(forest, func(n models.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		var line string
		expand := true
		switch node := n.(type) {
		case *models.Folder:
			marker := "▸"
			if node.IsOpen {
				marker = "▾"
			}
			expand = node.IsOpen || all
			line = marker + " " + folderColor.Sprint(node.Name)
		case *models.File:
			line = "  " + node.Name
		}
		if n.Locked() {
			line += " " + lockedColor.Sprint("[locked]")
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, line, idColor.Sprint("("+n.NodeID()+")"))
		return expand
	})
}
