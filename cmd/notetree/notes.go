package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ammiranda/notetree/internal/app"
	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/tree"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewNotesCmd creates the notes command group
func NewNotesCmd(a **app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Work with the note tree of a campaign",
	}
	cmd.AddCommand(
		newNotesShowCmd(a),
		newNotesAddCmd(a),
		newNotesMvCmd(a),
		newNotesRmCmd(a),
		newNotesRenameCmd(a),
		newNotesLockCmd(a),
		newNotesOpenCmd(a),
		newNotesEditCmd(a),
		newNotesSearchCmd(a),
		newNotesExportCmd(a),
		newNotesImportCmd(a),
	)
	return cmd
}

func newNotesShowCmd(a **app.App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "show [campaign-id]",
		Short: "Print the note tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := (*a).Service.Notes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printForest(cmd.OutOrStdout(), forest, all)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Expand collapsed folders")
	return cmd
}

func newNotesAddCmd(a **app.App) *cobra.Command {
	var (
		folder bool
		parent string
	)
	cmd := &cobra.Command{
		Use:   "add [campaign-id] [name]",
		Short: "Add a note or folder",
		Long: `Add a note or folder at the top level, or inside --parent.

Examples:
  notetree notes add 1700000000000 "Session 3"
  notetree notes add 1700000000000 NPCs --folder
  notetree notes add 1700000000000 "Strahd" --parent 1700000000042`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.CreateNoteRequest{Type: models.TypeFile, ParentID: parent}
			if folder {
				req.Type = models.TypeFolder
			}
			if len(args) == 2 {
				req.Name = args[1]
			}
			if err := req.Validate(); err != nil {
				return err
			}
			node, err := (*a).Service.Create(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", node.NodeType(), node.NodeName(), node.NodeID())
			return nil
		},
	}
	cmd.Flags().BoolVar(&folder, "folder", false, "Create a folder instead of a note")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent folder id")
	return cmd
}

func newNotesMvCmd(a **app.App) *cobra.Command {
	var position string
	cmd := &cobra.Command{
		Use:   "mv [campaign-id] [note-id] [target-id]",
		Short: "Move a note next to or into another node",
		Long: `Move a note (with its descendants) before, after or inside a target.
Use ROOT as the target to move it to the end of the top level.

Examples:
  notetree notes mv 1700000000000 42 43 --position inside
  notetree notes mv 1700000000000 42 ROOT`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.MoveNoteRequest{SourceID: args[1], TargetID: args[2], Position: position}
			if err := req.Validate(); err != nil {
				return err
			}
			forest, err := (*a).Service.Move(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			printForest(cmd.OutOrStdout(), forest, false)
			return nil
		},
	}
	cmd.Flags().StringVar(&position, "position", "after", "before, after or inside")
	return cmd
}

func newNotesRmCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [campaign-id] [note-id...]",
		Short: "Delete notes and folders with everything inside them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).Service.Delete(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d item(s)\n", len(args)-1)
			return nil
		},
	}
}

func newNotesRenameCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename [campaign-id] [note-id] [name]",
		Short: "Rename a note or folder",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.RenameNoteRequest{Name: args[2]}
			if err := req.Validate(); err != nil {
				return err
			}
			node, err := (*a).Service.Rename(cmd.Context(), args[0], args[1], req.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", node.NodeID(), node.NodeName())
			return nil
		},
	}
}

func newNotesLockCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "lock [campaign-id] [note-id]",
		Short: "Lock or unlock a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := (*a).Service.ToggleLock(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			state := "unlocked"
			if node.Locked() {
				state = lockedColor.Sprint("locked")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", node.NodeName(), state)
			return nil
		},
	}
}

func newNotesOpenCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "open [campaign-id] [folder-id]",
		Short: "Expand or collapse a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := (*a).Service.ToggleOpen(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if f, ok := node.(*models.Folder); ok && f.IsOpen {
				fmt.Fprintf(cmd.OutOrStdout(), "Expanded %s\n", f.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Collapsed %s\n", node.NodeName())
			}
			return nil
		},
	}
}

func newNotesEditCmd(a **app.App) *cobra.Command {
	var (
		content string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "edit [campaign-id] [note-id]",
		Short: "Replace the content of a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				content = string(data)
			}
			if _, err := (*a).Service.UpdateContent(cmd.Context(), args[0], args[1], content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Content saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the new content from a file")
	return cmd
}

func newNotesSearchCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "search [campaign-id] [query]",
		Short: "Find notes by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := (*a).Service.Search(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			for _, m := range matches {
				path := append(append([]string(nil), m.Path...), m.Node.NodeName())
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", strings.Join(path, " / "), idColor.Sprint("("+m.Node.NodeID()+")"))
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgHiBlack).Sprint("no matches"))
			}
			return nil
		},
	}
}

func newNotesExportCmd(a **app.App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [campaign-id]",
		Short: "Write the note tree as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := (*a).Service.Notes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := encodeForest(forest, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	return cmd
}

func newNotesImportCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "import [campaign-id] [file]",
		Short: "Replace the note tree with an exported JSON or YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			data, err = toJSON(data, filepath.Ext(args[1]))
			if err != nil {
				return err
			}
			forest, err := (*a).Service.Import(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d item(s)\n", tree.Count(forest))
			return nil
		},
	}
}

func encodeForest(forest models.Forest, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(forest, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(forest)
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// toJSON converts a YAML export into the JSON forest shape
func toJSON(data []byte, ext string) ([]byte, error) {
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}
	var forest models.Forest
	if err := yaml.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return json.Marshal(forest)
}
