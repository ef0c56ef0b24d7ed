package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NodeType identifies the variant of a note node
type NodeType string

const (
	TypeFolder NodeType = "folder"
	TypeFile   NodeType = "file"
)

// ErrUnknownNodeType is returned when decoding a node whose type is neither folder nor file
var ErrUnknownNodeType = errors.New("unknown node type")

// Node is a single entry of the note tree. It is implemented by *Folder and *File only.
//
// Nodes are treated as immutable values: every tree operation returns new
// nodes for the path it changes and shares untouched subtrees.
type Node interface {
	NodeID() string
	NodeName() string
	NodeType() NodeType
	Locked() bool
	isNode()
}

// Folder is a node that may contain other nodes
type Folder struct {
	ID       string
	Name     string
	IsOpen   bool
	IsLocked bool
	Children []Node
}

// File is a leaf node holding opaque rich-text content
type File struct {
	ID       string
	Name     string
	Content  string
	IsLocked bool
}

func (f *Folder) NodeID() string     { return f.ID }
func (f *Folder) NodeName() string   { return f.Name }
func (f *Folder) NodeType() NodeType { return TypeFolder }
func (f *Folder) Locked() bool       { return f.IsLocked }
func (f *Folder) isNode()            {}

func (f *File) NodeID() string     { return f.ID }
func (f *File) NodeName() string   { return f.Name }
func (f *File) NodeType() NodeType { return TypeFile }
func (f *File) Locked() bool       { return f.IsLocked }
func (f *File) isNode()            {}

// Clone returns a shallow copy of the folder. The children slice is shared.
func (f *Folder) Clone() *Folder {
	c := *f
	return &c
}

// Clone returns a copy of the file
func (f *File) Clone() *File {
	c := *f
	return &c
}

// Forest is an ordered list of top-level nodes
type Forest []Node

// nodeJSON is the persisted shape of a node
type nodeJSON struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     NodeType          `json:"type"`
	Content  *string           `json:"content,omitempty"`
	IsOpen   *bool             `json:"isOpen,omitempty"`
	IsLocked bool              `json:"isLocked"`
	Children []json.RawMessage `json:"children,omitempty"`
}

// MarshalJSON encodes the folder with its type tag
func (f *Folder) MarshalJSON() ([]byte, error) {
	children := f.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Type     NodeType `json:"type"`
		IsOpen   bool     `json:"isOpen"`
		IsLocked bool     `json:"isLocked"`
		Children Forest   `json:"children"`
	}{f.ID, f.Name, TypeFolder, f.IsOpen, f.IsLocked, children})
}

// MarshalJSON encodes the file with its type tag
func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Type     NodeType `json:"type"`
		Content  string   `json:"content"`
		IsLocked bool     `json:"isLocked"`
	}{f.ID, f.Name, TypeFile, f.Content, f.IsLocked})
}

// MarshalJSON always encodes an array, never null
func (f Forest) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Node(f))
}

// UnmarshalJSON decodes a list of tagged nodes
func (f *Forest) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Forest, 0, len(raw))
	for _, r := range raw {
		n, err := decodeNode(r)
		if err != nil {
			return err
		}
		out = append(out, n)
	}
	*f = out
	return nil
}

func decodeNode(data json.RawMessage) (Node, error) {
	var nj nodeJSON
	if err := json.Unmarshal(data, &nj); err != nil {
		return nil, err
	}
	switch nj.Type {
	case TypeFolder:
		folder := &Folder{
			ID:       nj.ID,
			Name:     nj.Name,
			IsLocked: nj.IsLocked,
			Children: make([]Node, 0, len(nj.Children)),
		}
		if nj.IsOpen != nil {
			folder.IsOpen = *nj.IsOpen
		}
		for _, c := range nj.Children {
			child, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			folder.Children = append(folder.Children, child)
		}
		return folder, nil
	case TypeFile:
		file := &File{ID: nj.ID, Name: nj.Name, IsLocked: nj.IsLocked}
		if nj.Content != nil {
			file.Content = *nj.Content
		}
		return file, nil
	default:
		return nil, fmt.Errorf("%w: %q (node %q)", ErrUnknownNodeType, nj.Type, nj.ID)
	}
}

// ChildrenOf returns the children of n, or nil when n is a file
func ChildrenOf(n Node) []Node {
	if f, ok := n.(*Folder); ok {
		return f.Children
	}
	return nil
}
