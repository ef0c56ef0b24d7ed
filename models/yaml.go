package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlNode mirrors the JSON persistence shape for YAML exports
type yamlNode struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Type     NodeType   `yaml:"type"`
	Content  string     `yaml:"content,omitempty"`
	IsOpen   bool       `yaml:"isOpen,omitempty"`
	IsLocked bool       `yaml:"isLocked,omitempty"`
	Children []yamlNode `yaml:"children,omitempty"`
}

func toYAML(nodes []Node) []yamlNode {
	out := make([]yamlNode, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *Folder:
			out = append(out, yamlNode{
				ID:       v.ID,
				Name:     v.Name,
				Type:     TypeFolder,
				IsOpen:   v.IsOpen,
				IsLocked: v.IsLocked,
				Children: toYAML(v.Children),
			})
		case *File:
			out = append(out, yamlNode{
				ID:       v.ID,
				Name:     v.Name,
				Type:     TypeFile,
				Content:  v.Content,
				IsLocked: v.IsLocked,
			})
		}
	}
	return out
}

func fromYAML(nodes []yamlNode) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for _, y := range nodes {
		switch y.Type {
		case TypeFolder:
			children, err := fromYAML(y.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, &Folder{ID: y.ID, Name: y.Name, IsOpen: y.IsOpen, IsLocked: y.IsLocked, Children: children})
		case TypeFile:
			if len(y.Children) > 0 {
				return nil, fmt.Errorf("file %q cannot have children", y.ID)
			}
			out = append(out, &File{ID: y.ID, Name: y.Name, Content: y.Content, IsLocked: y.IsLocked})
		default:
			return nil, fmt.Errorf("%w: %q (node %q)", ErrUnknownNodeType, y.Type, y.ID)
		}
	}
	return out, nil
}

// MarshalYAML implements yaml.Marshaler
func (f Forest) MarshalYAML() (interface{}, error) {
	return toYAML(f), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (f *Forest) UnmarshalYAML(value *yaml.Node) error {
	var nodes []yamlNode
	if err := value.Decode(&nodes); err != nil {
		return err
	}
	decoded, err := fromYAML(nodes)
	if err != nil {
		return err
	}
	*f = decoded
	return nil
}
