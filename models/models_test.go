package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleForest() Forest {
	return Forest{
		&Folder{ID: "F", Name: "Sessions", IsOpen: true, Children: []Node{
			&File{ID: "x", Name: "Session 1", Content: "<p>hi</p>"},
			&Folder{ID: "G", Name: "Empty", IsLocked: true, Children: []Node{}},
		}},
		&File{ID: "y", Name: "Loot"},
	}
}

func TestForestJSONShape(t *testing.T) {
	data, err := json.Marshal(sampleForest())
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"F","name":"Sessions","type":"folder","isOpen":true,"isLocked":false,"children":[
			{"id":"x","name":"Session 1","type":"file","content":"<p>hi</p>","isLocked":false},
			{"id":"G","name":"Empty","type":"folder","isOpen":false,"isLocked":true,"children":[]}
		]},
		{"id":"y","name":"Loot","type":"file","content":"","isLocked":false}
	]`, string(data))

	var decoded Forest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleForest(), decoded)
}

func TestForestJSONEdgeCases(t *testing.T) {
	data, err := json.Marshal(Forest(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = json.Marshal(&Folder{ID: "F", Name: "no children"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"children":[]`)

	var forest Forest
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","name":"A","type":"file"},{"id":"b","name":"B","type":"folder"}]`), &forest))
	assert.Equal(t, "", forest[0].(*File).Content)
	assert.NotNil(t, forest[1].(*Folder).Children)
	assert.False(t, forest[1].(*Folder).IsOpen)

	err = json.Unmarshal([]byte(`[{"id":"a","name":"A","type":"scroll"}]`), &forest)
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestForestYAML(t *testing.T) {
	data, err := yaml.Marshal(sampleForest())
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: folder")

	var decoded Forest
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, sampleForest(), decoded)

	err = yaml.Unmarshal([]byte("- id: a\n  name: A\n  type: file\n  children:\n    - id: b\n      name: B\n      type: file\n"), &decoded)
	assert.ErrorContains(t, err, "cannot have children")

	err = yaml.Unmarshal([]byte("- id: a\n  name: A\n  type: scroll\n"), &decoded)
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestCloneIsShallow(t *testing.T) {
	f := sampleForest()[0].(*Folder)
	c := f.Clone()
	c.Name = "Renamed"
	assert.Equal(t, "Sessions", f.Name)
	assert.Same(t, f.Children[0], c.Children[0])
	assert.Len(t, ChildrenOf(c), 2)
	assert.Nil(t, ChildrenOf(&File{ID: "x"}))
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   interface{ Validate() error }
		valid bool
	}{
		{"campaign ok", &CreateCampaignRequest{Title: "Strahd"}, true},
		{"campaign without title", &CreateCampaignRequest{}, false},
		{"note ok", &CreateNoteRequest{Type: TypeFile}, true},
		{"note bad type", &CreateNoteRequest{Type: "scroll"}, false},
		{"rename empty", &RenameNoteRequest{}, false},
		{"delete ok", &DeleteNotesRequest{IDs: []string{"a"}}, true},
		{"delete blank id", &DeleteNotesRequest{IDs: []string{""}}, false},
		{"move geometry", &MoveNoteRequest{SourceID: "a", TargetID: "b", OffsetY: 3, Height: 10}, true},
		{"move position", &MoveNoteRequest{SourceID: "a", TargetID: "ROOT", Position: "inside"}, true},
		{"move bad position", &MoveNoteRequest{SourceID: "a", TargetID: "b", Position: "under"}, false},
		{"move negative offset", &MoveNoteRequest{SourceID: "a", TargetID: "b", OffsetY: -1}, false},
		{"move without source", &MoveNoteRequest{TargetID: "b"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
