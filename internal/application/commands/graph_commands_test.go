package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"papergraph-backend/internal/errors"
)

func TestValidate_NodeCommand(t *testing.T) {
	tests := []struct {
		name  string
		cmd   NodeCommand
		valid bool
	}{
		{"minimal", NodeCommand{Title: "BERT"}, true},
		{"full", NodeCommand{Title: "BERT", Kind: "method", PageReferences: []int{1, 4},
			RelatedConcepts: []string{"5b3f6c1e-8d2a-4b7e-9f10-2a3b4c5d6e7f"}}, true},
		{"missing title", NodeCommand{}, false},
		{"bad kind", NodeCommand{Title: "x", Kind: "idea"}, false},
		{"zero page", NodeCommand{Title: "x", PageReferences: []int{0}}, false},
		{"bad related id", NodeCommand{Title: "x", RelatedConcepts: []string{"nope"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cmd)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
		})
	}
}

func TestValidate_EdgeCommand(t *testing.T) {
	id := "5b3f6c1e-8d2a-4b7e-9f10-2a3b4c5d6e7f"
	assert.NoError(t, Validate(EdgeCommand{SourceID: id, TargetID: id}))
	assert.NoError(t, Validate(EdgeCommand{SourceID: id, TargetID: id, Relationship: "implements"}))
	assert.Error(t, Validate(EdgeCommand{SourceID: id}))
	assert.Error(t, Validate(EdgeCommand{SourceID: id, TargetID: "x"}))
	assert.Error(t, Validate(EdgeCommand{SourceID: id, TargetID: id, Relationship: "cites"}))
}

func TestValidate_IngestCommand(t *testing.T) {
	assert.NoError(t, Validate(IngestCommand{Sections: []SectionInput{{Title: "Intro", Content: "text"}}}))
	assert.Error(t, Validate(IngestCommand{}))
	assert.Error(t, Validate(IngestCommand{Sections: []SectionInput{{Title: "Intro"}}}))
}
