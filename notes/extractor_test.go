package notes

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialwise/evalpipe/core"
)

func TestBuildPrompt_CapsCustomPrompts(t *testing.T) {
	org := &core.OrgContext{OrgID: "org-1", Company: "Acme"}
	for i := 0; i < 13; i++ {
		org.CustomPrompts = append(org.CustomPrompts, fmt.Sprintf("observation %d", i))
	}

	prompt := BuildPrompt("Ana: hi", org)

	assert.Contains(t, prompt, "observation 9")
	assert.NotContains(t, prompt, "observation 10")
	assert.Equal(t, MaxCustomPrompts, strings.Count(prompt, "- observation"))
}

func TestBuildPrompt_ProfileAndTranscript(t *testing.T) {
	org := &core.OrgContext{OrgID: "org-1", Company: "Acme", Product: "Widgets", SalesModel: "outbound"}
	prompt := BuildPrompt("Ana: hi\nBen: hello", org)

	assert.Contains(t, prompt, "Company: Acme")
	assert.Contains(t, prompt, "Product: Widgets")
	assert.Contains(t, prompt, "Sales model: outbound")
	assert.NotContains(t, prompt, "Audience:")
	assert.True(t, strings.HasSuffix(prompt, "Transcript:\nAna: hi\nBen: hello"))
}

func TestBuildPrompt_NilOrg(t *testing.T) {
	prompt := BuildPrompt("Ana: hi", nil)
	assert.Equal(t, "Transcript:\nAna: hi", prompt)
}

func TestDecodeNotes(t *testing.T) {
	reply := "```json\n" + `{
		"sections": [{"name": "Budget", "facts": ["approved Q4"]}],
		"next_steps": [{"description": "demo", "owner": "both", "status": "agreed"}],
		"deal_health": {"temperature": "warm", "probability": "40-60%", "blockers": ["legal review"]}
	}` + "\n```"

	notes, err := DecodeNotes(reply)
	require.NoError(t, err)
	require.Len(t, notes.Sections, 1)
	assert.Equal(t, "Budget", notes.Sections[0].Name)
	require.Len(t, notes.NextSteps, 1)
	assert.Equal(t, core.OwnerBoth, notes.NextSteps[0].Owner)
	assert.Equal(t, core.StepAgreed, notes.NextSteps[0].Status)
	require.NotNil(t, notes.DealHealth)
	assert.Equal(t, "warm", notes.DealHealth.Temperature)
}

func TestDecodeNotes_Malformed(t *testing.T) {
	_, err := DecodeNotes("no structured notes here")
	assert.Error(t, err)

	_, err = DecodeNotes(`{"sections": [{]}`)
	assert.Error(t, err)
}
