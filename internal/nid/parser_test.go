package nid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nidextract/internal/nid"
	"nidextract/internal/ocr"
)

func items(texts ...string) []ocr.TextItem {
	out := make([]ocr.TextItem, len(texts))
	for i, text := range texts {
		out[i] = ocr.TextItem{Text: text, Confidence: 0.9}
	}
	return out
}

func TestParseFront_LabelledFields(t *testing.T) {
	p := nid.NewParser(nid.DefaultConfig())

	result := p.ParseFront(items(
		"Name:",
		"JOHN DOE",
		"Date of Birth: 01/01/1990",
		"ID NO: 1234567890123",
	))

	require.NotNil(t, result)
	assert.Equal(t, "JOHN DOE", result.Name)
	assert.Equal(t, "01/01/1990", result.DateOfBirth)
	assert.Equal(t, "1234567890123", result.NIDNumber)
	assert.Len(t, result.RawText, 4)
}

func TestParseFront_MissingFieldIsAbsentNotError(t *testing.T) {
	p := nid.NewParser(nid.DefaultConfig())

	result := p.ParseFront(items(
		"Name: JANE DOE",
		"Date of Birth: 05/06/1985",
	))

	require.NotNil(t, result)
	assert.Equal(t, "JANE DOE", result.Name)
	assert.Equal(t, "05/06/1985", result.DateOfBirth)
	assert.Empty(t, result.NIDNumber)
}

func TestParseFront_Deterministic(t *testing.T) {
	p := nid.NewParser(nid.DefaultConfig())
	input := items("Name: ALICE RAHMAN", "DOB: 12/11/1978", "NID No. 600 124 4158 2")

	first := p.ParseFront(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.ParseFront(input))
	}
}

func TestParseFront_ConfidenceFiltering(t *testing.T) {
	p := nid.NewParser(nid.DefaultConfig())

	input := []ocr.TextItem{
		{Text: "Name: REAL NAME", Confidence: 0.9},
		{Text: "ID NO: 1234567890", Confidence: 0.1}, // below threshold
	}
	result := p.ParseFront(input)

	assert.Equal(t, "REAL NAME", result.Name)
	assert.Empty(t, result.NIDNumber, "low-confidence item must not feed field classification")
	assert.Len(t, result.RawText, 2, "raw text reports all items regardless of confidence")
}

func TestParseFront_NIDNumber(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{
			name:  "labelled contiguous run",
			texts: []string{"NID No: 1994123456789"},
			want:  "1994123456789",
		},
		{
			name:  "label on separate line",
			texts: []string{"ID NO", "1234567890"},
			want:  "1234567890",
		},
		{
			name:  "spaced digit groups joined",
			texts: []string{"NID No. 600 124 4158"},
			want:  "6001244158",
		},
		{
			name:  "unlabelled run of known length",
			texts: []string{"JOHN DOE", "12345678901234567"},
			want:  "12345678901234567",
		},
		{
			name:  "unlabelled run of unknown length is rejected",
			texts: []string{"JOHN DOE", "123456789012"},
			want:  "",
		},
		{
			name:  "short digit runs ignored",
			texts: []string{"House 42", "Ward 7"},
			want:  "",
		},
	}

	p := nid.NewParser(nid.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseFront(items(tt.texts...))
			assert.Equal(t, tt.want, result.NIDNumber)
		})
	}
}

func TestParseFront_DateOfBirth(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{
			name:  "numeric with slashes",
			texts: []string{"Date of Birth: 30/12/1996"},
			want:  "30/12/1996",
		},
		{
			name:  "numeric with dashes",
			texts: []string{"DOB 05-06-1985"},
			want:  "05-06-1985",
		},
		{
			name:  "day month year",
			texts: []string{"Date of Birth: 30 Dec 1996"},
			want:  "30 Dec 1996",
		},
		{
			name:  "month day year",
			texts: []string{"Birth Dec 30, 1996"},
			want:  "Dec 30, 1996",
		},
		{
			name:  "date split across fragments after label",
			texts: []string{"Date of Birth", "30 Dec", "1996"},
			want:  "30 Dec 1996",
		},
		{
			name:  "implausible year rejected",
			texts: []string{"Date of Birth: 01/01/1850"},
			want:  "",
		},
		{
			name:  "invalid month rejected",
			texts: []string{"Date of Birth: 01/13/1990"},
			want:  "",
		},
		{
			name:  "unlabelled date still found",
			texts: []string{"JOHN DOE", "15/08/1971"},
			want:  "15/08/1971",
		},
	}

	p := nid.NewParser(nid.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseFront(items(tt.texts...))
			assert.Equal(t, tt.want, result.DateOfBirth)
		})
	}
}

func TestParseFront_Name(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{
			name:  "name after colon",
			texts: []string{"Name: MOHAMMAD KARIM"},
			want:  "MOHAMMAD KARIM",
		},
		{
			name:  "multi-line name after bare label",
			texts: []string{"Name:", "MOHAMMAD", "KARIM UDDIN", "Date of Birth: 01/01/1990"},
			want:  "MOHAMMAD KARIM UDDIN",
		},
		{
			name:  "name line limit respected",
			texts: []string{"Name:", "AAA BBB", "CCC DDD", "EEE FFF", "GGG HHH"},
			want:  "AAA BBB CCC DDD EEE FFF",
		},
		{
			name:  "uppercase shape fallback without label",
			texts: []string{"Government of Bangladesh", "ABDUL HALIM", "01/01/1990"},
			want:  "ABDUL HALIM",
		},
		{
			name:  "no plausible name",
			texts: []string{"1234567890", "01/01/1990"},
			want:  "",
		},
	}

	p := nid.NewParser(nid.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseFront(items(tt.texts...))
			assert.Equal(t, tt.want, result.Name)
		})
	}
}

func TestParseFront_CleansRecognitionArtifacts(t *testing.T) {
	p := nid.NewParser(nid.DefaultConfig())

	result := p.ParseFront(items("Name:   JOHN\t DOE  ", "ID NO: «1234567890»"))

	assert.Equal(t, "JOHN DOE", result.Name)
	assert.Equal(t, "1234567890", result.NIDNumber)
}
