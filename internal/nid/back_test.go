package nid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nidextract/internal/nid"
	"nidextract/internal/ocr"
)

func TestParseBack_AddressConsolidation(t *testing.T) {
	p := nid.NewParser(nid.DefaultConfig())

	result := p.ParseBack(items(
		"Village: ABC",
		"Post: XYZ",
		"Thana: Something",
		"District: Dhaka",
	))

	assert.Equal(t, "Village: ABC, Post: XYZ, Thana: Something, District: Dhaka", result.Address)
}

func TestParseBack_Address(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{
			name:  "no anchor yields absent address",
			texts: []string{"Some unrelated text", "1234"},
			want:  "",
		},
		{
			name:  "stop word terminates accumulation",
			texts: []string{"Address: Holding 12", "Road 5", "Date of Birth: 01/01/1990", "District: Dhaka"},
			want:  "Address: Holding 12, Road 5",
		},
		{
			name:  "bare label opens section without contributing",
			texts: []string{"Address:", "House 7, Road 3", "Dhanmondi"},
			want:  "House 7, Road 3, Dhanmondi",
		},
		{
			name:  "leading non-address lines skipped",
			texts: []string{"This card is property of", "the government", "Village: Noapara", "Post: Kotwali"},
			want:  "Village: Noapara, Post: Kotwali",
		},
		{
			name:  "nid number line excluded from address",
			texts: []string{"Village: ABC", "1234567890123", "Post: XYZ"},
			want:  "Village: ABC, Post: XYZ",
		},
		{
			name:  "bengali script anchors the section",
			texts: []string{"গ্রাম: নোয়াপাড়া", "ডাকঘর: কোতোয়ালী"},
			want:  "গ্রাম: নোয়াপাড়া, ডাকঘর: কোতোয়ালী",
		},
		{
			name:  "repeated commas collapsed",
			texts: []string{"Village: ABC,", "Post: XYZ"},
			want:  "Village: ABC, Post: XYZ",
		},
	}

	p := nid.NewParser(nid.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseBack(items(tt.texts...))
			assert.Equal(t, tt.want, result.Address)
		})
	}
}

// Consolidating an already-consolidated address must reproduce it unchanged.
func TestParseBack_AddressIdempotent(t *testing.T) {
	p := nid.NewParser(nid.DefaultConfig())

	first := p.ParseBack(items("Village: ABC", "Post: XYZ", "Thana: Something"))
	second := p.ParseBack([]ocr.TextItem{{Text: first.Address, Confidence: 0.9}})

	assert.Equal(t, first.Address, second.Address)
}

func TestParseBack_BloodGroup(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{name: "labelled positive", texts: []string{"Blood Group: AB+"}, want: "AB+"},
		{name: "labelled negative", texts: []string{"Blood Group: O-"}, want: "O-"},
		{name: "unlabelled candidate ignored", texts: []string{"B+ something"}, want: ""},
		{name: "absent", texts: []string{"Village: ABC"}, want: ""},
	}

	p := nid.NewParser(nid.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseBack(items(tt.texts...))
			assert.Equal(t, tt.want, result.BloodGroup)
		})
	}
}

func TestParseBack_CustomStopWords(t *testing.T) {
	cfg := nid.DefaultConfig()
	cfg.AddressStopWords = append(cfg.AddressStopWords, "custom marker")
	p := nid.NewParser(cfg)

	result := p.ParseBack(items("Village: ABC", "Custom Marker", "Post: XYZ"))

	assert.Equal(t, "Village: ABC", result.Address)
}
