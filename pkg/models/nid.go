package models

// FrontData holds the structured fields extracted from the front side of a
// National ID card. Fields the parser could not identify are left empty and
// omitted from JSON output; RawText always carries every retained OCR line.
type FrontData struct {
	Name        string   `json:"name,omitempty"`          // Cardholder name, joined across lines
	DateOfBirth string   `json:"date_of_birth,omitempty"` // Date string as printed on the card
	NIDNumber   string   `json:"nid_number,omitempty"`    // 10-17 digit national ID number
	RawText     []string `json:"raw_text"`                // All cleaned OCR lines, in detection order
}

// BackData holds the structured fields extracted from the back side.
type BackData struct {
	Address    string   `json:"address,omitempty"`     // Consolidated single-line address
	BloodGroup string   `json:"blood_group,omitempty"` // Blood group when a blood label is present
	RawText    []string `json:"raw_text"`              // All cleaned OCR lines, in detection order
}

// ExtractionData bundles both sides for the extraction API response.
type ExtractionData struct {
	NIDFront *FrontData `json:"nid_front,omitempty"`
	NIDBack  *BackData  `json:"nid_back,omitempty"`
}
