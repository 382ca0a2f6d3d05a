package nid

// Label keywords are matched as lowercase substrings of cleaned item text.
var (
	nameKeywords = []string{"name"}

	dobKeywords = []string{"date of birth", "dob", "birth"}

	nidKeywords = []string{"nid no", "id no", "nid"}
)

// defaultAddressKeywords lists the Latin-script address component labels used
// to anchor back-side address accumulation. Bengali equivalents are matched by
// script range rather than exact words (OCR output of Bengali labels is noisy).
func defaultAddressKeywords() []string {
	return []string{
		"address",
		"village",
		"post",
		"thana",
		"district",
		"division",
		"upazila",
		"holding",
		"road",
		"ward",
	}
}

// defaultAddressStopWords terminate address accumulation: labels of unrelated
// document fields that follow the address block on NID backs. Bengali entries
// cover the birth/date/blood/signature labels.
func defaultAddressStopWords() []string {
	return []string{
		"date of birth",
		"dob",
		"birth",
		"blood",
		"signature",
		"issue",
		"expire",
		"জন্ম",
		"তারিখ",
		"রক্ত",
		"স্বাক্ষর",
	}
}

// monthNumbers maps lowercase three-letter month prefixes to month numbers for
// textual date validation.
var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}
