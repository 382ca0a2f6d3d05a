package nid_test

import (
	"fmt"

	"nidextract/internal/nid"
	"nidextract/internal/ocr"
)

// Example demonstrates extracting front-side fields from recognized text items.
func Example() {
	parser := nid.NewParser(nid.DefaultConfig())

	front := parser.ParseFront([]ocr.TextItem{
		{Text: "Name: MOHAMMAD KARIM", Confidence: 0.95},
		{Text: "Date of Birth: 30/12/1996", Confidence: 0.92},
		{Text: "NID No: 1234567890", Confidence: 0.97},
	})

	fmt.Println(front.Name)
	fmt.Println(front.DateOfBirth)
	fmt.Println(front.NIDNumber)
	// Output:
	// MOHAMMAD KARIM
	// 30/12/1996
	// 1234567890
}

// ExampleParser_ParseBack demonstrates consolidating the back-side address.
func ExampleParser_ParseBack() {
	parser := nid.NewParser(nid.DefaultConfig())

	back := parser.ParseBack([]ocr.TextItem{
		{Text: "Village: Noapara", Confidence: 0.9},
		{Text: "Post: Kotwali", Confidence: 0.9},
		{Text: "District: Dhaka", Confidence: 0.9},
	})

	fmt.Println(back.Address)
	// Output:
	// Village: Noapara, Post: Kotwali, District: Dhaka
}
