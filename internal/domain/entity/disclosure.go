// Package entity defines the core domain entities and validation logic for the application.
// It contains the Disclosure record extracted from the TDnet listing, along with
// request validation rules and domain-specific errors.
package entity

// Disclosure represents one timely-disclosure entry published on the listing.
// Values are built once per accepted table row and never modified afterwards.
type Disclosure struct {
	// Time is the publication time shown in the first column (e.g. "15:00").
	Time string `json:"time"`
	// Code is the issuer's securities code.
	Code        string `json:"code"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	// DocumentURL is the absolute URL of the disclosure PDF, empty when the row has no link.
	DocumentURL string `json:"document_url,omitempty"`
	Exchange    string `json:"exchange"`
	// XBRLURL is the absolute URL of the XBRL archive linked from the fifth column.
	XBRLURL string `json:"xbrl_url,omitempty"`
	// Place is the free text of the sixth column (listing place / update note).
	Place string `json:"place,omitempty"`
}

// HasDocument reports whether the disclosure links to a document.
func (d Disclosure) HasDocument() bool {
	return d.DocumentURL != ""
}
