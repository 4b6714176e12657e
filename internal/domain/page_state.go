package domain

// PageState is a page together with the revision being rendered:
// the live revision, or the latest one when previewing.
type PageState struct {
	Page      Page     `json:"page"`
	Revision  Revision `json:"revision"`
	Ancestors []Page   `json:"ancestors"` // root first, parent last
	Preview   bool     `json:"preview"`
}
