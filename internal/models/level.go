package models

// Level is a named score tier. Start is the inclusive score threshold at
// which the tier begins; End is the exclusive upper bound, nil for the
// unbounded top tier.
type Level struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Value int    `json:"value"`
	Start int    `json:"start"`
	End   *int   `json:"end,omitempty"`
}
