package searchsimilar

// Result is one resolved hit.
type Result struct {
	// ID is the content id stored with the vector.
	ID string `json:"id"`
	// Distance is the squared L2 distance to the query vector.
	Distance float32 `json:"distance"`
}
