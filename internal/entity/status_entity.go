package entity

// Status summarizes the outcome of the most recent operation.
type Status struct {
	Kind    string `json:"kind"` // idle | loading | success | error
	Message string `json:"message"`
}
