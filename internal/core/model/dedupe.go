package model

// Conflict records two sources disagreeing on a system's domain.
type Conflict struct {
	Key         string `json:"key"`
	Canonical   string `json:"canonical"`
	Conflicting string `json:"conflicting"`
	Source      Source `json:"source"`
}
