package model

// Edge is an integration between two harmonized systems.
type Edge struct {
	ID         string  `json:"id" yaml:"id"`
	Source     string  `json:"source" yaml:"source"` // upstream system id
	Target     string  `json:"target" yaml:"target"` // downstream system id
	State      State   `json:"state" yaml:"state"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// EdgeID builds the deterministic id of the edge between two system ids.
func EdgeID(source, target string) string {
	return source + "->" + target
}
