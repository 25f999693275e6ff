package model

// Source names an input dataset that contributed to a system.
type Source string

const (
	SourceLucid     Source = "Lucid"
	SourceInventory Source = "Inventory"
	SourceFuture    Source = "Future"
)

// IsCurrent reports whether the source describes the current architecture.
func (s Source) IsCurrent() bool {
	return s == SourceLucid || s == SourceInventory
}

// State is the change status of a system or integration between the current
// and future snapshots.
type State string

const (
	StateAdded     State = "added"
	StateRemoved   State = "removed"
	StateModified  State = "modified"
	StateUnchanged State = "unchanged"
)

// HarmonizedSystem is one deduplicated system in the enterprise graph.
type HarmonizedSystem struct {
	ID           string   `json:"id" yaml:"id"` // canonical key
	Label        string   `json:"label" yaml:"label"`
	Domain       string   `json:"domain" yaml:"domain"`
	SourceOrigin []Source `json:"source_origin" yaml:"source_origin"`
	State        State    `json:"state" yaml:"state"`
	Confidence   float64  `json:"confidence" yaml:"confidence"`
	Disposition  string   `json:"disposition,omitempty" yaml:"disposition,omitempty"`
}
