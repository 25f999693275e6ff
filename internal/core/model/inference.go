package model

// ConnectionSuggestion is an inferred, not yet confirmed, integration.
type ConnectionSuggestion struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
}

// AIConnection is the shape the LLM is asked to return.
type AIConnection struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

type AIConnections struct {
	Connections []AIConnection `json:"connections"`
}

type ClusterName struct {
	Name string `json:"name"`
}

type ClusterSummary struct {
	Summary string `json:"summary"`
}

// Cluster is a group of closely integrated systems.
type Cluster struct {
	Name    string             `json:"name"`
	Summary string             `json:"summary,omitempty"`
	Systems []HarmonizedSystem `json:"systems"`
}
