package model

// RawRecord is a normalized input row, discarded after the merge.
type RawRecord struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Domain      string   `json:"domain,omitempty"`
	Source      Source   `json:"source"`
	Upstream    []string `json:"upstream,omitempty"`
	Downstream  []string `json:"downstream,omitempty"`
	Disposition string   `json:"disposition,omitempty"`
}
