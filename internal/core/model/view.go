package model

import "time"

// DigitalEnterpriseView is the per-project snapshot shown on dashboards.
type DigitalEnterpriseView struct {
	ProjectID string          `json:"project_id"`
	Graph     HarmonizedGraph `json:"graph"`
	Stats     GraphStats      `json:"stats"`
	UpdatedAt time.Time       `json:"updated_at"`
}
