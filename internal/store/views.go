package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/fuxi/internal/core/model"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
)

const viewPrefix = "view/"

// Views saves and loads digital enterprise views keyed by project id.
type Views struct {
	store Store
	now   func() time.Time
}

func NewViews(s Store) *Views {
	return &Views{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// Save stores graph as the project's view, recomputing its stats.
func (v *Views) Save(ctx context.Context, projectID string, graph model.HarmonizedGraph) (model.DigitalEnterpriseView, error) {
	view := model.DigitalEnterpriseView{
		ProjectID: projectID,
		Graph:     graph,
		Stats:     graph.Stats(),
		UpdatedAt: v.now(),
	}
	data, err := json.Marshal(view)
	if err != nil {
		return view, fmt.Errorf("failed to encode view: %w", err)
	}
	if err := v.store.Put(ctx, viewPrefix+projectID, data); err != nil {
		return view, fmt.Errorf("failed to save view for %s: %w", projectID, err)
	}
	return view, nil
}

// Get loads a project's view. A missing project yields a NotFoundError.
func (v *Views) Get(ctx context.Context, projectID string) (model.DigitalEnterpriseView, error) {
	var view model.DigitalEnterpriseView
	data, err := v.store.Get(ctx, viewPrefix+projectID)
	if errors.Is(err, fuxierr.ErrNotFound) {
		return view, fuxierr.NewNotFoundError("project", projectID)
	}
	if err != nil {
		return view, err
	}
	if err := json.Unmarshal(data, &view); err != nil {
		return view, fmt.Errorf("failed to decode view for %s: %w", projectID, err)
	}
	return view, nil
}

// Projects lists project ids with a stored view.
func (v *Views) Projects(ctx context.Context) ([]string, error) {
	keys, err := v.store.List(ctx, viewPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strings.TrimPrefix(k, viewPrefix)
	}
	return out, nil
}

func (v *Views) Delete(ctx context.Context, projectID string) error {
	return v.store.Delete(ctx, viewPrefix+projectID)
}
