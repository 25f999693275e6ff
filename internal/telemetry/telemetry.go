// Package telemetry appends harmonization run events to an NDJSON log and
// domain conflicts to a plain-text log. Both are best effort: write failures
// are logged at debug level and otherwise ignored.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/fuxi/internal/core/model"
	"github.com/agenthands/fuxi/internal/logging"
)

const (
	EventHarmonizationStart    = "harmonization_start"
	EventHarmonizationComplete = "harmonization_complete"
	EventLucidIngested         = "lucid_ingested"
)

// Event is one NDJSON line.
type Event struct {
	SessionID   string         `json:"session_id"`
	WorkspaceID string         `json:"workspace_id"`
	EventType   string         `json:"event_type"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data"`
}

// Recorder appends events to an NDJSON file. A nil Recorder or an empty path
// records nothing.
type Recorder struct {
	path        string
	sessionID   string
	workspaceID string
	now         func() time.Time
	mu          sync.Mutex
}

// NewRecorder creates a recorder. An empty sessionID gets a random one.
func NewRecorder(path, sessionID, workspaceID string) *Recorder {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	return &Recorder{
		path:        path,
		sessionID:   sessionID,
		workspaceID: workspaceID,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (r *Recorder) SessionID() string {
	if r == nil {
		return ""
	}
	return r.sessionID
}

// Record appends one event.
func (r *Recorder) Record(ctx context.Context, eventType string, data map[string]any) {
	if r == nil || r.path == "" {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	ev := Event{
		SessionID:   r.sessionID,
		WorkspaceID: r.workspaceID,
		EventType:   eventType,
		Timestamp:   r.now(),
		Data:        data,
	}
	line, err := json.Marshal(ev)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("event_type", eventType).Msg("Failed to encode telemetry event")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := appendLine(r.path, line); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("path", r.path).Msg("Failed to append telemetry event")
	}
}

// ConflictLog appends one line per domain conflict.
type ConflictLog struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewConflictLog(path string) *ConflictLog {
	return &ConflictLog{
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Append writes the conflicts. Nothing is written for an empty list.
func (c *ConflictLog) Append(ctx context.Context, conflicts []model.Conflict) {
	if c == nil || c.path == "" || len(conflicts) == 0 {
		return
	}
	ts := c.now().Format(time.RFC3339)
	var buf []byte
	for _, cf := range conflicts {
		buf = fmt.Appendf(buf, "%s key=%q canonical=%q conflicting=%q source=%s\n",
			ts, cf.Key, cf.Canonical, cf.Conflicting, cf.Source)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := appendLine(c.path, buf[:len(buf)-1]); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("path", c.path).Msg("Failed to append conflict log")
	}
}

func appendLine(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}
