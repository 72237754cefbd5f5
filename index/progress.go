package index

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Load stages reported to the progress snapshot.
const (
	StageLocating   = "locating"
	StageDocuments  = "documents"
	StageEmbeddings = "embeddings"
	StageReady      = "ready"
	StageFailed     = "failed"
)

// Snapshot is one persisted progress observation.
type Snapshot struct {
	Stage      string    `json:"stage"`
	Current    int       `json:"current"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	Timestamp  time.Time `json:"timestamp"`
}

// Reporter persists load progress to a JSON snapshot file. Writes are
// best-effort: failures are logged at debug level and swallowed so that an
// unwritable cache directory never fails initialization.
type Reporter struct {
	path   string
	logger *slog.Logger

	mu        sync.Mutex
	last      Snapshot
	observed  bool
	persisted bool
}

// NewReporter creates a reporter writing to the given snapshot path.
// An empty path disables persistence but still tracks the last snapshot.
func NewReporter(path string, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{path: path, logger: logger}
}

// Report records a stage transition and persists it.
func (r *Reporter) Report(stage string, current, total int) {
	snapshot := Snapshot{
		Stage:     stage,
		Current:   current,
		Total:     total,
		Timestamp: time.Now().UTC(),
	}
	if total > 0 {
		snapshot.Percentage = float64(current) / float64(total) * 100.0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.last = snapshot
	r.observed = true

	if r.path == "" {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.Debug("failed to encode progress snapshot", "err", err)
		r.persisted = false
		return
	}
	if err := os.WriteFile(r.path, payload, 0644); err != nil {
		r.logger.Debug("failed to persist progress snapshot", "path", r.path, "err", err)
		r.persisted = false
		return
	}
	r.persisted = true
}

// Last returns the most recent snapshot, whether any snapshot has been
// observed this process, and whether the latest write reached disk.
func (r *Reporter) Last() (Snapshot, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.observed, r.persisted
}
