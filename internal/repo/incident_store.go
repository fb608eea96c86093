package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// Incident records live in one directory per incident:
//
//	<dir>/<id>/meta.json
//	<dir>/<id>/timeline.json
//	<dir>/<id>/metrics.json
//	<dir>/<id>/logs.txt
//
// meta.json is required; the other files reduce to empty sections when absent.
const (
	metaFile     = "meta.json"
	timelineFile = "timeline.json"
	metricsFile  = "metrics.json"
	logsFile     = "logs.txt"
)

// IncidentStore supplies incident records from a data directory. The id
// listing is cached and invalidated by a filesystem watcher; record contents
// are read fresh on every load.
type IncidentStore struct {
	logger *slog.Logger
	dir    string

	mu    sync.Mutex
	ids   []string
	stale bool
}

// NewIncidentStore constructs a store rooted at dir.
func NewIncidentStore(dir string, logger *slog.Logger) *IncidentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncidentStore{logger: logger, dir: dir, stale: true}
}

// ListIncidents returns the metadata of every readable incident, sorted by id.
// Incidents with unreadable metadata are skipped, not fatal.
func (s *IncidentStore) ListIncidents() ([]models.IncidentMeta, error) {
	ids, err := s.incidentIDs()
	if err != nil {
		return nil, err
	}

	metas := make([]models.IncidentMeta, 0, len(ids))
	for _, id := range ids {
		meta, err := s.readMeta(id)
		if err != nil {
			s.logger.Warn("skipping incident with unreadable metadata", slog.String("id", id), slog.Any("error", err))
			continue
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// LoadIncident reads one incident record whole.
func (s *IncidentStore) LoadIncident(id string) (models.IncidentRecord, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return models.IncidentRecord{}, utils.NewNotFoundError("repo.LoadIncident", "incident "+id+" not found")
	}

	dir := filepath.Join(s.dir, id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return models.IncidentRecord{}, utils.NewNotFoundError("repo.LoadIncident", "incident "+id+" not found")
	}

	meta, err := s.readMeta(id)
	if err != nil {
		return models.IncidentRecord{}, err
	}

	record := models.IncidentRecord{
		ID:       id,
		Meta:     meta,
		Timeline: []models.TimelineEvent{},
		Metrics:  map[string][]float64{},
	}

	if data, err := os.ReadFile(filepath.Join(dir, timelineFile)); err == nil {
		if err := json.Unmarshal(data, &record.Timeline); err != nil {
			return models.IncidentRecord{}, utils.NewMalformedInputError("repo.LoadIncident", "incident "+id+" has malformed timeline: "+err.Error())
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return models.IncidentRecord{}, utils.NewAppError("repo.LoadIncident", "read timeline", err)
	}

	if data, err := os.ReadFile(filepath.Join(dir, metricsFile)); err == nil {
		if err := json.Unmarshal(data, &record.Metrics); err != nil {
			return models.IncidentRecord{}, utils.NewMalformedInputError("repo.LoadIncident", "incident "+id+" has malformed metrics: "+err.Error())
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return models.IncidentRecord{}, utils.NewAppError("repo.LoadIncident", "read metrics", err)
	}

	if data, err := os.ReadFile(filepath.Join(dir, logsFile)); err == nil {
		record.Logs = string(data)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return models.IncidentRecord{}, utils.NewAppError("repo.LoadIncident", "read logs", err)
	}

	return record, nil
}

// Watch invalidates the id listing whenever the data directory changes. It
// blocks until ctx is cancelled.
func (s *IncidentStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return utils.NewAppError("repo.Watch", "create watcher", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return utils.NewAppError("repo.Watch", "watch "+s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.logger.Debug("incident directory changed", slog.String("event", event.String()))
				s.invalidate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("incident watcher error", slog.Any("error", err))
		}
	}
}

func (s *IncidentStore) invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

func (s *IncidentStore) incidentIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stale {
		return append([]string(nil), s.ids...), nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, utils.NewAppError("repo.incidentIDs", "read data dir", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)

	s.ids = ids
	s.stale = false
	return append([]string(nil), ids...), nil
}

func (s *IncidentStore) readMeta(id string) (models.IncidentMeta, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id, metaFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.IncidentMeta{}, utils.NewMalformedInputError("repo.readMeta", "incident "+id+" is missing "+metaFile)
		}
		return models.IncidentMeta{}, utils.NewAppError("repo.readMeta", "read metadata", err)
	}

	var meta models.IncidentMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return models.IncidentMeta{}, utils.NewMalformedInputError("repo.readMeta", "incident "+id+" has malformed metadata: "+err.Error())
	}
	if meta.ID == "" {
		meta.ID = id
	}
	return meta, nil
}
