// Package localstore persists the client's task list, the archive and the
// last-visit marker as files in the config directory.
package localstore

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"today/internal/task"
)

const (
	// TasksFile holds the current task list.
	TasksFile = "tasks.json"

	// ArchiveFile holds tasks archived at the end of a day.
	ArchiveFile = "archive.json"

	// LastVisitFile holds the YYYY-MM-DD date of the last visit.
	LastVisitFile = "last_visit"

	// DateLayout is the layout of the last-visit marker.
	DateLayout = "2006-01-02"
)

// ArchivedTask is a completed task moved out of the current list.
type ArchivedTask struct {
	task.Task
	ArchivedAt time.Time `json:"archivedAt"`
}

// Store reads and writes the durable client state. It stores whatever list
// it is given; the task limit is enforced when tasks are added.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a store rooted at dir.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}
}

// TasksPath returns the path of the task list file.
func (s *Store) TasksPath() string {
	return filepath.Join(s.dir, TasksFile)
}

// ArchivePath returns the path of the archive file.
func (s *Store) ArchivePath() string {
	return filepath.Join(s.dir, ArchiveFile)
}

// LastVisitPath returns the path of the last-visit marker.
func (s *Store) LastVisitPath() string {
	return filepath.Join(s.dir, LastVisitFile)
}

// Load returns the stored task list.
// Absent, unreadable or malformed data yields an empty list.
func (s *Store) Load() []task.Task {
	var tasks []task.Task
	if !s.readJSON(s.TasksPath(), &tasks) {
		return []task.Task{}
	}

	// Drop records that could never have been written by Save.
	valid := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.TrimSpace(t.Title) == "" || (t.ID == "" && t.LocalID == "") {
			s.logger.Debug("skipping invalid stored task", "id", t.ID, "localId", t.LocalID)
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

// Save replaces the stored task list with tasks.
func (s *Store) Save(tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return s.writeJSON(s.TasksPath(), tasks)
}

// LoadArchive returns the archived tasks. Malformed data yields an empty list.
func (s *Store) LoadArchive() []ArchivedTask {
	var archived []ArchivedTask
	if !s.readJSON(s.ArchivePath(), &archived) {
		return []ArchivedTask{}
	}
	return archived
}

// AppendArchive adds tasks to the archive, stamped with at.
func (s *Store) AppendArchive(tasks []task.Task, at time.Time) error {
	archived := s.LoadArchive()
	for _, t := range tasks {
		archived = append(archived, ArchivedTask{Task: t.Clone(), ArchivedAt: task.Truncate(at)})
	}
	return s.writeJSON(s.ArchivePath(), archived)
}

// LastVisit returns the stored last-visit date, or "" if none is recorded.
func (s *Store) LastVisit() string {
	data, err := os.ReadFile(s.LastVisitPath())
	if err != nil {
		return ""
	}
	v := strings.TrimSpace(string(data))
	if _, err := time.Parse(DateLayout, v); err != nil {
		s.logger.Debug("ignoring malformed last visit marker", "value", v)
		return ""
	}
	return v
}

// SetLastVisit records day (YYYY-MM-DD) as the last visit.
func (s *Store) SetLastVisit(day string) error {
	return s.writeAtomic(s.LastVisitPath(), []byte(day+"\n"))
}

// readJSON decodes path into v. It reports false when the file is missing
// or cannot be decoded.
func (s *Store) readJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("failed to read local store", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Debug("failed to parse local store", "path", path, "error", err)
		return false
	}
	return true
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return s.writeAtomic(path, data)
}

// writeAtomic writes via a temp file and rename so readers see either the
// previous content or the new one.
func (s *Store) writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
