// Package storage persists every collection as one JSON document on
// disk. Writes go through a temp file and an atomic rename, with a
// .backup copy of the previous document kept for crash recovery.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/NeoKiring/project-management-system/internal/model"
)

// Collection names, also the base names of the document files.
const (
	CollectionProjects      = "projects"
	CollectionPhases        = "phases"
	CollectionProcesses     = "processes"
	CollectionTasks         = "tasks"
	CollectionNotifications = "notifications"
	CollectionSettings      = "settings"
)

// Metadata tracks a version counter per collection and the number of
// backup files written. Bumped and persisted on every save.
type Metadata struct {
	Versions    map[string]int64 `json:"versions"`
	BackupCount int64            `json:"backup_count"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Store reads and writes the JSON documents under a data directory.
// All methods are safe for concurrent use.
type Store struct {
	dir  string
	mu   sync.Mutex
	meta Metadata
}

// New opens (or creates) the data directory and loads metadata.json.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{dir: dir, meta: Metadata{Versions: map[string]int64{}}}
	data, err := os.ReadFile(s.path("metadata"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &s.meta); err != nil {
		// A corrupt metadata file only loses counters, not data.
		s.meta = Metadata{Versions: map[string]int64{}}
	}
	if s.meta.Versions == nil {
		s.meta.Versions = map[string]int64{}
	}
	return s, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string { return s.dir }

// Metadata returns a copy of the current counters.
func (s *Store) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := s.meta
	meta.Versions = make(map[string]int64, len(s.meta.Versions))
	for k, v := range s.meta.Versions {
		meta.Versions[k] = v
	}
	return meta
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) backupPath(name string) string {
	return s.path(name) + ".backup"
}

// readDoc loads a collection document, falling back to the backup copy
// when the primary file is missing or unparseable. A missing collection
// is not an error; it returns (nil, nil).
func (s *Store) readDoc(name string, out any) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if err == nil {
		if jsonErr := json.Unmarshal(data, out); jsonErr == nil {
			return true, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	backup, backupErr := os.ReadFile(s.backupPath(name))
	if backupErr != nil {
		if err == nil {
			// Primary existed but did not parse and there is no backup.
			return false, fmt.Errorf("parse %s: corrupt document and no backup", name)
		}
		return false, nil
	}
	if jsonErr := json.Unmarshal(backup, out); jsonErr != nil {
		return false, fmt.Errorf("parse %s backup: %w", name, jsonErr)
	}
	return true, nil
}

// writeDoc atomically replaces a collection document: the previous
// version is copied to .backup, the new document lands via temp file
// and rename, then the metadata counters are bumped and flushed.
func (s *Store) writeDoc(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	target := s.path(name)
	if prev, readErr := os.ReadFile(target); readErr == nil {
		if err := atomicWrite(s.backupPath(name), prev); err != nil {
			return fmt.Errorf("write %s backup: %w", name, err)
		}
		s.meta.BackupCount++
	}
	if err := atomicWrite(target, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.meta.Versions[name]++
	s.meta.UpdatedAt = time.Now().UTC()
	metaData, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := atomicWrite(s.path("metadata"), metaData); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// atomicWrite writes data to a temp file in the target's directory and
// renames it into place.
func atomicWrite(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// loadCollection reads a whole collection into an id-keyed map.
// An absent document yields an empty map.
func loadCollection[T any](s *Store, name string) (map[string]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollectionLocked[T](s, name)
}

func loadCollectionLocked[T any](s *Store, name string) (map[string]*T, error) {
	items := map[string]*T{}
	if _, err := s.readDoc(name, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = map[string]*T{}
	}
	return items, nil
}

// saveCollection overwrites a whole collection document.
func saveCollection[T any](s *Store, name string, items map[string]*T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(name, items)
}

// saveOne updates a single entity via read-modify-write.
func saveOne[T any](s *Store, name, id string, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadCollectionLocked[T](s, name)
	if err != nil {
		return err
	}
	items[id] = item
	return s.writeDoc(name, items)
}

// deleteOne removes an entity, reporting whether it existed.
func deleteOne[T any](s *Store, name, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadCollectionLocked[T](s, name)
	if err != nil {
		return false, err
	}
	if _, ok := items[id]; !ok {
		return false, nil
	}
	delete(items, id)
	return true, s.writeDoc(name, items)
}

func (s *Store) LoadProjects() (map[string]*model.Project, error) {
	return loadCollection[model.Project](s, CollectionProjects)
}

func (s *Store) SaveProjects(items map[string]*model.Project) error {
	return saveCollection(s, CollectionProjects, items)
}

func (s *Store) SaveProject(p *model.Project) error {
	return saveOne(s, CollectionProjects, p.ID, p)
}

func (s *Store) DeleteProject(id string) (bool, error) {
	return deleteOne[model.Project](s, CollectionProjects, id)
}

func (s *Store) LoadPhases() (map[string]*model.Phase, error) {
	return loadCollection[model.Phase](s, CollectionPhases)
}

func (s *Store) SavePhases(items map[string]*model.Phase) error {
	return saveCollection(s, CollectionPhases, items)
}

func (s *Store) SavePhase(p *model.Phase) error {
	return saveOne(s, CollectionPhases, p.ID, p)
}

func (s *Store) DeletePhase(id string) (bool, error) {
	return deleteOne[model.Phase](s, CollectionPhases, id)
}

func (s *Store) LoadProcesses() (map[string]*model.Process, error) {
	return loadCollection[model.Process](s, CollectionProcesses)
}

func (s *Store) SaveProcesses(items map[string]*model.Process) error {
	return saveCollection(s, CollectionProcesses, items)
}

func (s *Store) SaveProcess(p *model.Process) error {
	return saveOne(s, CollectionProcesses, p.ID, p)
}

func (s *Store) DeleteProcess(id string) (bool, error) {
	return deleteOne[model.Process](s, CollectionProcesses, id)
}

func (s *Store) LoadTasks() (map[string]*model.Task, error) {
	return loadCollection[model.Task](s, CollectionTasks)
}

func (s *Store) SaveTasks(items map[string]*model.Task) error {
	return saveCollection(s, CollectionTasks, items)
}

func (s *Store) SaveTask(t *model.Task) error {
	return saveOne(s, CollectionTasks, t.ID, t)
}

func (s *Store) DeleteTask(id string) (bool, error) {
	return deleteOne[model.Task](s, CollectionTasks, id)
}

func (s *Store) LoadNotifications() (map[string]*model.Notification, error) {
	return loadCollection[model.Notification](s, CollectionNotifications)
}

func (s *Store) SaveNotifications(items map[string]*model.Notification) error {
	return saveCollection(s, CollectionNotifications, items)
}

func (s *Store) SaveNotification(n *model.Notification) error {
	return saveOne(s, CollectionNotifications, n.ID, n)
}

func (s *Store) DeleteNotification(id string) (bool, error) {
	return deleteOne[model.Notification](s, CollectionNotifications, id)
}

// LoadSettings reads the notification settings document, returning the
// defaults when none has been saved yet.
func (s *Store) LoadSettings() (*model.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := model.DefaultNotificationSettings()
	found, err := s.readDoc(CollectionSettings, settings)
	if err != nil {
		return nil, err
	}
	if !found {
		return model.DefaultNotificationSettings(), nil
	}
	return settings, nil
}

// SaveSettings overwrites the settings document.
func (s *Store) SaveSettings(settings *model.NotificationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(CollectionSettings, settings)
}
