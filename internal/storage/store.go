package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/orbview/internal/session"
)

const bookmarkDir = "bookmarks"

// Store keeps bookmarks as JSON files under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(filepath.Join(s.baseDir, bookmarkDir), 0755)
}

// Pose is the camera part of a bookmark.
type Pose struct {
	Center    [3]float64 `json:"center"`
	Distance  float64    `json:"distance"`
	Azimuth   float64    `json:"azimuth"`
	Elevation float64    `json:"elevation"`
}

// Bookmark records a playback position worth returning to.
type Bookmark struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Frame     int       `json:"frame"`
	Step      int       `json:"step"`
	Time      float64   `json:"time"`
	Selected  string    `json:"selected,omitempty"`
	Camera    Pose      `json:"camera"`
	Timestamp time.Time `json:"timestamp"`
}

// FromView captures v as an unsaved bookmark.
func FromView(name, source string, v session.View) Bookmark {
	b := Bookmark{
		Name:   name,
		Source: source,
		Frame:  v.Frame,
		Step:   v.Step,
		Time:   v.Time,
		Camera: Pose{
			Center:    [3]float64{v.Camera.Center.X, v.Camera.Center.Y, v.Camera.Center.Z},
			Distance:  v.Camera.Distance,
			Azimuth:   v.Camera.Azimuth,
			Elevation: v.Camera.Elevation,
		},
	}
	if v.HasInfo {
		b.Selected = v.Selected.Name
	}
	return b
}

// Save assigns an ID and timestamp and writes b.
func (s *Store) Save(b Bookmark) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	b.ID = uuid.NewString()
	b.Timestamp = time.Now()
	if b.Name == "" {
		b.Name = fmt.Sprintf("step-%d", b.Step)
	}

	f, err := os.Create(s.path(b.ID))
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return "", err
	}
	return b.ID, nil
}

// List returns every readable bookmark, oldest first.
func (s *Store) List() ([]Bookmark, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, bookmarkDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []Bookmark{}, nil
		}
		return nil, err
	}

	marks := make([]Bookmark, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, bookmarkDir, entry.Name()))
		if err != nil {
			continue
		}
		var b Bookmark
		if err := json.Unmarshal(data, &b); err != nil {
			continue
		}
		marks = append(marks, b)
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].Timestamp.Before(marks[j].Timestamp) })
	return marks, nil
}

func (s *Store) Load(id string) (*Bookmark, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("storage: bad bookmark id %q: %w", id, err)
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}
	var b Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("storage: bad bookmark id %q: %w", id, err)
	}
	return os.Remove(s.path(id))
}

func (s *Store) path(id string) string {
	return filepath.Join(s.baseDir, bookmarkDir, id+".json")
}
