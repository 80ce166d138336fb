package color

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Speshl/gorrc_iracer/internal/models"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("calibration not found")

type Store interface {
	Load() ([]models.ColorTrigger, error)
	Save([]models.ColorTrigger) error
}

type calibrationFile struct {
	Triggers []models.ColorTrigger `yaml:"triggers"`
}

// FileStore keeps the trigger list in a yaml file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

func (s *FileStore) Load() ([]models.ColorTrigger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("error reading calibration file - %w", err)
	}

	file := calibrationFile{}
	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("error decoding calibration file %s - %w", s.path, err)
	}
	return file.Triggers, nil
}

// Save replaces the file through a temp file so a power cut never leaves half a calibration.
func (s *FileStore) Save(triggers []models.ColorTrigger) error {
	data, err := yaml.Marshal(calibrationFile{Triggers: triggers})
	if err != nil {
		return fmt.Errorf("error encoding calibration - %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("error creating calibration temp file - %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("error writing calibration temp file - %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("error closing calibration temp file - %w", err)
	}

	err = os.Rename(tmp.Name(), s.path)
	if err != nil {
		return fmt.Errorf("error replacing calibration file - %w", err)
	}
	return nil
}

// MemoryStore keeps the trigger list in memory.
type MemoryStore struct {
	lock     sync.Mutex
	triggers []models.ColorTrigger
	saves    int
	SaveErr  error
}

func NewMemoryStore(triggers []models.ColorTrigger) *MemoryStore {
	return &MemoryStore{
		triggers: triggers,
	}
}

func (s *MemoryStore) Load() ([]models.ColorTrigger, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.triggers == nil {
		return nil, ErrNotFound
	}
	triggers := make([]models.ColorTrigger, len(s.triggers))
	copy(triggers, s.triggers)
	return triggers, nil
}

func (s *MemoryStore) Save(triggers []models.ColorTrigger) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.triggers = make([]models.ColorTrigger, len(triggers))
	copy(s.triggers, triggers)
	s.saves++
	return nil
}

func (s *MemoryStore) Saves() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.saves
}
