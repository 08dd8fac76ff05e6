// Package material stores the exhibit materials shown next to the quizzes.
package material

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/starquake/kioskquiz/internal/jsonfile"
	"github.com/starquake/kioskquiz/internal/logging"
)

var (
	// ErrMaterialNotFound is returned when a material does not exist.
	ErrMaterialNotFound = errors.New("material not found")
	// ErrIDConflict is returned when an update would give a material the ID of another one.
	ErrIDConflict = errors.New("material id already in use")
)

// Material is an exhibit material.
type Material struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Patch holds the fields of a material to change. Nil fields are left untouched.
type Patch struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Category    *string `json:"category"`
}

// Apply copies the set fields of p, except the ID, onto m.
func (p Patch) Apply(m *Material) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Image != nil {
		m.Image = *p.Image
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
}

// Store represents a store for materials.
type Store interface {
	List(ctx context.Context) ([]*Material, error)
	Get(ctx context.Context, id int64) (*Material, error)
	Create(ctx context.Context, p Patch) (*Material, error)
	Update(ctx context.Context, id int64, p Patch) (*Material, error)
	Delete(ctx context.Context, id int64) error
}

// FileStore keeps all materials in a single JSON array file.
type FileStore struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewFileStore creates a FileStore backed by the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger, now: time.Now}
}

// WithClock replaces the clock used to generate IDs.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s.now = now

	return s
}

// List returns all materials in file order.
func (s *FileStore) List(ctx context.Context) ([]*Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Get returns the material with the given ID.
func (s *FileStore) Get(ctx context.Context, id int64) (*Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(materials, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrMaterialNotFound, id)
	}

	return materials[i], nil
}

// Create appends a material built from p. Its ID is the current time in
// Unix milliseconds, moved past the highest existing ID when needed.
func (s *FileStore) Create(ctx context.Context, p Patch) (*Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	m := &Material{ID: s.nextID(materials)}
	p.Apply(m)
	materials = append(materials, m)

	if err = s.save(ctx, materials); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "material created", slog.Int64("materialId", m.ID))

	return m, nil
}

// Update merges p into the material with the given ID. A non-zero p.ID that
// differs from id renames the material, unless another material has that ID.
func (s *FileStore) Update(ctx context.Context, id int64, p Patch) (*Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(materials, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrMaterialNotFound, id)
	}

	m := materials[i]
	if p.ID != nil && *p.ID != 0 && *p.ID != id {
		if indexOf(materials, *p.ID) >= 0 {
			return nil, fmt.Errorf("%w: %d", ErrIDConflict, *p.ID)
		}
		m.ID = *p.ID
	}
	p.Apply(m)

	if err = s.save(ctx, materials); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "material updated", slog.Int64("materialId", m.ID))

	return m, nil
}

// Delete removes the material with the given ID.
func (s *FileStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials, err := s.load(ctx)
	if err != nil {
		return err
	}

	i := indexOf(materials, id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrMaterialNotFound, id)
	}

	if err = s.save(ctx, slices.Delete(materials, i, i+1)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "material deleted", slog.Int64("materialId", id))

	return nil
}

func (s *FileStore) nextID(materials []*Material) int64 {
	id := s.now().UnixMilli()
	for _, m := range materials {
		if m.ID >= id {
			id = m.ID + 1
		}
	}

	return id
}

func (s *FileStore) load(ctx context.Context) ([]*Material, error) {
	var materials []*Material
	if err := jsonfile.Read(s.path, &materials); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*Material{}, nil
		}
		s.logger.ErrorContext(ctx, "error reading materials", slog.String("path", s.path), logging.ErrAttr(err))

		return nil, fmt.Errorf("failed to read materials: %w", err)
	}
	if materials == nil {
		materials = []*Material{}
	}

	return slices.DeleteFunc(materials, func(m *Material) bool { return m == nil }), nil
}

func (s *FileStore) save(ctx context.Context, materials []*Material) error {
	if err := jsonfile.Write(s.path, materials); err != nil {
		s.logger.ErrorContext(ctx, "error writing materials", slog.String("path", s.path), logging.ErrAttr(err))

		return fmt.Errorf("failed to write materials: %w", err)
	}

	return nil
}

func indexOf(materials []*Material, id int64) int {
	return slices.IndexFunc(materials, func(m *Material) bool { return m.ID == id })
}
