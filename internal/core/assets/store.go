package assets

import (
	"fmt"

	"github.com/google/uuid"
)

// Store owns every registered asset, keyed by id. Ids are assigned at
// registration and stay opaque to callers.
type Store struct {
	meshes    map[uuid.UUID]*Mesh
	materials map[uuid.UUID]*Material
}

func NewStore() *Store {
	return &Store{
		meshes:    make(map[uuid.UUID]*Mesh),
		materials: make(map[uuid.UUID]*Material),
	}
}

// AddMesh registers a mesh and returns its assigned id.
func (s *Store) AddMesh(m *Mesh) uuid.UUID {
	m.id = uuid.New()
	s.meshes[m.id] = m
	return m.id
}

// AddMaterial registers a material and returns its assigned id.
func (s *Store) AddMaterial(m *Material) uuid.UUID {
	m.id = uuid.New()
	s.materials[m.id] = m
	return m.id
}

func (s *Store) Mesh(id uuid.UUID) (*Mesh, error) {
	m, ok := s.meshes[id]
	if !ok {
		return nil, fmt.Errorf("mesh %s: %w", id, ErrAssetNotFound)
	}
	return m, nil
}

func (s *Store) Material(id uuid.UUID) (*Material, error) {
	m, ok := s.materials[id]
	if !ok {
		return nil, fmt.Errorf("material %s: %w", id, ErrAssetNotFound)
	}
	return m, nil
}

// Release frees every registered asset and empties the store.
func (s *Store) Release() {
	for _, m := range s.meshes {
		m.Release()
	}
	for _, m := range s.materials {
		m.Release()
	}
	s.meshes = make(map[uuid.UUID]*Mesh)
	s.materials = make(map[uuid.UUID]*Material)
}
