package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrygo/recall/internal/errors"
	"github.com/hrygo/recall/internal/profile"
)

// Store provides database access to the first-party memory records. Every
// read and mutation is scoped by the owning user; a caller can never address
// another owner's record by id.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// ListMemoriesByCreator returns all memories owned by creatorID, newest first.
func (s *Store) ListMemoriesByCreator(ctx context.Context, creatorID int32) ([]*Memory, error) {
	return s.driver.ListMemories(ctx, &FindMemory{CreatorID: &creatorID})
}

// GetMemory returns the memory with the given id owned by creatorID, or nil
// when no such record exists.
func (s *Store) GetMemory(ctx context.Context, id string, creatorID int32) (*Memory, error) {
	list, err := s.driver.ListMemories(ctx, &FindMemory{ID: &id, CreatorID: &creatorID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// CreateMemory inserts a new memory record for creatorID. Content must be
// non-empty after trimming.
func (s *Store) CreateMemory(ctx context.Context, creatorID int32, content string) (*Memory, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.InvalidArgument("content must not be empty")
	}

	now := time.Now().Unix()
	create := &Memory{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		Content:   content,
		CreatedTs: now,
		UpdatedTs: now,
	}
	return s.driver.CreateMemory(ctx, create)
}

// UpdateMemoryContent replaces the content of the owner-scoped record and
// bumps its UpdatedTs. Returns a NOT_FOUND error when no record matches.
func (s *Store) UpdateMemoryContent(ctx context.Context, id string, creatorID int32, content string) (*Memory, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.InvalidArgument("content must not be empty")
	}

	memory, err := s.driver.UpdateMemory(ctx, &UpdateMemory{
		ID:        id,
		CreatorID: creatorID,
		Content:   content,
		UpdatedTs: time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}
	if memory == nil {
		return nil, errors.NotFoundf("memory %s not found", id)
	}
	return memory, nil
}

// DeleteMemory deletes a single owner-scoped record. Returns false when no
// record matched.
func (s *Store) DeleteMemory(ctx context.Context, id string, creatorID int32) (bool, error) {
	rows, err := s.driver.DeleteMemories(ctx, &DeleteMemory{ID: &id, CreatorID: &creatorID})
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// DeleteMemoriesByCreator deletes all records owned by creatorID. Returns
// false when the owner had no records.
func (s *Store) DeleteMemoriesByCreator(ctx context.Context, creatorID int32) (bool, error) {
	rows, err := s.driver.DeleteMemories(ctx, &DeleteMemory{CreatorID: &creatorID})
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
