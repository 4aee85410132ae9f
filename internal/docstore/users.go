package docstore

import (
	"context"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/store"
)

func (s *Store) users() ([]domain.User, error) {
	var us []domain.User
	err := s.load(keyUsers, &us)
	return us, err
}

// CreateUser implements store.Store.
func (s *Store) CreateUser(ctx context.Context, name, about, subtitle, profileImage string) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, store.WriteError("create user", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	us, err := s.users()
	if err != nil {
		return 0, store.WriteError("create user", err)
	}
	c, err := s.counters()
	if err != nil {
		return 0, store.WriteError("create user", err)
	}

	id := c.LastUserID + 1
	for _, u := range us {
		if u.ID >= id {
			id = u.ID + 1
		}
	}
	c.LastUserID = id

	now := s.now()
	us = append(us, domain.User{
		ID:           id,
		Name:         name,
		About:        about,
		Subtitle:     subtitle,
		ProfileImage: profileImage,
		LastSeen:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err := s.save(map[string]any{keyUsers: us, keyCounters: c}); err != nil {
		return 0, store.WriteError("create user", err)
	}
	return id, nil
}

// GetUser implements store.Store.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if err := alive(ctx); err != nil {
		return nil, store.ReadError("get user", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	us, err := s.users()
	if err != nil {
		return nil, store.ReadError("get user", err)
	}
	for i := range us {
		if us[i].ID == id {
			u := us[i]
			return &u, nil
		}
	}
	return nil, nil
}

// CountUsers implements store.Store.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, store.ReadError("count users", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	us, err := s.users()
	if err != nil {
		return 0, store.ReadError("count users", err)
	}
	return int64(len(us)), nil
}

// UpdateUser implements store.Store.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}
	if err := alive(ctx); err != nil {
		return false, store.WriteError("update user", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	us, err := s.users()
	if err != nil {
		return false, store.WriteError("update user", err)
	}
	idx := -1
	for i := range us {
		if us[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	patch.Apply(&us[idx], s.now())
	if err := s.save(map[string]any{keyUsers: us}); err != nil {
		return false, store.WriteError("update user", err)
	}
	return true, nil
}
