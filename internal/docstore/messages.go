package docstore

import (
	"context"
	"sort"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/store"
)

func (s *Store) messages() ([]domain.Message, error) {
	var ms []domain.Message
	err := s.load(keyMessages, &ms)
	return ms, err
}

// InsertMessage implements store.Store.
func (s *Store) InsertMessage(ctx context.Context, text, timestamp string, userID int64, status domain.Status) (int64, error) {
	if err := store.CheckPersistable(status); err != nil {
		return 0, err
	}
	if err := alive(ctx); err != nil {
		return 0, store.WriteError("insert message", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.messages()
	if err != nil {
		return 0, store.WriteError("insert message", err)
	}
	c, err := s.counters()
	if err != nil {
		return 0, store.WriteError("insert message", err)
	}

	id := c.LastMessageID + 1
	for _, m := range ms {
		if m.ID >= id {
			id = m.ID + 1
		}
	}
	c.LastMessageID = id

	now := s.now()
	ms = append(ms, domain.Message{
		ID:        id,
		Text:      text,
		Timestamp: timestamp,
		Status:    status,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err := s.save(map[string]any{keyMessages: ms, keyCounters: c}); err != nil {
		return 0, store.WriteError("insert message", err)
	}
	return id, nil
}

// UpdateMessageStatus implements store.Store. Unknown ids are ignored.
func (s *Store) UpdateMessageStatus(ctx context.Context, id int64, status domain.Status) error {
	if err := store.CheckPersistable(status); err != nil {
		return err
	}
	if err := alive(ctx); err != nil {
		return store.WriteError("update message status", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.messages()
	if err != nil {
		return store.WriteError("update message status", err)
	}
	for i := range ms {
		if ms[i].ID != id {
			continue
		}
		ms[i].Status = status
		ms[i].UpdatedAt = s.now()
		if err := s.save(map[string]any{keyMessages: ms}); err != nil {
			return store.WriteError("update message status", err)
		}
		return nil
	}
	return nil
}

// ListMessages implements store.Store.
func (s *Store) ListMessages(ctx context.Context) ([]domain.MessageView, error) {
	if err := alive(ctx); err != nil {
		return nil, store.ReadError("list messages", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, err := s.messages()
	if err != nil {
		return nil, store.ReadError("list messages", err)
	}
	us, err := s.users()
	if err != nil {
		return nil, store.ReadError("list messages", err)
	}

	byID := make(map[int64]domain.User, len(us))
	for _, u := range us {
		byID[u.ID] = u
	}

	out := make([]domain.MessageView, 0, len(ms))
	for _, m := range ms {
		v := domain.MessageView{Message: m}
		if u, ok := byID[m.UserID]; ok {
			name, img := u.Name, u.ProfileImage
			v.SenderName = &name
			v.SenderProfileImage = &img
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteMessage implements store.Store.
func (s *Store) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	if err := alive(ctx); err != nil {
		return false, store.WriteError("delete message", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.messages()
	if err != nil {
		return false, store.WriteError("delete message", err)
	}
	kept := ms[:0]
	for _, m := range ms {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(ms) {
		return false, nil
	}
	if err := s.save(map[string]any{keyMessages: kept}); err != nil {
		return false, store.WriteError("delete message", err)
	}
	return true, nil
}

// MessageStats implements store.Store.
func (s *Store) MessageStats(ctx context.Context) (domain.Stats, error) {
	if err := alive(ctx); err != nil {
		return domain.Stats{}, store.ReadError("message stats", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, err := s.messages()
	if err != nil {
		return domain.Stats{}, store.ReadError("message stats", err)
	}
	st := domain.Stats{Count: int64(len(ms))}
	for i := range ms {
		if st.LastChanged == nil || ms[i].UpdatedAt.After(*st.LastChanged) {
			t := ms[i].UpdatedAt
			st.LastChanged = &t
		}
	}
	return st, nil
}
