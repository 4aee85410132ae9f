// Package storetest is the shared contract suite for store.Store
// implementations. Every backend runs the same tests from its own _test.go
// file so behavior cannot drift between them.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/store"
)

// Opener opens a store at one fixed location. Calling it again after the
// previous store was closed must reopen the same data, which is how the
// suite simulates a process restart.
type Opener func(t *testing.T) store.Store

// Run executes the contract suite. newOpener is called once per subtest and
// must return an Opener bound to a fresh, empty location.
func Run(t *testing.T, newOpener func(t *testing.T) Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, open Opener)
	}{
		{"CreateAndGetUser", testCreateAndGetUser},
		{"GetUserIsIdempotent", testGetUserIdempotent},
		{"UpdateUserPartial", testUpdateUserPartial},
		{"UpdateUserEmptyOrMissing", testUpdateUserEmptyOrMissing},
		{"InsertMessageRejectsPlaceholderStatus", testInsertRejectsSending},
		{"UpdateMessageStatus", testUpdateMessageStatus},
		{"UpdateMessageStatusMissingIsNoop", testUpdateMissingIsNoop},
		{"ListMessagesOrderAndJoin", testListOrderAndJoin},
		{"DeleteMessage", testDeleteMessage},
		{"IDsMonotonicAcrossRestart", testIDsAcrossRestart},
		{"ConcurrentInsertsGetDistinctIDs", testConcurrentInserts},
		{"MessageStats", testMessageStats},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newOpener(t))
		})
	}
}

// openClosed opens a store that is closed when the test ends.
func openClosed(t *testing.T, open Opener) store.Store {
	t.Helper()
	s := open(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func str(s string) *string { return &s }

func testCreateAndGetUser(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	id, err := s.CreateUser(ctx, "You", "Hey there!", "online", "file:///me.png")
	require.NoError(t, err)
	require.Positive(t, id)

	n, err = s.CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	u, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, id, u.ID)
	require.Equal(t, "You", u.Name)
	require.Equal(t, "Hey there!", u.About)
	require.Equal(t, "online", u.Subtitle)
	require.Equal(t, "file:///me.png", u.ProfileImage)
	require.False(t, u.LastSeen.IsZero())

	missing, err := s.GetUser(ctx, id+100)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func testGetUserIdempotent(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	id, err := s.CreateUser(ctx, "You", "", "", "")
	require.NoError(t, err)

	a, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	b, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID)
	require.Equal(t, a.Name, b.Name)
	require.True(t, a.LastSeen.Equal(b.LastSeen))
	require.True(t, a.CreatedAt.Equal(b.CreatedAt))
}

func testUpdateUserPartial(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	id, err := s.CreateUser(ctx, "You", "old", "sub", "file:///a.png")
	require.NoError(t, err)
	before, err := s.GetUser(ctx, id)
	require.NoError(t, err)

	ok, err := s.UpdateUser(ctx, id, domain.UserPatch{About: str("x")})
	require.NoError(t, err)
	require.True(t, ok)

	after, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "x", after.About)
	require.Equal(t, before.Name, after.Name)
	require.Equal(t, before.Subtitle, after.Subtitle)
	require.Equal(t, before.ProfileImage, after.ProfileImage)
	require.False(t, after.LastSeen.Before(before.LastSeen))
}

func testUpdateUserEmptyOrMissing(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	id, err := s.CreateUser(ctx, "You", "", "", "")
	require.NoError(t, err)

	ok, err := s.UpdateUser(ctx, id, domain.UserPatch{})
	require.NoError(t, err)
	require.False(t, ok, "empty patch must report false")

	ok, err = s.UpdateUser(ctx, id+42, domain.UserPatch{Name: str("Ghost")})
	require.NoError(t, err)
	require.False(t, ok, "unknown id must report false")
}

func testInsertRejectsSending(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	_, err := s.InsertMessage(ctx, "hi", "2025-01-01T00:00:00Z", 1, domain.StatusSending)
	require.ErrorIs(t, err, store.ErrStatusNotPersistable)

	views, err := s.ListMessages(ctx)
	require.NoError(t, err)
	require.Empty(t, views)
}

func testUpdateMessageStatus(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	uid, err := s.CreateUser(ctx, "You", "", "", "")
	require.NoError(t, err)
	id, err := s.InsertMessage(ctx, "hi", "2025-01-01T00:00:00Z", uid, domain.StatusSent)
	require.NoError(t, err)

	require.NoError(t, s.UpdateMessageStatus(ctx, id, domain.StatusDelivered))

	views, err := s.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, domain.StatusDelivered, views[0].Status)
	require.Equal(t, "2025-01-01T00:00:00Z", views[0].Timestamp, "timestamp is immutable")

	err = s.UpdateMessageStatus(ctx, id, domain.StatusSending)
	require.ErrorIs(t, err, store.ErrStatusNotPersistable)
}

func testUpdateMissingIsNoop(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	require.NoError(t, s.UpdateMessageStatus(ctx, 12345, domain.StatusRead))

	views, err := s.ListMessages(ctx)
	require.NoError(t, err)
	require.Empty(t, views)
}

func testListOrderAndJoin(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	uid, err := s.CreateUser(ctx, "You", "", "", "file:///me.png")
	require.NoError(t, err)

	var ids []int64
	for _, text := range []string{"one", "two", "three"} {
		id, err := s.InsertMessage(ctx, text, "2025-01-01T00:00:00Z", uid, domain.StatusSent)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	orphan, err := s.InsertMessage(ctx, "ghost", "2025-01-01T00:00:00Z", uid+99, domain.StatusRead)
	require.NoError(t, err)

	views, err := s.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, views, 4)

	for i := 1; i < len(views); i++ {
		require.False(t, views[i].CreatedAt.Before(views[i-1].CreatedAt), "must be ordered by created_at")
	}
	for i, id := range ids {
		require.Equal(t, id, views[i].ID)
		require.NotNil(t, views[i].SenderName)
		require.Equal(t, "You", *views[i].SenderName)
		require.NotNil(t, views[i].SenderProfileImage)
		require.Equal(t, "file:///me.png", *views[i].SenderProfileImage)
	}

	last := views[3]
	require.Equal(t, orphan, last.ID)
	require.Nil(t, last.SenderName)
	require.Nil(t, last.SenderProfileImage)

	// The join reflects the current profile.
	ok, err := s.UpdateUser(ctx, uid, domain.UserPatch{Name: str("Me")})
	require.NoError(t, err)
	require.True(t, ok)
	views, err = s.ListMessages(ctx)
	require.NoError(t, err)
	require.Equal(t, "Me", *views[0].SenderName)
}

func testDeleteMessage(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	a, err := s.InsertMessage(ctx, "a", "2025-01-01T00:00:00Z", 1, domain.StatusSent)
	require.NoError(t, err)
	b, err := s.InsertMessage(ctx, "b", "2025-01-01T00:00:00Z", 1, domain.StatusSent)
	require.NoError(t, err)

	ok, err := s.DeleteMessage(ctx, a)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.DeleteMessage(ctx, a)
	require.NoError(t, err)
	require.False(t, ok, "second delete finds nothing")

	ok, err = s.DeleteMessage(ctx, 9999)
	require.NoError(t, err)
	require.False(t, ok)

	views, err := s.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, b, views[0].ID)
}

func testIDsAcrossRestart(t *testing.T, open Opener) {
	ctx := context.Background()

	s := open(t)
	var last int64
	for i := 0; i < 3; i++ {
		id, err := s.InsertMessage(ctx, "m", "2025-01-01T00:00:00Z", 1, domain.StatusSent)
		require.NoError(t, err)
		require.Greater(t, id, last)
		last = id
	}
	uid, err := s.CreateUser(ctx, "You", "", "", "")
	require.NoError(t, err)

	// Deleting the newest message must not make its id available again.
	ok, err := s.DeleteMessage(ctx, last)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Close())

	s = openClosed(t, open)
	for i := 0; i < 3; i++ {
		id, err := s.InsertMessage(ctx, "m", "2025-01-01T00:00:00Z", 1, domain.StatusSent)
		require.NoError(t, err)
		require.Greater(t, id, last)
		last = id
	}
	uid2, err := s.CreateUser(ctx, "Other", "", "", "")
	require.NoError(t, err)
	require.Greater(t, uid2, uid)

	u, err := s.GetUser(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, u, "data survives reopen")
}

func testConcurrentInserts(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]struct{}, n)
	)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.InsertMessage(ctx, "m", "2025-01-01T00:00:00Z", 1, domain.StatusSent)
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, seen, n)
}

func testMessageStats(t *testing.T, open Opener) {
	ctx := context.Background()
	s := openClosed(t, open)

	st, err := s.MessageStats(ctx)
	require.NoError(t, err)
	require.Zero(t, st.Count)
	require.Nil(t, st.LastChanged)

	id, err := s.InsertMessage(ctx, "m", "2025-01-01T00:00:00Z", 1, domain.StatusSent)
	require.NoError(t, err)
	st, err = s.MessageStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, st.Count)
	require.NotNil(t, st.LastChanged)
	first := *st.LastChanged

	require.NoError(t, s.UpdateMessageStatus(ctx, id, domain.StatusRead))
	st, err = s.MessageStats(ctx)
	require.NoError(t, err)
	require.False(t, st.LastChanged.Before(first), "status writes move LastChanged forward")
}
