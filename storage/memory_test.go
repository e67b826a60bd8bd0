package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/davidalvz/pixelmuse/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, store *MemStore, username, email string) *models.User {
	t.Helper()
	user, err := store.CreateUser(&models.User{Username: username, Email: email})
	require.NoError(t, err)
	return user
}

func TestMemStore_CreateUserDefaults(t *testing.T) {
	store := NewMemStore()

	user := newUser(t, store, "alice", "a@x.com")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, DefaultCredits, user.Credits)
	assert.Nil(t, user.Preferences)

	fetched, err := store.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, fetched)
}

func TestMemStore_UserUniqueness(t *testing.T) {
	store := NewMemStore()
	newUser(t, store, "alice", "a@x.com")

	_, err := store.CreateUser(&models.User{Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.CreateUser(&models.User{Username: "bob", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemStore_SecondaryLookups(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	byName, err := store.GetUserByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := store.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	// Absent is not an error for secondary lookups.
	missing, err := store.GetUserByUsername("nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.GetUser("missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_DeductCredits(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	remaining, err := store.DeductCredits(user.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 116, remaining)

	require.NoError(t, store.UpdateUserCredits(user.ID, 2))
	remaining, err = store.DeductCredits(user.ID, 4)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, 2, remaining)

	fetched, err := store.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Credits, "failed deduction must not mutate the balance")

	_, err = store.DeductCredits("missing-id", 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_DeductCreditsConcurrent(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")
	require.NoError(t, store.UpdateUserCredits(user.ID, 40))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.DeductCredits(user.ID, 4); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	fetched, err := store.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, wins, "exactly 10 deductions of 4 fit into 40 credits")
	assert.Equal(t, 0, fetched.Credits)
	assert.GreaterOrEqual(t, fetched.Credits, 0, "balance must never go negative")
}

func TestMemStore_UpdateUserPreferences(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	prefs := &models.Preferences{Version: 1, StyleDescription: "soft pastel light"}
	require.NoError(t, store.UpdateUserPreferences(user.ID, prefs))

	fetched, err := store.GetUser(user.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Preferences)
	assert.Equal(t, "soft pastel light", fetched.Preferences.StyleDescription)

	assert.ErrorIs(t, store.UpdateUserPreferences("missing-id", prefs), ErrNotFound)
}

func TestMemStore_SavedStyleRoundTrip(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	created, err := store.CreateSavedStyle(&models.SavedStyle{
		UserID:     user.ID,
		Name:       "Moody portraits",
		BaseStyle:  "editorial",
		Refinement: "low-key lighting",
		Tags:       []string{"portrait", "dark"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 0, created.UsageCount)
	assert.False(t, created.CreatedAt.IsZero())

	require.NoError(t, store.IncrementStyleUsage(created.ID))
	require.NoError(t, store.IncrementStyleUsage(created.ID))
	require.NoError(t, store.IncrementStyleUsage(created.ID))

	fetched, err := store.GetSavedStyle(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
	assert.Equal(t, created.BaseStyle, fetched.BaseStyle)
	assert.Equal(t, created.Refinement, fetched.Refinement)
	assert.Equal(t, created.Tags, fetched.Tags)
	assert.Equal(t, 3, fetched.UsageCount, "usage count equals the number of increments")

	// Incrementing a vanished style is a no-op, not an error.
	require.NoError(t, store.IncrementStyleUsage("missing-id"))
}

func TestMemStore_UpdateSavedStylePartial(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	created, err := store.CreateSavedStyle(&models.SavedStyle{
		UserID:    user.ID,
		Name:      "Original",
		BaseStyle: "anime",
	})
	require.NoError(t, err)

	name := "Renamed"
	updated, err := store.UpdateSavedStyle(created.ID, SavedStyleUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "anime", updated.BaseStyle, "untouched fields survive a partial update")

	_, err = store.UpdateSavedStyle("missing-id", SavedStyleUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_DeleteSavedStyleIdempotent(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	created, err := store.CreateSavedStyle(&models.SavedStyle{
		UserID:    user.ID,
		Name:      "Doomed",
		BaseStyle: "dreamcore",
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteSavedStyle(created.ID))
	require.NoError(t, store.DeleteSavedStyle(created.ID))
	require.NoError(t, store.DeleteSavedStyle("never-existed"))

	_, err = store.GetSavedStyle(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_HistoryOrderingAndLimit(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.CreateImageHistory(&models.ImageHistory{
			UserID:      user.ID,
			Prompt:      "a red fox",
			Style:       "realism",
			Dimension:   "1:1",
			ImageURLs:   []string{"https://img.example/fox.png"},
			GeneratedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := store.GetImageHistory(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, base.Add(4*time.Minute), records[0].GeneratedAt)
	assert.Equal(t, base.Add(3*time.Minute), records[1].GeneratedAt)

	all, err := store.GetImageHistory(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, !all[i].GeneratedAt.After(all[i-1].GeneratedAt),
			"history must come back newest first")
	}

	other := newUser(t, store, "bob", "b@x.com")
	none, err := store.GetImageHistory(other.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemStore_HistoryItemLookup(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	created, err := store.CreateImageHistory(&models.ImageHistory{
		UserID:    user.ID,
		Prompt:    "a red fox",
		Style:     "realism",
		Dimension: "1:1",
		ImageURLs: []string{"https://img.example/fox.png"},
	})
	require.NoError(t, err)
	assert.False(t, created.GeneratedAt.IsZero())

	fetched, err := store.GetImageHistoryItem(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	_, err = store.GetImageHistoryItem("missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_ReferenceUploads(t *testing.T) {
	store := NewMemStore()
	user := newUser(t, store, "alice", "a@x.com")

	created, err := store.CreateReferenceUpload(&models.ReferenceUpload{
		UserID:   user.ID,
		Filename: "moodboard.jpg",
		URL:      "https://storage.example/moodboard.jpg",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.UploadedAt.IsZero())

	uploads, err := store.GetReferenceUploads(user.ID)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "moodboard.jpg", uploads[0].Filename)

	require.NoError(t, store.DeleteReferenceUpload(created.ID))
	require.NoError(t, store.DeleteReferenceUpload(created.ID))

	uploads, err = store.GetReferenceUploads(user.ID)
	require.NoError(t, err)
	assert.Empty(t, uploads)
}
