package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/davidalvz/pixelmuse/models"
	"github.com/google/uuid"
)

// MemStore is the in-memory reference implementation of Store. A single
// RWMutex guards all four maps, so credit deduction is a genuine atomic
// check-and-subtract rather than a check-then-act across requests.
type MemStore struct {
	mu               sync.RWMutex
	users            map[string]models.User
	savedStyles      map[string]models.SavedStyle
	imageHistory     map[string]models.ImageHistory
	referenceUploads map[string]models.ReferenceUpload
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:            make(map[string]models.User),
		savedStyles:      make(map[string]models.SavedStyle),
		imageHistory:     make(map[string]models.ImageHistory),
		referenceUploads: make(map[string]models.ReferenceUpload),
	}
}

// Users -----------------------------------------------------------------

func (m *MemStore) GetUser(id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (m *MemStore) GetUserByUsername(username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, nil
}

func (m *MemStore) GetUserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, nil
}

func (m *MemStore) CreateUser(user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, ErrConflict
		}
	}

	created := models.User{
		ID:       uuid.New().String(),
		Username: user.Username,
		Email:    user.Email,
		Credits:  DefaultCredits,
	}
	m.users[created.ID] = created
	return cloneUser(created), nil
}

func (m *MemStore) UpdateUserCredits(userID string, credits int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Credits = credits
	m.users[userID] = user
	return nil
}

func (m *MemStore) UpdateUserPreferences(userID string, prefs *models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	if prefs == nil {
		user.Preferences = nil
	} else {
		p := *prefs
		user.Preferences = &p
	}
	m.users[userID] = user
	return nil
}

func (m *MemStore) DeductCredits(userID string, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	if user.Credits < amount {
		return user.Credits, ErrInsufficientCredits
	}
	user.Credits -= amount
	m.users[userID] = user
	return user.Credits, nil
}

// Saved styles ----------------------------------------------------------

func (m *MemStore) GetSavedStyles(userID string) ([]models.SavedStyle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	styles := make([]models.SavedStyle, 0)
	for _, style := range m.savedStyles {
		if style.UserID == userID {
			styles = append(styles, *cloneStyle(style))
		}
	}
	sort.Slice(styles, func(i, j int) bool {
		return styles[i].CreatedAt.After(styles[j].CreatedAt)
	})
	return styles, nil
}

func (m *MemStore) GetSavedStyle(id string) (*models.SavedStyle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	style, ok := m.savedStyles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStyle(style), nil
}

func (m *MemStore) CreateSavedStyle(style *models.SavedStyle) (*models.SavedStyle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *style
	created.ID = uuid.New().String()
	created.UsageCount = 0
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.Tags = append([]string(nil), style.Tags...)

	m.savedStyles[created.ID] = created
	return cloneStyle(created), nil
}

func (m *MemStore) UpdateSavedStyle(id string, updates SavedStyleUpdate) (*models.SavedStyle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	style, ok := m.savedStyles[id]
	if !ok {
		return nil, ErrNotFound
	}
	if updates.Name != nil {
		style.Name = *updates.Name
	}
	if updates.BaseStyle != nil {
		style.BaseStyle = *updates.BaseStyle
	}
	if updates.Refinement != nil {
		style.Refinement = *updates.Refinement
	}
	if updates.ReferenceImageURL != nil {
		style.ReferenceImageURL = *updates.ReferenceImageURL
	}
	if updates.Tags != nil {
		style.Tags = append([]string(nil), *updates.Tags...)
	}
	m.savedStyles[id] = style
	return cloneStyle(style), nil
}

func (m *MemStore) DeleteSavedStyle(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Deleting an unknown id is not an error.
	delete(m.savedStyles, id)
	return nil
}

func (m *MemStore) IncrementStyleUsage(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	style, ok := m.savedStyles[id]
	if !ok {
		// The style may have been deleted since the generation started.
		return nil
	}
	style.UsageCount++
	m.savedStyles[id] = style
	return nil
}

// Image history ----------------------------------------------------------

func (m *MemStore) GetImageHistory(userID string, limit int) ([]models.ImageHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records := make([]models.ImageHistory, 0)
	for _, record := range m.imageHistory {
		if record.UserID == userID {
			records = append(records, *cloneHistory(record))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].GeneratedAt.After(records[j].GeneratedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemStore) CreateImageHistory(record *models.ImageHistory) (*models.ImageHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *record
	created.ID = uuid.New().String()
	if created.GeneratedAt.IsZero() {
		created.GeneratedAt = time.Now().UTC()
	}
	created.ImageURLs = append([]string(nil), record.ImageURLs...)

	m.imageHistory[created.ID] = created
	return cloneHistory(created), nil
}

func (m *MemStore) GetImageHistoryItem(id string) (*models.ImageHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.imageHistory[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneHistory(record), nil
}

// Reference uploads ------------------------------------------------------

func (m *MemStore) GetReferenceUploads(userID string) ([]models.ReferenceUpload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uploads := make([]models.ReferenceUpload, 0)
	for _, upload := range m.referenceUploads {
		if upload.UserID == userID {
			uploads = append(uploads, upload)
		}
	}
	sort.Slice(uploads, func(i, j int) bool {
		return uploads[i].UploadedAt.After(uploads[j].UploadedAt)
	})
	return uploads, nil
}

func (m *MemStore) CreateReferenceUpload(upload *models.ReferenceUpload) (*models.ReferenceUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *upload
	created.ID = uuid.New().String()
	if created.UploadedAt.IsZero() {
		created.UploadedAt = time.Now().UTC()
	}
	m.referenceUploads[created.ID] = created
	return &created, nil
}

func (m *MemStore) DeleteReferenceUpload(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.referenceUploads, id)
	return nil
}

// Clone helpers keep callers from aliasing map-held values.

func cloneUser(user models.User) *models.User {
	cloned := user
	if user.Preferences != nil {
		prefs := *user.Preferences
		cloned.Preferences = &prefs
	}
	return &cloned
}

func cloneStyle(style models.SavedStyle) *models.SavedStyle {
	cloned := style
	cloned.Tags = append([]string(nil), style.Tags...)
	return &cloned
}

func cloneHistory(record models.ImageHistory) *models.ImageHistory {
	cloned := record
	cloned.ImageURLs = append([]string(nil), record.ImageURLs...)
	return &cloned
}
