package storage

import (
	"errors"

	"github.com/davidalvz/pixelmuse/models"
)

const (
	// DefaultCredits is granted to every new user.
	DefaultCredits = 120

	// DefaultHistoryLimit caps history listings when no limit is given.
	DefaultHistoryLimit = 50
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrConflict            = errors.New("record already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// SavedStyleUpdate carries a partial update; nil fields are left untouched.
type SavedStyleUpdate struct {
	Name              *string
	BaseStyle         *string
	Refinement        *string
	ReferenceImageURL *string
	Tags              *[]string
}

// Store is the persistence contract for all four entity kinds. Handlers only
// ever see this interface, so the in-memory reference implementation and the
// Postgres one are interchangeable.
type Store interface {
	// Users
	GetUser(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) (*models.User, error)
	UpdateUserCredits(userID string, credits int) error
	UpdateUserPreferences(userID string, prefs *models.Preferences) error
	// DeductCredits atomically subtracts amount from the user's balance,
	// failing with ErrInsufficientCredits (and no mutation) when the balance
	// is too low. It returns the remaining balance.
	DeductCredits(userID string, amount int) (int, error)

	// Saved styles
	GetSavedStyles(userID string) ([]models.SavedStyle, error)
	GetSavedStyle(id string) (*models.SavedStyle, error)
	CreateSavedStyle(style *models.SavedStyle) (*models.SavedStyle, error)
	UpdateSavedStyle(id string, updates SavedStyleUpdate) (*models.SavedStyle, error)
	DeleteSavedStyle(id string) error
	IncrementStyleUsage(id string) error

	// Image history
	GetImageHistory(userID string, limit int) ([]models.ImageHistory, error)
	CreateImageHistory(record *models.ImageHistory) (*models.ImageHistory, error)
	GetImageHistoryItem(id string) (*models.ImageHistory, error)

	// Reference uploads
	GetReferenceUploads(userID string) ([]models.ReferenceUpload, error)
	CreateReferenceUpload(upload *models.ReferenceUpload) (*models.ReferenceUpload, error)
	DeleteReferenceUpload(id string) error
}
