package storage

import (
	"errors"

	"github.com/davidalvz/pixelmuse/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*GormStore)(nil)
)

// GormStore is the durable Store backend. It honors the same contract as
// MemStore; in particular DeductCredits is one conditional UPDATE so two
// concurrent generations cannot both pass the balance check.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Users -----------------------------------------------------------------

func (s *GormStore) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateUser(user *models.User) (*models.User, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrConflict
	}

	created := models.User{
		Username: user.Username,
		Email:    user.Email,
		Credits:  DefaultCredits,
	}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *GormStore) UpdateUserCredits(userID string, credits int) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("credits", credits)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpdateUserPreferences(userID string, prefs *models.Preferences) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("preferences", prefs)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeductCredits(userID string, amount int) (int, error) {
	res := s.db.Model(&models.User{}).
		Where("id = ? AND credits >= ?", userID, amount).
		UpdateColumn("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return 0, err
	}
	if res.RowsAffected == 0 {
		return user.Credits, ErrInsufficientCredits
	}
	return user.Credits, nil
}

// Saved styles ----------------------------------------------------------

func (s *GormStore) GetSavedStyles(userID string) ([]models.SavedStyle, error) {
	styles := make([]models.SavedStyle, 0)
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&styles).Error
	return styles, err
}

func (s *GormStore) GetSavedStyle(id string) (*models.SavedStyle, error) {
	var style models.SavedStyle
	if err := s.db.Where("id = ?", id).First(&style).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &style, nil
}

func (s *GormStore) CreateSavedStyle(style *models.SavedStyle) (*models.SavedStyle, error) {
	created := models.SavedStyle{
		UserID:            style.UserID,
		Name:              style.Name,
		BaseStyle:         style.BaseStyle,
		Refinement:        style.Refinement,
		ReferenceImageURL: style.ReferenceImageURL,
		Tags:              append([]string(nil), style.Tags...),
	}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *GormStore) UpdateSavedStyle(id string, updates SavedStyleUpdate) (*models.SavedStyle, error) {
	fields := map[string]interface{}{}
	if updates.Name != nil {
		fields["name"] = *updates.Name
	}
	if updates.BaseStyle != nil {
		fields["base_style"] = *updates.BaseStyle
	}
	if updates.Refinement != nil {
		fields["refinement"] = *updates.Refinement
	}
	if updates.ReferenceImageURL != nil {
		fields["reference_image_url"] = *updates.ReferenceImageURL
	}
	if updates.Tags != nil {
		fields["tags"] = pq.StringArray(append([]string(nil), *updates.Tags...))
	}

	if len(fields) > 0 {
		res := s.db.Model(&models.SavedStyle{}).Where("id = ?", id).UpdateColumns(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetSavedStyle(id)
}

func (s *GormStore) DeleteSavedStyle(id string) error {
	// Idempotent: deleting an unknown id affects zero rows and is fine.
	return s.db.Where("id = ?", id).Delete(&models.SavedStyle{}).Error
}

func (s *GormStore) IncrementStyleUsage(id string) error {
	return s.db.Model(&models.SavedStyle{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

// Image history ----------------------------------------------------------

func (s *GormStore) GetImageHistory(userID string, limit int) ([]models.ImageHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records := make([]models.ImageHistory, 0)
	err := s.db.Where("user_id = ?", userID).
		Order("generated_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (s *GormStore) CreateImageHistory(record *models.ImageHistory) (*models.ImageHistory, error) {
	created := models.ImageHistory{
		UserID:     record.UserID,
		Prompt:     record.Prompt,
		Style:      record.Style,
		Refinement: record.Refinement,
		Dimension:  record.Dimension,
		ImageURLs:  append([]string(nil), record.ImageURLs...),
		StyleID:    record.StyleID,
	}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *GormStore) GetImageHistoryItem(id string) (*models.ImageHistory, error) {
	var record models.ImageHistory
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Reference uploads ------------------------------------------------------

func (s *GormStore) GetReferenceUploads(userID string) ([]models.ReferenceUpload, error) {
	uploads := make([]models.ReferenceUpload, 0)
	err := s.db.Where("user_id = ?", userID).Order("uploaded_at DESC").Find(&uploads).Error
	return uploads, err
}

func (s *GormStore) CreateReferenceUpload(upload *models.ReferenceUpload) (*models.ReferenceUpload, error) {
	created := models.ReferenceUpload{
		UserID:   upload.UserID,
		Filename: upload.Filename,
		URL:      upload.URL,
	}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *GormStore) DeleteReferenceUpload(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.ReferenceUpload{}).Error
}
