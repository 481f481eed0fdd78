package store

import (
	"context"
	"strings"

	"github.com/jinzhu/gorm"

	"pureplay/pkg/models"
)

type Videos struct {
	db *gorm.DB
}

func NewVideos(db *gorm.DB) *Videos {
	return &Videos{db: db}
}

func (r *Videos) Create(ctx context.Context, video *models.Video) error {
	return r.db.Create(video).Error
}

func (r *Videos) Exists(ctx context.Context, userID, videoURL string) (bool, error) {
	var count int
	err := r.db.Model(&models.Video{}).
		Where("user_id = ? AND video_url = ?", userID, videoURL).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the owner's videos in insertion order. The slice is
// non-nil even when empty.
func (r *Videos) ListByUser(ctx context.Context, userID string) ([]models.Video, error) {
	videos := []models.Video{}
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// GetOwned returns nil, nil when the row is absent or belongs to another
// user. Ownership lives in the query so an id alone never crosses users.
func (r *Videos) GetOwned(ctx context.Context, userID string, id uint) (*models.Video, error) {
	var video models.Video
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&video).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &video, nil
}

// DeleteOwned hard-deletes the row and reports whether one was removed.
func (r *Videos) DeleteOwned(ctx context.Context, userID string, id uint) (bool, error) {
	res := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Video{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsUniqueViolation reports whether err is the sqlite unique-constraint
// failure raised when a concurrent insert beats the existence check.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
