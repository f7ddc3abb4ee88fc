package repository

import (
	"github.com/hextras/hextras-api/internal/models"
	"gorm.io/gorm"
)

// GormFeedbackRepository is a GORM implementation of FeedbackRepository
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// CreateRating inserts the rating and folds it into the target's running
// mean. The new average is computed from the pre-insert count, in the same
// transaction, so concurrent ratings cannot double-count.
func (r *GormFeedbackRepository) CreateRating(rating *models.Rating) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return err
		}

		return tx.Model(&models.Profile{}).
			Where("id = ?", rating.TargetID).
			Updates(map[string]interface{}{
				"rating_average": gorm.Expr(
					"(rating_average * rating_count + ?) / (rating_count + 1)", float64(rating.Stars)),
				"rating_count": gorm.Expr("rating_count + 1"),
			}).Error
	})
}

// ListRatingsFor lists ratings received by a profile, newest first
func (r *GormFeedbackRepository) ListRatingsFor(targetID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.Where("target_id = ?", targetID).
		Preload("Rater").
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

// CreateReport inserts the report and advances the worker toward the
// blocking threshold in the same transaction.
func (r *GormFeedbackRepository) CreateReport(report *models.Report) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Profile{}).
			Where("id = ?", report.WorkerID).
			UpdateColumn("negative_ratings", gorm.Expr("negative_ratings + 1")).Error; err != nil {
			return err
		}

		return tx.Model(&models.Profile{}).
			Where("id = ? AND negative_ratings >= ?", report.WorkerID, models.NegativeRatingThreshold).
			UpdateColumn("blocked", true).Error
	})
}
