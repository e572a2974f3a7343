package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
)

var ErrRatingCapReached = errors.New("rating attempt limit reached for this song")

// MaxRatingAttempts caps how many rating rows one user may hold for one
// song before UpsertRating refuses to insert another. Because the update
// branch intercepts every repeat submission, the handler path keeps the
// pair at a single row and the cap only matters for rows created outside
// that path. Kept as an explicit limit rather than quietly removed; see
// DESIGN.md.
const MaxRatingAttempts = 5

type RatingRepository interface {
	UpsertRating(userID, songID uint, value int) (*models.Rating, error)
	GetByUserAndSong(userID, songID uint) (*models.Rating, error)
	CountByUserAndSong(userID, songID uint) (int64, error)
	ListBySong(songID uint) ([]models.Rating, error)
	AverageBySong(songID uint) (float64, int64, error)
}

type ratingRepo struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepo{db: db}
}

// UpsertRating runs the whole read-check-write sequence in one transaction
// so two concurrent submissions for the same (user, song) pair cannot both
// take the insert branch. The same transaction recomputes the song's
// materialized average.
func (r *ratingRepo) UpsertRating(userID, songID uint, value int) (*models.Rating, error) {
	var rating models.Rating

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND song_id = ?", userID, songID).
			Order("id").
			First(&rating).Error

		switch {
		case err == nil:
			// Existing row: unconditional overwrite, the cap is not consulted.
			rating.Value = value
			if err := tx.Save(&rating).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			var count int64
			if err := tx.Model(&models.Rating{}).
				Where("user_id = ? AND song_id = ?", userID, songID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= MaxRatingAttempts {
				return ErrRatingCapReached
			}
			rating = models.Rating{UserID: userID, SongID: songID, Value: value}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return recomputeSongRating(tx, songID)
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func recomputeSongRating(tx *gorm.DB, songID uint) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Rating{}).
		Select("COALESCE(AVG(value), 0) AS avg, COUNT(*) AS count").
		Where("song_id = ?", songID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Song{}).
		Where("id = ?", songID).
		Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"rating_count": agg.Count,
		}).Error
}

func (r *ratingRepo) GetByUserAndSong(userID, songID uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.Where("user_id = ? AND song_id = ?", userID, songID).
		Order("id").
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepo) CountByUserAndSong(userID, songID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Rating{}).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Count(&count).Error
	return count, err
}

func (r *ratingRepo) ListBySong(songID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.Where("song_id = ?", songID).Order("id").Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepo) AverageBySong(songID uint) (float64, int64, error) {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(value), 0) AS avg, COUNT(*) AS count").
		Where("song_id = ?", songID).
		Scan(&agg).Error
	return agg.Avg, agg.Count, err
}
