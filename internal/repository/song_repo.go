package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
)

var (
	ErrSongNotFound = errors.New("song not found")
	ErrNotOwner     = errors.New("song is owned by another user")
)

type SongRepository interface {
	CreateSong(song *models.Song) error
	GetSongByID(id uint) (*models.Song, error)
	ListSongs(filter models.SongFilter) ([]models.Song, error)
	SearchSongs(keyword string) ([]models.Song, error)
	ListSongsByUser(userID uint) ([]models.Song, error)
	DeleteSong(id uint, ownerID uint) (*models.Song, error)
}

type songRepo struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) SongRepository {
	return &songRepo{db: db}
}

func (r *songRepo) CreateSong(song *models.Song) error {
	return r.db.Create(song).Error
}

func (r *songRepo) GetSongByID(id uint) (*models.Song, error) {
	var song models.Song
	err := r.db.First(&song, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &song, nil
}

// ListSongs applies the catalog filters. Absent filters impose no
// constraint; present ones are ANDed. LOWER(...) LIKE keeps the contains
// match case-insensitive on both postgres and sqlite.
func (r *songRepo) ListSongs(filter models.SongFilter) ([]models.Song, error) {
	query := r.db.Model(&models.Song{})

	if filter.Title != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+filter.Title+"%")
	}
	if filter.Artist != "" {
		query = query.Where("LOWER(artist) LIKE LOWER(?)", "%"+filter.Artist+"%")
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var songs []models.Song
	err := query.Order("id").Find(&songs).Error
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

func (r *songRepo) SearchSongs(keyword string) ([]models.Song, error) {
	var songs []models.Song
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(artist) LIKE LOWER(?)",
			"%"+keyword+"%", "%"+keyword+"%").
		Order("id").
		Find(&songs).Error
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

func (r *songRepo) ListSongsByUser(userID uint) ([]models.Song, error) {
	var songs []models.Song
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&songs).Error
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

// DeleteSong removes the song and its ratings after verifying ownership.
// The deleted row is returned so the caller can remove the stored file.
func (r *songRepo) DeleteSong(id uint, ownerID uint) (*models.Song, error) {
	var song models.Song
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&song, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSongNotFound
			}
			return err
		}
		if song.UserID != ownerID {
			return ErrNotOwner
		}
		if err := tx.Where("song_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Song{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &song, nil
}
