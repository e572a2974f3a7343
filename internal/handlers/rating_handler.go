package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/logger"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/repository"
)

type RatingHandler struct {
	ratingRepo repository.RatingRepository
	songRepo   repository.SongRepository
}

func NewRatingHandler(ratingRepo repository.RatingRepository, songRepo repository.SongRepository) *RatingHandler {
	return &RatingHandler{
		ratingRepo: ratingRepo,
		songRepo:   songRepo,
	}
}

// RateSong upserts the session user's rating for a song. Any logged-in
// user may rate, guests included.
func (h *RatingHandler) RateSong(c *gin.Context) {
	var req models.RateSong
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "A rating between 1 and 5 is required!")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if _, err := h.songRepo.GetSongByID(req.SongID); err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			setFlash(c, "Invalid song!")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		h.serverError(c, "Failed to fetch song", err)
		return
	}

	userID := c.GetUint("user_id")
	rating, err := h.ratingRepo.UpsertRating(userID, req.SongID, req.Rating)
	if err != nil {
		if errors.Is(err, repository.ErrRatingCapReached) {
			setFlash(c, "You have reached the rating limit for this song!")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		h.serverError(c, "Failed to save rating", err)
		return
	}

	logger.Info(logger.EventRating, "Song rated", logger.Fields(
		"user_id", userID,
		"song_id", req.SongID,
		"value", rating.Value,
	))

	setFlash(c, "Song rated successfully!")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *RatingHandler) serverError(c *gin.Context, message string, err error) {
	logger.Error(logger.EventDBError, message, logger.Fields("error", err.Error()))
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}
