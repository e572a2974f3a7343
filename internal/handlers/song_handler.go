package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/logger"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/repository"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/storage"
)

type SongHandler struct {
	songRepo repository.SongRepository
	store    storage.Storage
}

func NewSongHandler(songRepo repository.SongRepository, store storage.Storage) *SongHandler {
	return &SongHandler{
		songRepo: songRepo,
		store:    store,
	}
}

// Catalog renders the shared song list. The three filters are optional
// and ANDed; a malformed user_id simply drops that filter.
func (h *SongHandler) Catalog(c *gin.Context) {
	filter := models.SongFilter{
		Title:  c.Query("title"),
		Artist: c.Query("artist"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.UserID = uint(id)
		}
	}

	songs, err := h.songRepo.ListSongs(filter)
	if err != nil {
		h.serverError(c, "Failed to fetch songs", err)
		return
	}

	c.HTML(http.StatusOK, "home.html", pageData(c, gin.H{
		"Songs":  songs,
		"Filter": filter,
	}))
}

func (h *SongHandler) Search(c *gin.Context) {
	keyword := c.PostForm("keyword")

	songs, err := h.songRepo.SearchSongs(keyword)
	if err != nil {
		h.serverError(c, "Failed to search songs", err)
		return
	}

	c.HTML(http.StatusOK, "search_results.html", pageData(c, gin.H{
		"Songs":   songs,
		"Keyword": keyword,
	}))
}

func (h *SongHandler) UploadForm(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", pageData(c, nil))
}

func (h *SongHandler) Upload(c *gin.Context) {
	var req models.SongUpload
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "Title and artist are required!")
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		setFlash(c, "An audio file is required!")
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.serverError(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	// The payload reaches durable storage before the row referencing it is
	// committed, so a failed insert never leaves a dangling reference.
	stored, err := h.store.Save(fileHeader.Filename, file)
	if err != nil {
		logger.Error(logger.EventStorageError, "Failed to store upload", logger.Fields(
			"error", err.Error(),
		))
		h.serverError(c, "Failed to store upload", err)
		return
	}

	song := &models.Song{
		Title:    req.Title,
		Artist:   req.Artist,
		Filename: stored,
		UserID:   c.GetUint("user_id"),
	}
	if err := h.songRepo.CreateSong(song); err != nil {
		// Roll the orphaned file back; best effort.
		if rmErr := h.store.Remove(stored); rmErr != nil {
			logger.Warn(logger.EventStorageError, "Failed to remove orphaned upload", logger.Fields(
				"filename", stored,
				"error", rmErr.Error(),
			))
		}
		h.serverError(c, "Failed to create song", err)
		return
	}

	logger.Info(logger.EventUpload, "Song uploaded", logger.Fields(
		"song_id", song.ID,
		"user_id", song.UserID,
		"filename", stored,
	))

	setFlash(c, "Song uploaded successfully!")
	c.Redirect(http.StatusSeeOther, "/my-songs")
}

func (h *SongHandler) MySongs(c *gin.Context) {
	songs, err := h.songRepo.ListSongsByUser(c.GetUint("user_id"))
	if err != nil {
		h.serverError(c, "Failed to fetch songs", err)
		return
	}

	c.HTML(http.StatusOK, "my_songs.html", pageData(c, gin.H{
		"Songs": songs,
	}))
}

func (h *SongHandler) DeleteSong(c *gin.Context) {
	songID, err := strconv.ParseUint(c.Param("song_id"), 10, 32)
	if err != nil {
		setFlash(c, "Invalid song!")
		c.Redirect(http.StatusSeeOther, "/my-songs")
		return
	}

	song, err := h.songRepo.DeleteSong(uint(songID), c.GetUint("user_id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSongNotFound):
			setFlash(c, "Invalid song!")
		case errors.Is(err, repository.ErrNotOwner):
			setFlash(c, "You can only delete your own songs!")
		default:
			h.serverError(c, "Failed to delete song", err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/my-songs")
		return
	}

	if err := h.store.Remove(song.Filename); err != nil {
		logger.Warn(logger.EventStorageError, "Failed to remove audio file", logger.Fields(
			"filename", song.Filename,
			"error", err.Error(),
		))
	}

	logger.Info(logger.EventSongDeleted, "Song deleted", logger.Fields(
		"song_id", song.ID,
		"user_id", song.UserID,
	))

	setFlash(c, "Song deleted successfully!")
	c.Redirect(http.StatusSeeOther, "/my-songs")
}

// Audio streams a song's stored payload, passed through unmodified.
func (h *SongHandler) Audio(c *gin.Context) {
	songID, err := strconv.ParseUint(c.Param("song_id"), 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid song ID")
		return
	}

	song, err := h.songRepo.GetSongByID(uint(songID))
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.String(http.StatusNotFound, "Song not found")
			return
		}
		h.serverError(c, "Failed to fetch song", err)
		return
	}

	path, err := h.store.Path(song.Filename)
	if err != nil {
		c.String(http.StatusNotFound, "Audio file not found")
		return
	}
	c.File(path)
}

func (h *SongHandler) serverError(c *gin.Context, message string, err error) {
	logger.Error(logger.EventDBError, message, logger.Fields("error", err.Error()))
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}
