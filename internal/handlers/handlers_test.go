package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/config"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/database"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/handlers"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/repository"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/routes"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/storage"
)

type testApp struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.GlobalConfig = &config.Config{
		Env:           "test",
		SessionSecret: "test-session-secret",
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	songRepo := repository.NewSongRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	router := routes.SetupRoutes(
		handlers.NewAuthHandler(userRepo),
		handlers.NewSongHandler(songRepo, store),
		handlers.NewRatingHandler(ratingRepo, songRepo),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{server: server, db: db}
}

// newClient returns an HTTP client with its own cookie jar, i.e. one
// browser session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postForm(t *testing.T, client *http.Client, rawURL string, values url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(rawURL, values)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func get(t *testing.T, client *http.Client, rawURL string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func register(t *testing.T, app *testApp, client *http.Client, username, password string, guest bool) {
	t.Helper()
	values := url.Values{"username": {username}, "password": {password}}
	if guest {
		values.Set("guest", "true")
	}
	resp, _ := postForm(t, client, app.server.URL+"/register", values)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func login(t *testing.T, app *testApp, client *http.Client, username, password string) *http.Response {
	t.Helper()
	resp, _ := postForm(t, client, app.server.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	return resp
}

func uploadSong(t *testing.T, app *testApp, client *http.Client, title, artist, payload string) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", title))
	require.NoError(t, writer.WriteField("artist", artist))
	part, err := writer.CreateFormFile("audio", "track.mp3")
	require.NoError(t, err)
	_, err = part.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)

	register(t, app, client, "thando", "pw", false)
	resp, body := postForm(t, client, app.server.URL+"/register", url.Values{
		"username": {"thando"},
		"password": {"other"},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/register", resp.Request.URL.Path)
	assert.Contains(t, body, "Username already taken!")

	var count int64
	require.NoError(t, app.db.Model(&models.User{}).Where("username = ?", "thando").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	app := setupApp(t)
	register(t, app, newClient(t), "thando", "pw", false)

	var user models.User
	require.NoError(t, app.db.Where("username = ?", "thando").First(&user).Error)
	assert.NotEqual(t, "pw", user.Password)
	assert.True(t, strings.HasPrefix(user.Password, "$2"))
}

func TestLoginRedirectsByGuestFlag(t *testing.T) {
	app := setupApp(t)

	uploader := newClient(t)
	register(t, app, uploader, "uploader", "pw", false)
	resp := login(t, app, uploader, "uploader", "pw")
	assert.Equal(t, "/upload", resp.Request.URL.Path)

	guest := newClient(t)
	register(t, app, guest, "visitor", "pw", true)
	resp = login(t, app, guest, "visitor", "pw")
	assert.Equal(t, "/", resp.Request.URL.Path)
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "thando", "pw", false)

	resp, body := postForm(t, client, app.server.URL+"/login", url.Values{
		"username": {"thando"},
		"password": {"wrong"},
	})
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Invalid username or password!")
}

func TestGuestLoginRejectsNonGuestAccount(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "uploader", "pw", false)

	resp, body := postForm(t, client, app.server.URL+"/guest_login", url.Values{
		"username": {"uploader"},
		"password": {"pw"},
	})
	assert.Equal(t, "/guest_login", resp.Request.URL.Path)
	assert.Contains(t, body, "Invalid username or password!")
}

func TestGuestLoginAcceptsGuestAccount(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "visitor", "pw", true)

	resp, _ := postForm(t, client, app.server.URL+"/guest_login", url.Values{
		"username": {"visitor"},
		"password": {"pw"},
	})
	assert.Equal(t, "/", resp.Request.URL.Path)
}

func TestUploadCreatesSongAndFileIsRetrievable(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "uploader", "pw", false)
	login(t, app, client, "uploader", "pw")

	resp, body := uploadSong(t, app, client, "Umoya", "Zonke", "fake-audio-bytes")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/my-songs", resp.Request.URL.Path)
	assert.Contains(t, body, "Song uploaded successfully!")

	var song models.Song
	require.NoError(t, app.db.Where("title = ?", "Umoya").First(&song).Error)
	assert.Equal(t, "Zonke", song.Artist)
	assert.NotEmpty(t, song.Filename)

	_, audio := get(t, client, app.server.URL+"/songs/"+strconv.Itoa(int(song.ID))+"/audio")
	assert.Equal(t, "fake-audio-bytes", audio)
}

func TestGuestCannotUpload(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "visitor", "pw", true)
	login(t, app, client, "visitor", "pw")

	resp, _ := uploadSong(t, app, client, "Nope", "Nobody", "x")
	assert.Equal(t, "/", resp.Request.URL.Path)

	var count int64
	require.NoError(t, app.db.Model(&models.Song{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestUploadRequiresLogin(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)

	resp, _ := get(t, client, app.server.URL+"/upload")
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestCatalogFiltersCompose(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "uploader", "pw", false)
	login(t, app, client, "uploader", "pw")
	uploadSong(t, app, client, "Song A", "X", "a")
	uploadSong(t, app, client, "Song B", "X", "b")

	_, body := get(t, client, app.server.URL+"/?artist=X")
	assert.Contains(t, body, "Song A")
	assert.Contains(t, body, "Song B")

	_, body = get(t, client, app.server.URL+"/?artist=X&title=Song+A")
	assert.Contains(t, body, "Song A")
	assert.NotContains(t, body, "Song B")
}

func TestSearchKeywordMatchesTitle(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "uploader", "pw", false)
	login(t, app, client, "uploader", "pw")
	uploadSong(t, app, client, "Song A", "X", "a")
	uploadSong(t, app, client, "Song B", "X", "b")

	_, body := postForm(t, client, app.server.URL+"/search", url.Values{"keyword": {"ong"}})
	assert.Contains(t, body, "Song A")
	assert.Contains(t, body, "Song B")
}

func TestMySongsListsOnlyOwnSongs(t *testing.T) {
	app := setupApp(t)

	alice := newClient(t)
	register(t, app, alice, "alice", "pw", false)
	login(t, app, alice, "alice", "pw")
	uploadSong(t, app, alice, "Alice Song", "A", "a")

	bob := newClient(t)
	register(t, app, bob, "bob", "pw", false)
	login(t, app, bob, "bob", "pw")
	uploadSong(t, app, bob, "Bob Song", "B", "b")

	_, body := get(t, bob, app.server.URL+"/my-songs")
	assert.Contains(t, body, "Bob Song")
	assert.NotContains(t, body, "Alice Song")
}

func TestDeleteSongByNonOwnerFails(t *testing.T) {
	app := setupApp(t)

	alice := newClient(t)
	register(t, app, alice, "alice", "pw", false)
	login(t, app, alice, "alice", "pw")
	uploadSong(t, app, alice, "Keep Me", "A", "a")

	var song models.Song
	require.NoError(t, app.db.Where("title = ?", "Keep Me").First(&song).Error)

	bob := newClient(t)
	register(t, app, bob, "bob", "pw", false)
	login(t, app, bob, "bob", "pw")

	resp, body := postForm(t, bob, app.server.URL+"/delete-song/"+strconv.Itoa(int(song.ID)), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You can only delete your own songs!")

	var count int64
	require.NoError(t, app.db.Model(&models.Song{}).Where("id = ?", song.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteOwnSong(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "alice", "pw", false)
	login(t, app, client, "alice", "pw")
	uploadSong(t, app, client, "Gone", "A", "a")

	var song models.Song
	require.NoError(t, app.db.Where("title = ?", "Gone").First(&song).Error)

	resp, body := postForm(t, client, app.server.URL+"/delete-song/"+strconv.Itoa(int(song.ID)), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Song deleted successfully!")

	var count int64
	require.NoError(t, app.db.Model(&models.Song{}).Where("id = ?", song.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRateSongTwiceKeepsOneRow(t *testing.T) {
	app := setupApp(t)

	uploader := newClient(t)
	register(t, app, uploader, "uploader", "pw", false)
	login(t, app, uploader, "uploader", "pw")
	uploadSong(t, app, uploader, "Rated", "A", "a")

	var song models.Song
	require.NoError(t, app.db.Where("title = ?", "Rated").First(&song).Error)

	rater := newClient(t)
	register(t, app, rater, "rater", "pw", false)
	login(t, app, rater, "rater", "pw")

	songID := strconv.Itoa(int(song.ID))
	resp, body := postForm(t, rater, app.server.URL+"/rate-song", url.Values{
		"song_id": {songID}, "rating": {"3"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Song rated successfully!")

	postForm(t, rater, app.server.URL+"/rate-song", url.Values{
		"song_id": {songID}, "rating": {"5"},
	})

	var ratings []models.Rating
	require.NoError(t, app.db.Where("song_id = ?", song.ID).Find(&ratings).Error)
	require.Len(t, ratings, 1)
	assert.Equal(t, 5, ratings[0].Value)
}

func TestGuestMayRate(t *testing.T) {
	app := setupApp(t)

	uploader := newClient(t)
	register(t, app, uploader, "uploader", "pw", false)
	login(t, app, uploader, "uploader", "pw")
	uploadSong(t, app, uploader, "Rated", "A", "a")

	var song models.Song
	require.NoError(t, app.db.Where("title = ?", "Rated").First(&song).Error)

	guest := newClient(t)
	register(t, app, guest, "visitor", "pw", true)
	login(t, app, guest, "visitor", "pw")

	_, body := postForm(t, guest, app.server.URL+"/rate-song", url.Values{
		"song_id": {strconv.Itoa(int(song.ID))}, "rating": {"4"},
	})
	assert.Contains(t, body, "Song rated successfully!")
}

func TestRateMissingSong(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "rater", "pw", false)
	login(t, app, client, "rater", "pw")

	_, body := postForm(t, client, app.server.URL+"/rate-song", url.Values{
		"song_id": {"999"}, "rating": {"4"},
	})
	assert.Contains(t, body, "Invalid song!")
}

func TestUploadRoundTripFieldsInCatalog(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "uploader", "pw", false)
	login(t, app, client, "uploader", "pw")
	uploadSong(t, app, client, "Thula Mama", "Zahara", "x")

	_, body := get(t, client, app.server.URL+"/")
	assert.Contains(t, body, "Thula Mama")
	assert.Contains(t, body, "Zahara")

	_, body = get(t, client, app.server.URL+"/my-songs")
	assert.Contains(t, body, "Thula Mama")
	assert.Contains(t, body, "Zahara")
}

func TestLogoutEndsSession(t *testing.T) {
	app := setupApp(t)
	client := newClient(t)
	register(t, app, client, "uploader", "pw", false)
	login(t, app, client, "uploader", "pw")

	resp, _ := get(t, client, app.server.URL+"/logout")
	assert.Equal(t, "/", resp.Request.URL.Path)

	resp, _ = get(t, client, app.server.URL+"/my-songs")
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestCatalogAverageRatingDisplayed(t *testing.T) {
	app := setupApp(t)

	uploader := newClient(t)
	register(t, app, uploader, "uploader", "pw", false)
	login(t, app, uploader, "uploader", "pw")
	uploadSong(t, app, uploader, "Avg Song", "A", "x")

	var song models.Song
	require.NoError(t, app.db.Where("title = ?", "Avg Song").First(&song).Error)

	rater := newClient(t)
	register(t, app, rater, "rater", "pw", false)
	login(t, app, rater, "rater", "pw")
	postForm(t, rater, app.server.URL+"/rate-song", url.Values{
		"song_id": {strconv.Itoa(int(song.ID))}, "rating": {"4"},
	})

	_, body := get(t, rater, app.server.URL+"/")
	assert.Contains(t, body, "4.0 (1)")
}

func TestHealthEndpoint(t *testing.T) {
	app := setupApp(t)
	resp, body := get(t, newClient(t), app.server.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Server is running")
}
