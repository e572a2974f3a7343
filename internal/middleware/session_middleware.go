package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/config"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/logger"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
)

const (
	SessionCookieName = "session"
	sessionTTL        = 7 * 24 * time.Hour
)

// IssueSession signs a session token for the user and sets it as an
// HttpOnly cookie. The token carries the per-request identity (user id +
// guest flag) that the session middleware later places in the gin context.
func IssueSession(c *gin.Context, user *models.User) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"guest":   user.Guest,
		"exp":     time.Now().Add(sessionTTL).Unix(),
		"iat":     time.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(config.GlobalConfig.SessionSecret))
	if err != nil {
		return err
	}

	c.SetCookie(SessionCookieName, signed, int(sessionTTL.Seconds()), "/", "", false, true)
	return nil
}

func ClearSession(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}

func parseSession(c *gin.Context) (userID uint, guest bool, err error) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie == "" {
		return 0, false, http.ErrNoCookie
	}

	token, err := jwt.Parse(cookie, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(config.GlobalConfig.SessionSecret), nil
	})
	if err != nil {
		return 0, false, err
	}
	if !token.Valid {
		return 0, false, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, jwt.ErrTokenInvalidClaims
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false, jwt.ErrTokenInvalidClaims
	}
	guest, _ = claims["guest"].(bool)

	return uint(id), guest, nil
}

// SessionMiddleware requires a valid session and sets "user_id" and
// "guest" in the gin context. Browsers without one are sent to the login
// page rather than handed a 401.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, guest, err := parseSession(c)
		if err != nil {
			if !errors.Is(err, http.ErrNoCookie) {
				logger.Warn(logger.EventAccessDenied, "Rejected session cookie", logger.Fields(
					"path", c.Request.URL.Path,
					"error", err.Error(),
				))
			}
			ClearSession(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("guest", guest)
		c.Next()
	}
}

// OptionalSessionMiddleware sets the identity when a valid session cookie
// is present and otherwise lets the request through anonymously.
func OptionalSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, guest, err := parseSession(c)
		if err == nil {
			c.Set("user_id", userID)
			c.Set("guest", guest)
		}
		c.Next()
	}
}

// RequireUploader sits behind SessionMiddleware and bounces guest
// sessions back to the catalog; guests cannot upload.
func RequireUploader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("guest") {
			logger.Warn(logger.EventAccessDenied, "Guest attempted upload", logger.Fields(
				"user_id", c.GetUint("user_id"),
			))
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
