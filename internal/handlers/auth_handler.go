package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/logger"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/middleware"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/repository"
)

type AuthHandler struct {
	userRepo repository.UserRepository
}

func NewAuthHandler(userRepo repository.UserRepository) *AuthHandler {
	return &AuthHandler{userRepo: userRepo}
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", pageData(c, nil))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.UserRegister
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "Username and password are required!")
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}

	hashed, err := h.userRepo.HashPassword(req.Password)
	if err != nil {
		h.serverError(c, "Failed to process password", err)
		return
	}

	user := &models.User{
		Username: req.Username,
		Password: hashed,
		Guest:    req.Guest,
	}

	if err := h.userRepo.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			setFlash(c, "Username already taken!")
			c.Redirect(http.StatusSeeOther, "/register")
			return
		}
		h.serverError(c, "Failed to create user", err)
		return
	}

	logger.Info(logger.EventRegistration, "User registered", logger.Fields(
		"user_id", user.ID,
		"username", user.Username,
		"guest", user.Guest,
	))

	setFlash(c, "Account created successfully!")
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", pageData(c, nil))
}

func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, false, "/login")
}

func (h *AuthHandler) GuestLoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "guest_login.html", pageData(c, nil))
}

func (h *AuthHandler) GuestLogin(c *gin.Context) {
	h.login(c, true, "/guest_login")
}

// login authenticates by exact username and bcrypt comparison. The guest
// endpoint additionally requires the matched account's guest flag, and a
// non-guest match there counts as invalid credentials. Destination after
// login depends on the flag: guests land on the catalog, uploaders on the
// upload page.
func (h *AuthHandler) login(c *gin.Context, guestOnly bool, failurePath string) {
	var req models.UserLogin
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "Invalid username or password!")
		c.Redirect(http.StatusSeeOther, failurePath)
		return
	}

	user, err := h.userRepo.FindUserByUsername(req.Username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		h.serverError(c, "Failed to look up user", err)
		return
	}

	authenticated := err == nil &&
		h.userRepo.VerifyPassword(user.Password, req.Password) == nil &&
		(!guestOnly || user.Guest)

	if !authenticated {
		logger.Warn(logger.EventLoginFailure, "Login failed", logger.Fields(
			"username", req.Username,
			"guest_only", guestOnly,
		))
		setFlash(c, "Invalid username or password!")
		c.Redirect(http.StatusSeeOther, failurePath)
		return
	}

	if err := middleware.IssueSession(c, user); err != nil {
		h.serverError(c, "Failed to establish session", err)
		return
	}

	logger.Info(logger.EventLoginSuccess, "Login succeeded", logger.Fields(
		"user_id", user.ID,
		"guest", user.Guest,
	))

	if user.Guest {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/upload")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSession(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) serverError(c *gin.Context, message string, err error) {
	logger.Error(logger.EventDBError, message, logger.Fields("error", err.Error()))
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}
