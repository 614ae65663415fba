package handlers

import (
	"errors"
	"net/http"

	"gobazaar/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func (h *Handler) HandleRegisterForm(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	passwordConfirm := c.PostForm("password_confirm")

	errs := gin.H{}
	if username == "" || password == "" {
		errs["Form"] = "Username and password are required."
	}
	if password != passwordConfirm {
		errs["PasswordConfirm"] = "Passwords do not match."
	}
	if len(errs) > 0 {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"Username": username,
			"Errors":   errs,
		})
		return
	}

	user, err := h.accountService.Register(username, password, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			c.HTML(http.StatusBadRequest, "register.html", gin.H{
				"Username": username,
				"Errors":   gin.H{"Username": "Username already taken."},
			})
			return
		}
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"Errors": gin.H{"Form": "Failed to create account."},
		})
		return
	}

	// Auto-login after registration
	if err := h.setAuthCookie(c, user.Username); err != nil {
		h.logger.Error("Failed to issue token", "error", err)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (h *Handler) HandleLoginForm(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.accountService.Authenticate(username, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Username": username,
			"Error":    "Invalid username or password.",
		})
		return
	}

	if err := h.setAuthCookie(c, user.Username); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Error": "Failed to start session.",
		})
		return
	}

	h.auditService.LogAction(&user.ID, "LOGIN", user.Username, nil, c.ClientIP())

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) LogoutUser(c *gin.Context) {
	h.clearAuthCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// DeleteAccount removes the caller's own account. There is no path to
// delete anyone else's.
func (h *Handler) DeleteAccount(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Error": "Please log in to continue.",
		})
		return
	}

	if err := h.accountService.DeleteAccount(user.ID, c.ClientIP()); err != nil {
		h.logger.Error("Failed to delete account", "user_id", user.ID, "error", err)
		c.HTML(http.StatusInternalServerError, "profile.html", gin.H{
			"CurrentUser": user,
			"Error":       "Failed to delete account.",
		})
		return
	}

	h.clearAuthCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}
