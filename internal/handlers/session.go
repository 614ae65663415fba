package handlers

import (
	"net/http"

	"gobazaar/internal/models"
	"gobazaar/internal/services"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie carrying the signed token. Its value
// is the token optionally prefixed with "Bearer ".
const AccessTokenCookie = "access_token"

const currentUserKey = "current_user"

// CurrentUser resolves the request's session to a user. Every failure
// path degrades to anonymous (nil, false): missing cookie, malformed or
// expired token, or a subject that no longer exists. It never errors
// for any cookie bytes a client may send.
func (h *Handler) CurrentUser(c *gin.Context) (*models.User, bool) {
	if cached, ok := c.Get(currentUserKey); ok {
		user, ok := cached.(*models.User)
		return user, ok
	}

	raw, err := c.Cookie(AccessTokenCookie)
	if err != nil || raw == "" {
		return nil, false
	}

	subject, err := h.tokenService.Verify(raw)
	if err != nil {
		return nil, false
	}

	user, err := h.accountService.GetByUsername(subject)
	if err != nil {
		// Token outlived the account.
		return nil, false
	}

	c.Set(currentUserKey, user)
	return user, true
}

// AuthRequired rejects anonymous requests with 401. Routes behind it
// can rely on CurrentUser returning a user.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.CurrentUser(c); !ok {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"Error": "Please log in to continue.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) setAuthCookie(c *gin.Context, username string) error {
	token, err := h.tokenService.Issue(username)
	if err != nil {
		return err
	}
	// No cookie-level expiry: the token's embedded expiry governs.
	c.SetCookie(AccessTokenCookie, services.BearerPrefix+token, 0, "/", "", false, true)
	return nil
}

func (h *Handler) clearAuthCookie(c *gin.Context) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", false, true)
}
