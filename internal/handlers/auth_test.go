package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"gobazaar/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	h, db := setupTestHandler(t)
	r := setupTestRouter(h)

	t.Run("Success creates user with profile and logs in", func(t *testing.T) {
		cookie := registerAndLogin(t, r, "alice", "pw1234")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)

		var user models.User
		err := db.Preload("Profile").Where("username = ?", "alice").First(&user).Error
		assert.NoError(t, err)
		assert.NotEqual(t, "pw1234", user.PasswordHash)
		assert.NotNil(t, user.Profile)
		assert.Equal(t, models.DefaultProfilePicture, user.Profile.ProfilePicture)
	})

	t.Run("Password mismatch creates no user", func(t *testing.T) {
		form := url.Values{}
		form.Add("username", "mallory")
		form.Add("password", "pw1234")
		form.Add("password_confirm", "different")

		w := postForm(r, "/register", form, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Passwords do not match")

		var count int64
		db.Model(&models.User{}).Where("username = ?", "mallory").Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		form := url.Values{}
		form.Add("username", "alice")
		form.Add("password", "pw1234")
		form.Add("password_confirm", "pw1234")

		w := postForm(r, "/register", form, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Username already taken")
	})

	t.Run("Show form", func(t *testing.T) {
		w := getPage(r, "/register", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Register")
	})
}

func TestLogin(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(h)
	registerAndLogin(t, r, "bob", "pw1234")

	t.Run("Success sets cookie and redirects", func(t *testing.T) {
		form := url.Values{}
		form.Add("username", "bob")
		form.Add("password", "pw1234")

		w := postForm(r, "/login", form, nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)

		var found bool
		for _, cookie := range w.Result().Cookies() {
			if cookie.Name == AccessTokenCookie && cookie.Value != "" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("Wrong password", func(t *testing.T) {
		form := url.Values{}
		form.Add("username", "bob")
		form.Add("password", "wrong")

		w := postForm(r, "/login", form, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password")
	})

	t.Run("Unknown user", func(t *testing.T) {
		form := url.Values{}
		form.Add("username", "nobody")
		form.Add("password", "pw1234")

		w := postForm(r, "/login", form, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Show form", func(t *testing.T) {
		w := getPage(r, "/login", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Login")
	})
}

func TestLogout(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(h)
	cookie := registerAndLogin(t, r, "carol", "pw1234")

	w := postForm(r, "/logout", url.Values{}, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == AccessTokenCookie {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}
}

func TestDeleteAccount(t *testing.T) {
	h, db := setupTestHandler(t)
	r := setupTestRouter(h)

	t.Run("Deletes own account with profile and products", func(t *testing.T) {
		cookie := registerAndLogin(t, r, "dave", "pw1234")

		form := url.Values{}
		form.Add("name", "Old Couch")
		form.Add("price", "40")
		form.Add("new_category", "Furniture")
		w := postForm(r, "/product/new", form, cookie)
		assert.Equal(t, http.StatusSeeOther, w.Code)

		w = postForm(r, "/delete_account", url.Values{}, cookie)
		assert.Equal(t, http.StatusSeeOther, w.Code)

		var count int64
		db.Model(&models.User{}).Where("username = ?", "dave").Count(&count)
		assert.Equal(t, int64(0), count)
		db.Model(&models.Product{}).Where("name = ?", "Old Couch").Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Anonymous gets 401", func(t *testing.T) {
		w := postForm(r, "/delete_account", url.Values{}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
