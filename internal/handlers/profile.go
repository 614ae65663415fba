package handlers

import (
	"net/http"

	"gobazaar/internal/models"
	"gobazaar/internal/services"

	"github.com/gin-gonic/gin"
)

// ShowProfile renders for anonymous visitors too; the template decides
// what to show.
func (h *Handler) ShowProfile(c *gin.Context) {
	user, _ := h.CurrentUser(c)

	var products []models.Product
	if user != nil {
		if err := h.db.Where("user_id = ?", user.ID).Find(&products).Error; err != nil {
			h.logger.Error("Failed to load user products", "user_id", user.ID, "error", err)
		}
	}

	c.HTML(http.StatusOK, "profile.html", gin.H{
		"CurrentUser": user,
		"Products":    products,
	})
}

func (h *Handler) HandleProfileUpload(c *gin.Context) {
	user, _ := h.CurrentUser(c)

	header, err := c.FormFile("profile_picture")
	if err != nil {
		c.HTML(http.StatusBadRequest, "profile.html", gin.H{
			"CurrentUser": user,
			"Error":       "No file provided.",
		})
		return
	}

	oldPath := models.DefaultProfilePicture
	if user.Profile != nil {
		oldPath = user.Profile.ProfilePicture
	}

	rel, err := h.replaceUpload(oldPath, header, user.ID, services.ProfilePicsDir)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "profile.html", gin.H{
			"CurrentUser": user,
			"Error":       "Failed to store profile picture.",
		})
		return
	}

	if err := h.db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Update("profile_picture", rel).Error; err != nil {
		h.logger.Error("Failed to update profile picture", "user_id", user.ID, "error", err)
		c.HTML(http.StatusInternalServerError, "profile.html", gin.H{
			"CurrentUser": user,
			"Error":       "Failed to update profile.",
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/profile")
}
