package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"gobazaar/internal/models"
	"gobazaar/internal/services"

	"github.com/gin-gonic/gin"
)

type ProductForm struct {
	Name         string                `form:"name" binding:"required"`
	Description  string                `form:"description"`
	Price        int                   `form:"price"`
	Location     string                `form:"location"`
	Category     uint                  `form:"category"`
	NewCategory  string                `form:"new_category"`
	ProductImage *multipart.FileHeader `form:"product_image"`
}

func (h *Handler) ShowHome(c *gin.Context) {
	user, _ := h.CurrentUser(c)

	var categoryID uint
	if raw := c.Query("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			categoryID = uint(id)
		}
	}

	filter := services.ListFilter{
		Query:      c.Query("q"),
		CategoryID: categoryID,
		Location:   c.Query("location"),
	}

	products, err := h.catalogService.List(filter)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
	}

	categories, _ := h.catalogService.Categories()
	locations, _ := h.catalogService.Locations()

	var profilePicture string
	if user != nil && user.Profile != nil {
		profilePicture = user.Profile.ProfilePicture
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Products":         products,
		"Categories":       categories,
		"Locations":        locations,
		"SelectedCategory": categoryID,
		"SelectedLocation": filter.Location,
		"Query":            filter.Query,
		"CurrentUser":      user,
		"ProfilePicture":   profilePicture,
	})
}

func (h *Handler) ShowProductDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}

	product, err := h.catalogService.GetProduct(id)
	if err != nil {
		h.renderNotFound(c)
		return
	}

	user, _ := h.CurrentUser(c)

	// Share QR for the listing
	shareURL := "https://" + c.Request.Host + "/product/detail/" + strconv.FormatUint(uint64(product.ID), 10)
	qrData, _, _ := h.qrService.GenerateQRCode(services.QROptions{
		Content: shareURL,
		Size:    192,
	})

	c.HTML(http.StatusOK, "product_detail.html", gin.H{
		"Product":     product,
		"CurrentUser": user,
		"CanMutate":   services.CanMutate(user, product),
		"ShareURL":    shareURL,
		"QRData":      qrData,
	})
}

func (h *Handler) ShowProductForm(c *gin.Context) {
	user, _ := h.CurrentUser(c)
	categories, _ := h.catalogService.Categories()

	c.HTML(http.StatusOK, "product_form.html", gin.H{
		"Categories":  categories,
		"CurrentUser": user,
	})
}

func (h *Handler) HandleProductCreate(c *gin.Context) {
	user, _ := h.CurrentUser(c)

	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		categories, _ := h.catalogService.Categories()
		c.HTML(http.StatusBadRequest, "product_form.html", gin.H{
			"Categories":  categories,
			"CurrentUser": user,
			"Error":       "Invalid input: " + err.Error(),
		})
		return
	}

	dto := services.ProductDTO{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Location:    form.Location,
		CategoryID:  form.Category,
		NewCategory: form.NewCategory,
		IPAddress:   c.ClientIP(),
	}

	if form.ProductImage != nil && form.ProductImage.Filename != "" {
		rel, err := h.storeUpload(form.ProductImage, user.ID, services.ProductImagesDir)
		if err != nil {
			h.logger.Error("Failed to store product image", "error", err)
		} else {
			dto.Image = rel
		}
	}

	if _, err := h.catalogService.CreateProduct(user.ID, dto); err != nil {
		categories, _ := h.catalogService.Categories()
		c.HTML(http.StatusInternalServerError, "product_form.html", gin.H{
			"Categories":  categories,
			"CurrentUser": user,
			"Error":       "Failed to create product.",
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ShowProductEdit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}

	user, _ := h.CurrentUser(c)
	product, err := h.catalogService.GetOwnedProduct(userIDOf(user), id)
	if err != nil {
		h.renderNotFound(c)
		return
	}

	categories, _ := h.catalogService.Categories()

	c.HTML(http.StatusOK, "product_edit.html", gin.H{
		"Product":     product,
		"Categories":  categories,
		"CurrentUser": user,
	})
}

func (h *Handler) HandleProductEdit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}

	user, _ := h.CurrentUser(c)
	product, err := h.catalogService.GetOwnedProduct(userIDOf(user), id)
	if err != nil {
		h.renderNotFound(c)
		return
	}

	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		categories, _ := h.catalogService.Categories()
		c.HTML(http.StatusBadRequest, "product_edit.html", gin.H{
			"Product":     product,
			"Categories":  categories,
			"CurrentUser": user,
			"Error":       "Invalid input: " + err.Error(),
		})
		return
	}

	dto := services.ProductDTO{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Location:    form.Location,
		CategoryID:  form.Category,
		NewCategory: form.NewCategory,
		IPAddress:   c.ClientIP(),
	}

	if form.ProductImage != nil && form.ProductImage.Filename != "" {
		rel, err := h.replaceUpload(product.Image, form.ProductImage, user.ID, services.ProductImagesDir)
		if err != nil {
			h.logger.Error("Failed to replace product image", "error", err)
		} else {
			dto.Image = rel
		}
	}

	if _, err := h.catalogService.UpdateProduct(user.ID, id, dto); err != nil {
		h.renderNotFound(c)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) HandleProductDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}

	user, _ := h.CurrentUser(c)
	if err := h.catalogService.DeleteProduct(userIDOf(user), id, c.ClientIP()); err != nil {
		h.renderNotFound(c)
		return
	}

	c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *Handler) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{
		"Error": "Product not found",
	})
}

func (h *Handler) storeUpload(header *multipart.FileHeader, ownerID uint, subdir string) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.mediaStore.Store(file, ownerID, header.Filename, subdir)
}

func (h *Handler) replaceUpload(oldRel string, header *multipart.FileHeader, ownerID uint, subdir string) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.mediaStore.Replace(oldRel, file, ownerID, header.Filename, subdir)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// userIDOf maps anonymous (nil) to an id that owns nothing, so
// ownership lookups for anonymous visitors fall through to not-found.
func userIDOf(user *models.User) uint {
	if user == nil {
		return 0
	}
	return user.ID
}
