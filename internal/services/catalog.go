package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gobazaar/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned both for missing products and for
// mutation attempts by non-owners. Reporting not-found instead of
// forbidden avoids confirming the resource's existence to non-owners.
var ErrProductNotFound = errors.New("product not found")

const productCacheTTL = 10 * time.Minute

type ListFilter struct {
	Query      string // case-insensitive substring over name/description/location
	CategoryID uint   // exact match, 0 means any
	Location   string // exact match, empty means any
}

type ProductDTO struct {
	Name        string
	Description string
	Price       int
	Location    string
	CategoryID  uint
	NewCategory string // takes precedence over CategoryID when set
	Image       string // relative media path, empty keeps the current value
	IPAddress   string // for the audit trail
}

type CatalogService struct {
	db           *gorm.DB
	rdb          *redis.Client
	auditService *AuditService
	logger       *slog.Logger
}

func NewCatalogService(db *gorm.DB, rdb *redis.Client, auditService *AuditService, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		db:           db,
		rdb:          rdb,
		auditService: auditService,
		logger:       logger,
	}
}

// CanMutate reports whether the user may edit or delete the product.
// Anonymous visitors (nil user) can never mutate.
func CanMutate(user *models.User, product *models.Product) bool {
	return user != nil && product != nil && product.UserID == user.ID
}

// List returns products matching the filter. All provided filters
// combine with AND; the text query matches any of name, description or
// location. Result order is unspecified.
func (s *CatalogService) List(filter ListFilter) ([]models.Product, error) {
	q := s.db.Model(&models.Product{}).Preload("Category")

	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?", like, like, like)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a product by id, consulting the redis cache first
// when one is configured. Cache failures fall through to the database.
func (s *CatalogService) GetProduct(id uint) (*models.Product, error) {
	ctx := context.Background()
	key := productCacheKey(id)

	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var cached models.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var product models.Product
	if err := s.db.Preload("Category").Preload("Creator").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(product); err == nil {
			s.rdb.Set(ctx, key, data, productCacheTTL)
		}
	}

	return &product, nil
}

// CreateProduct stores a new listing for the user. A non-empty
// NewCategory creates that category first; otherwise the product binds
// to the existing CategoryID.
func (s *CatalogService) CreateProduct(userID uint, dto ProductDTO) (*models.Product, error) {
	var product models.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		category, err := s.resolveCategory(tx, dto.NewCategory, dto.CategoryID)
		if err != nil {
			return err
		}

		image := dto.Image
		if image == "" {
			image = models.DefaultProductImage
		}

		product = models.Product{
			Name:        dto.Name,
			Description: dto.Description,
			Price:       dto.Price,
			Location:    dto.Location,
			Image:       image,
			UserID:      userID,
			CategoryID:  category.ID,
		}
		return tx.Create(&product).Error
	})
	if err != nil {
		return nil, err
	}

	s.auditService.LogAction(&userID, "CREATE_PRODUCT", fmt.Sprint(product.ID), map[string]interface{}{
		"name": product.Name,
	}, dto.IPAddress)

	return &product, nil
}

// GetOwnedProduct fetches a product only when the user is its creator,
// reporting not-found otherwise.
func (s *CatalogService) GetOwnedProduct(userID, productID uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies the DTO to a product owned by the user.
func (s *CatalogService) UpdateProduct(userID, productID uint, dto ProductDTO) (*models.Product, error) {
	product, err := s.GetOwnedProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		product.Name = dto.Name
		product.Description = dto.Description
		product.Price = dto.Price
		product.Location = dto.Location

		if dto.NewCategory != "" || dto.CategoryID != 0 {
			category, err := s.resolveCategory(tx, dto.NewCategory, dto.CategoryID)
			if err != nil {
				return err
			}
			product.CategoryID = category.ID
		}

		if dto.Image != "" {
			product.Image = dto.Image
		}

		return tx.Save(product).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(productID)
	s.auditService.LogAction(&userID, "UPDATE_PRODUCT", fmt.Sprint(productID), nil, dto.IPAddress)

	return product, nil
}

// DeleteProduct removes a product owned by the user.
func (s *CatalogService) DeleteProduct(userID, productID uint, ip string) error {
	product, err := s.GetOwnedProduct(userID, productID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Product{}, product.ID).Error; err != nil {
		return err
	}

	s.invalidateCache(productID)
	s.auditService.LogAction(&userID, "DELETE_PRODUCT", fmt.Sprint(productID), nil, ip)

	return nil
}

// DeleteCategory removes a category together with its products, in one
// transaction so no product is left pointing at a missing category.
func (s *CatalogService) DeleteCategory(categoryID uint, ip string) error {
	var productIDs []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", categoryID).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, categoryID).Error
	})
	if err != nil {
		return err
	}

	for _, id := range productIDs {
		s.invalidateCache(id)
	}
	s.auditService.LogAction(nil, "DELETE_CATEGORY", fmt.Sprint(categoryID), nil, ip)

	return nil
}

// Categories returns all categories for form and filter population.
func (s *CatalogService) Categories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Locations returns the distinct locations of existing products.
// Products listed without a location do not contribute a blank option.
func (s *CatalogService) Locations() ([]string, error) {
	var locations []string
	if err := s.db.Model(&models.Product{}).Where("location <> ''").Distinct().Pluck("location", &locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *CatalogService) resolveCategory(tx *gorm.DB, newName string, categoryID uint) (*models.Category, error) {
	if newName != "" {
		category := models.Category{Name: newName}
		// Reuse an existing category of the same name rather than
		// tripping the unique constraint.
		err := tx.Where("name = ?", newName).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&category).Error; err != nil {
				return nil, err
			}
			return &category, nil
		}
		if err != nil {
			return nil, err
		}
		return &category, nil
	}

	var category models.Category
	if err := tx.First(&category, categoryID).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CatalogService) invalidateCache(id uint) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.Background(), productCacheKey(id)).Err(); err != nil {
		s.logger.Warn("Failed to invalidate product cache", "id", id, "error", err)
	}
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}
