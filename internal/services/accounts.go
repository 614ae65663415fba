package services

import (
	"errors"

	"gobazaar/internal/models"
	"gobazaar/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AccountService struct {
	db           *gorm.DB
	auditService *AuditService
	catalog      *CatalogService
}

func NewAccountService(db *gorm.DB, auditService *AuditService, catalog *CatalogService) *AccountService {
	return &AccountService{
		db:           db,
		auditService: auditService,
		catalog:      catalog,
	}
}

// Register creates a user with a hashed password and its default
// profile in a single transaction. A crash can never leave a user
// without a profile. Uniqueness rests on the username constraint
// alone, so concurrent registrations of the same name cannot race a
// separate existence check.
func (s *AccountService) Register(username, password, ip string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:         user.ID,
			ProfilePicture: models.DefaultProfilePicture,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	s.auditService.LogAction(&user.ID, "REGISTER", user.Username, nil, ip)

	return &user, nil
}

// Authenticate verifies the credentials and returns the user. Unknown
// username and wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetByUsername loads a user with its profile.
func (s *AccountService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAccount removes the user together with its profile and
// products. No-op when the id does not exist.
func (s *AccountService) DeleteAccount(userID uint, ip string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	var productIDs []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("user_id = ?", userID).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return err
	}

	// Cached detail pages must not outlive the listings.
	for _, id := range productIDs {
		s.catalog.invalidateCache(id)
	}

	s.auditService.LogAction(&userID, "DELETE_ACCOUNT", user.Username, nil, ip)

	return nil
}
