package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gobazaar/internal/models"

	"gorm.io/gorm"
)

type AuditService struct {
	db     *gorm.DB
	logger *slog.Logger
	ch     chan models.AuditLog
}

func NewAuditService(db *gorm.DB, logger *slog.Logger) *AuditService {
	return &AuditService{
		db:     db,
		logger: logger,
		ch:     make(chan models.AuditLog, 100),
	}
}

// Start runs the persistence worker until the context is cancelled.
func (s *AuditService) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-s.ch:
			if err := s.db.Create(&entry).Error; err != nil {
				s.logger.Error("Failed to write audit log", "error", err)
			}
		}
	}
}

// LogAction enqueues an audit entry. Non-blocking: entries are dropped
// when the buffer is full.
func (s *AuditService) LogAction(userID *uint, action, entityID string, details interface{}, ip string) {
	detailBytes, _ := json.Marshal(details)

	entry := models.AuditLog{
		UserID:    userID,
		Action:    action,
		EntityID:  entityID,
		Details:   string(detailBytes),
		IPAddress: ip,
		Timestamp: time.Now(),
	}

	select {
	case s.ch <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping log", "action", action)
	}
}
