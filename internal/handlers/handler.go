package handlers

import (
	"log/slog"

	"gobazaar/internal/config"
	"gobazaar/internal/services"

	"gorm.io/gorm"
)

type Handler struct {
	cfg            config.Config
	logger         *slog.Logger
	db             *gorm.DB
	tokenService   *services.TokenService
	accountService *services.AccountService
	catalogService *services.CatalogService
	mediaStore     *services.MediaStore
	auditService   *services.AuditService
	qrService      *services.QRService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	tokenService *services.TokenService,
	accountService *services.AccountService,
	catalogService *services.CatalogService,
	mediaStore *services.MediaStore,
	auditService *services.AuditService,
	qrService *services.QRService,
) *Handler {
	return &Handler{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		tokenService:   tokenService,
		accountService: accountService,
		catalogService: catalogService,
		mediaStore:     mediaStore,
		auditService:   auditService,
		qrService:      qrService,
	}
}
