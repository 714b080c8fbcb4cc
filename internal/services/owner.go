package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"salonmenu/internal/logger"
	"salonmenu/internal/models"
	"salonmenu/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OwnerRepo interface {
	UpsertOwner(ctx context.Context, o *models.Owner) error
	GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error)
}

type OwnerService struct {
	repo      OwnerRepo
	jwtSecret string
	tokenTTL  time.Duration
}

// NewOwnerService: с пустым jwtSecret токены не выдаются.
func NewOwnerService(repo OwnerRepo, jwtSecret string, tokenTTL time.Duration) *OwnerService {
	return &OwnerService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register создаёт владельца или возвращает уже существующего с этим email.
// token пуст, если секрет не настроен.
func (s *OwnerService) Register(ctx context.Context, email, businessName string) (*models.Owner, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	businessName = strings.TrimSpace(businessName)
	if email == "" || businessName == "" {
		return nil, "", validationf("email and businessName are required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, "", validationf("invalid email %q", email)
	}

	owner := &models.Owner{Email: email, BusinessName: businessName}
	if err := s.repo.UpsertOwner(ctx, owner); err != nil {
		logger.WithCtx(ctx).Error("Ошибка создания владельца (service)", zap.String("email", email), zap.Error(err))
		return nil, "", err
	}

	if s.jwtSecret == "" {
		return owner, "", nil
	}
	token, err := utils.GenerateToken(s.jwtSecret, owner.ID, s.tokenTTL)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка генерации токена владельца", zap.Error(err))
		return nil, "", err
	}
	logger.WithCtx(ctx).Info("Владелец зарегистрирован (service)", zap.String("owner_id", owner.ID.String()))
	return owner, token, nil
}

// GetOwner возвращает владельца или repository.ErrNotFound.
func (s *OwnerService) GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error) {
	return s.repo.GetOwner(ctx, id)
}
