package repository

import (
	"context"

	"salonmenu/internal/logger"
	"salonmenu/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type OwnerRepository struct {
	db *pgxpool.Pool
}

func NewOwnerRepository(db *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// UpsertOwner создаёт владельца или возвращает существующего с тем же email.
func (r *OwnerRepository) UpsertOwner(ctx context.Context, o *models.Owner) error {
	logger.Log.Debug("Создание/получение владельца (repo)", zap.String("email", o.Email))
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
INSERT INTO owners (id, email, business_name)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
RETURNING id, email, business_name, is_active, created_at`,
		o.ID, o.Email, o.BusinessName,
	).Scan(&o.ID, &o.Email, &o.BusinessName, &o.IsActive, &o.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания владельца (repo)", zap.String("email", o.Email), zap.Error(err))
		return classify(err)
	}
	return nil
}

func (r *OwnerRepository) GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error) {
	var o models.Owner
	err := r.db.QueryRow(ctx,
		`SELECT id, email, business_name, is_active, created_at FROM owners WHERE id=$1`, id,
	).Scan(&o.ID, &o.Email, &o.BusinessName, &o.IsActive, &o.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &o, nil
}
