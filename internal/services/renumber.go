package services

import (
	"context"

	"salonmenu/internal/logger"
	"salonmenu/internal/models"
	"salonmenu/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PositionStore открывает транзакцию над позициями одной области.
type PositionStore interface {
	InTx(ctx context.Context, fn func(repository.PositionTx) error) error
}

// RenumberResult — сколько строк переставлено и сколько пропущено.
type RenumberResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Renumberer переписывает позиции области в порядке переданного списка.
//
// Запись в два прохода: сначала каждая строка уходит в полосу
// max(позиций)+len(ids)+1+i, которую не занимает ни одна активная строка,
// затем получает итоговую позицию i+1. Оба прохода идут в одной транзакции
// после блокировки родителя, поэтому конкурентные перестановки одной области
// выполняются по очереди, а читатели полосы смещения не видят.
type Renumberer struct {
	store PositionStore
}

func NewRenumberer(store PositionStore) *Renumberer {
	return &Renumberer{store: store}
}

// Apply ставит ids[i] на позицию i+1. Пустой список ничего не делает.
// Непустой список должен совпадать с множеством активных детей родителя.
func (r *Renumberer) Apply(ctx context.Context, kind models.Kind, parentID uuid.UUID, ids []uuid.UUID) (RenumberResult, error) {
	var res RenumberResult
	if !kind.Valid() {
		return res, validationf("unknown collection %q", kind)
	}
	if len(ids) == 0 {
		return res, nil
	}
	log := logger.WithCtx(ctx).With(
		zap.String("kind", string(kind)),
		zap.String("parent_id", parentID.String()),
	)

	err := r.store.InTx(ctx, func(tx repository.PositionTx) error {
		res = RenumberResult{}

		if err := tx.LockParent(ctx, kind, parentID); err != nil {
			return err
		}
		current, err := tx.ListActive(ctx, kind, parentID)
		if err != nil {
			return err
		}
		if err := checkFullSet(kind, current, ids); err != nil {
			return err
		}

		offset := len(ids) + 1
		for _, p := range current {
			if p.Position+len(ids)+1 > offset {
				offset = p.Position + len(ids) + 1
			}
		}

		skipped := map[uuid.UUID]bool{}
		for i, id := range ids {
			ok, err := tx.SetPosition(ctx, kind, id, parentID, offset+i)
			if err != nil {
				return err
			}
			if !ok {
				log.Warn("Строка не найдена при перестановке, пропуск",
					zap.String("id", id.String()), zap.String("phase", "displace"))
				skipped[id] = true
			}
		}
		for i, id := range ids {
			if skipped[id] {
				continue
			}
			ok, err := tx.SetPosition(ctx, kind, id, parentID, i+1)
			if err != nil {
				return err
			}
			if !ok {
				log.Warn("Строка не найдена при перестановке, пропуск",
					zap.String("id", id.String()), zap.String("phase", "settle"))
				skipped[id] = true
				continue
			}
			res.Updated++
		}
		res.Skipped = len(skipped)
		return nil
	})
	if err != nil {
		log.Error("Ошибка перестановки", zap.Error(err))
		return RenumberResult{}, err
	}

	log.Info("Порядок обновлён", zap.Int("updated", res.Updated), zap.Int("skipped", res.Skipped))
	return res, nil
}

// checkFullSet: без повторов, без чужих id, без пропущенных активных.
func checkFullSet(kind models.Kind, current []models.Positioned, ids []uuid.UUID) error {
	active := make(map[uuid.UUID]bool, len(current))
	for _, p := range current {
		active[p.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return validationf("duplicate id %s in %s order", id, kind)
		}
		seen[id] = true
		if !active[id] {
			return validationf("%s %s is not an active child of this %s", kind, id, kind.Parent())
		}
	}
	if len(ids) != len(current) {
		return validationf("%s order must list all %d active %s, got %d", kind, len(current), kind, len(ids))
	}
	return nil
}
