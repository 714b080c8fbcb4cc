package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonmenu/internal/events"
	"salonmenu/internal/logger"
	"salonmenu/internal/models"
	"salonmenu/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MenuStore — хранилище меню: postgres-репозиторий или MemoryStore.
type MenuStore interface {
	PositionStore
	Ping(ctx context.Context) error
	GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error)
	CreateSection(ctx context.Context, s *models.Section) error
	CreateService(ctx context.Context, s *models.Service) error
	CreatePackage(ctx context.Context, ownerID uuid.UUID, p *models.Package) error
	Deactivate(ctx context.Context, kind models.Kind, parentID, id uuid.UUID) error
	ListMenu(ctx context.Context, ownerID uuid.UUID) (*models.Menu, error)
}

// MenuCache — кэш снимков меню с поколениями. Get отдаёт поколение, под которым
// Set может записать прочитанное меню; Invalidate начинает новое поколение.
type MenuCache interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*models.Menu, int64, bool)
	Set(ctx context.Context, ownerID uuid.UUID, gen int64, menu *models.Menu)
	Invalidate(ctx context.Context, ownerID uuid.UUID)
}

const publishTimeout = 5 * time.Second

// MaxPosition — верхняя граница явного order при создании; смещение перенумерации
// max+len+1 должно оставаться в пределах INTEGER.
const MaxPosition = 1_000_000

type MenuService struct {
	store  MenuStore
	renum  *Renumberer
	cache  MenuCache
	events events.Publisher
}

// NewMenuService: cache и publisher могут быть nil.
func NewMenuService(store MenuStore, cache MenuCache, publisher events.Publisher) *MenuService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &MenuService{
		store:  store,
		renum:  NewRenumberer(store),
		cache:  cache,
		events: publisher,
	}
}

func (s *MenuService) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

// ----- read model -----

// GetMenu возвращает снимок меню; второй результат — попадание в кэш.
func (s *MenuService) GetMenu(ctx context.Context, ownerID uuid.UUID) (*models.Menu, bool, error) {
	var gen int64
	if s.cache != nil {
		menu, g, ok := s.cache.Get(ctx, ownerID)
		if ok {
			return menu, true, nil
		}
		gen = g
	}
	menu, err := s.store.ListMenu(ctx, ownerID)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка чтения меню (service)", zap.Error(err))
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, ownerID, gen, menu)
	}
	return menu, false, nil
}

// SectionOwner — владелец активного раздела.
func (s *MenuService) SectionOwner(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	sec, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return uuid.Nil, err
	}
	return sec.OwnerID, nil
}

// ----- reorder -----

func (s *MenuService) ReorderSections(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (RenumberResult, error) {
	return s.reorder(ctx, ownerID, models.KindSection, ownerID, ids)
}

func (s *MenuService) ReorderServices(ctx context.Context, ownerID, sectionID uuid.UUID, ids []uuid.UUID) (RenumberResult, error) {
	if err := s.checkSection(ctx, ownerID, sectionID); err != nil {
		return RenumberResult{}, err
	}
	return s.reorder(ctx, ownerID, models.KindService, sectionID, ids)
}

func (s *MenuService) ReorderPackages(ctx context.Context, ownerID, sectionID uuid.UUID, ids []uuid.UUID) (RenumberResult, error) {
	if err := s.checkSection(ctx, ownerID, sectionID); err != nil {
		return RenumberResult{}, err
	}
	return s.reorder(ctx, ownerID, models.KindPackage, sectionID, ids)
}

func (s *MenuService) reorder(ctx context.Context, ownerID uuid.UUID, kind models.Kind, parentID uuid.UUID, ids []uuid.UUID) (RenumberResult, error) {
	res, err := s.renum.Apply(ctx, kind, parentID, ids)
	if err != nil {
		return res, err
	}
	if len(ids) > 0 {
		s.changed(ctx, ownerID, kind, parentID, events.ActionReordered, ids)
	}
	return res, nil
}

// ----- create -----

func (s *MenuService) CreateSection(ctx context.Context, sec *models.Section) error {
	sec.Name = strings.TrimSpace(sec.Name)
	if sec.Name == "" {
		return validationf("name is required")
	}
	if err := checkPosition(sec.Position); err != nil {
		return err
	}
	if err := s.store.CreateSection(ctx, sec); err != nil {
		logger.WithCtx(ctx).Warn("Ошибка создания раздела (service)", zap.String("name", sec.Name), zap.Error(err))
		return err
	}
	s.changed(ctx, sec.OwnerID, models.KindSection, sec.OwnerID, events.ActionCreated, []uuid.UUID{sec.ID})
	return nil
}

func (s *MenuService) CreateService(ctx context.Context, ownerID uuid.UUID, svc *models.Service) error {
	svc.Name = strings.TrimSpace(svc.Name)
	switch {
	case svc.Name == "":
		return validationf("name is required")
	case svc.DurationMinutes <= 0:
		return validationf("duration must be a positive number of minutes")
	case svc.Price < 0:
		return validationf("price must be >= 0")
	}
	if err := checkPosition(svc.Position); err != nil {
		return err
	}
	if err := s.checkSection(ctx, ownerID, svc.SectionID); err != nil {
		return err
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		logger.WithCtx(ctx).Warn("Ошибка создания услуги (service)", zap.String("name", svc.Name), zap.Error(err))
		return err
	}
	s.changed(ctx, ownerID, models.KindService, svc.SectionID, events.ActionCreated, []uuid.UUID{svc.ID})
	return nil
}

// CreatePackage создаёт пакет в разделе. ownerID может быть uuid.Nil:
// тогда владелец берётся из раздела.
func (s *MenuService) CreatePackage(ctx context.Context, ownerID uuid.UUID, p *models.Package) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return validationf("name is required")
	case len(p.ServiceIDs) == 0:
		return validationf("serviceIds must not be empty")
	case p.DurationMinutes <= 0:
		return validationf("duration must be a positive number of minutes")
	case p.TotalPrice < 0:
		return validationf("totalPrice must be >= 0")
	}
	if err := checkPosition(p.Position); err != nil {
		return err
	}

	sectionOwner, err := s.SectionOwner(ctx, p.SectionID)
	if err != nil {
		return err
	}
	if ownerID != uuid.Nil && ownerID != sectionOwner {
		return fmt.Errorf("%w: section %s", repository.ErrNotFound, p.SectionID)
	}

	if err := s.store.CreatePackage(ctx, sectionOwner, p); err != nil {
		logger.WithCtx(ctx).Warn("Ошибка создания пакета (service)", zap.String("name", p.Name), zap.Error(err))
		return err
	}
	s.changed(ctx, sectionOwner, models.KindPackage, p.SectionID, events.ActionCreated, []uuid.UUID{p.ID})
	return nil
}

// ----- delete -----

func (s *MenuService) DeleteSection(ctx context.Context, ownerID, sectionID uuid.UUID) error {
	return s.deactivate(ctx, ownerID, models.KindSection, ownerID, sectionID)
}

func (s *MenuService) DeleteService(ctx context.Context, ownerID, sectionID, id uuid.UUID) error {
	if err := s.checkSection(ctx, ownerID, sectionID); err != nil {
		return err
	}
	return s.deactivate(ctx, ownerID, models.KindService, sectionID, id)
}

func (s *MenuService) DeletePackage(ctx context.Context, ownerID, sectionID, id uuid.UUID) error {
	if err := s.checkSection(ctx, ownerID, sectionID); err != nil {
		return err
	}
	return s.deactivate(ctx, ownerID, models.KindPackage, sectionID, id)
}

func (s *MenuService) deactivate(ctx context.Context, ownerID uuid.UUID, kind models.Kind, parentID, id uuid.UUID) error {
	if err := s.store.Deactivate(ctx, kind, parentID, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.WithCtx(ctx).Error("Ошибка удаления (service)", zap.String("kind", string(kind)), zap.Error(err))
		}
		return err
	}
	s.changed(ctx, ownerID, kind, parentID, events.ActionDeactivated, []uuid.UUID{id})
	return nil
}

// ----- helpers -----

func checkPosition(pos int) error {
	if pos < 0 || pos > MaxPosition {
		return validationf("order must be between 0 and %d", MaxPosition)
	}
	return nil
}

// checkSection: раздел активен и принадлежит владельцу, иначе ErrNotFound.
func (s *MenuService) checkSection(ctx context.Context, ownerID, sectionID uuid.UUID) error {
	sec, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return err
	}
	if sec.OwnerID != ownerID {
		return fmt.Errorf("%w: section %s", repository.ErrNotFound, sectionID)
	}
	return nil
}

// changed сбрасывает кэш владельца и публикует событие. Ошибки публикации только логируются.
func (s *MenuService) changed(ctx context.Context, ownerID uuid.UUID, kind models.Kind, parentID uuid.UUID, action events.Action, ids []uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownerID)
	}

	ev := events.MenuChangedEvent{
		OwnerID:    ownerID,
		Kind:       kind,
		ParentID:   parentID,
		Action:     action,
		IDs:        ids,
		OccurredAt: time.Now().UTC(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pubCtx, ev); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось опубликовать событие меню",
			zap.String("action", string(action)), zap.Error(err))
	}
}
