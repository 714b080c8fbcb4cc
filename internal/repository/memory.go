package repository

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"salonmenu/internal/models"

	"github.com/google/uuid"
)

// MemoryStore — хранилище в памяти с теми же правилами, что и схема postgres:
// уникальность (родитель, позиция) и (родитель, имя) среди активных строк,
// позиции >= 1, транзакции с откатом. Используется при STORAGE=memory и в тестах.
type MemoryStore struct {
	mu sync.RWMutex

	owners        map[uuid.UUID]models.Owner
	ownersByEmail map[string]uuid.UUID

	// slots — позиционная часть строк каждой коллекции
	slots map[models.Kind]map[uuid.UUID]*slot

	sections    map[uuid.UUID]models.Section
	services    map[uuid.UUID]models.Service
	packages    map[uuid.UUID]models.Package
	memberships map[uuid.UUID][]uuid.UUID
}

type slot struct {
	parent   uuid.UUID
	name     string
	position int
	active   bool
	updated  time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owners:        map[uuid.UUID]models.Owner{},
		ownersByEmail: map[string]uuid.UUID{},
		slots: map[models.Kind]map[uuid.UUID]*slot{
			models.KindSection: {},
			models.KindService: {},
			models.KindPackage: {},
		},
		sections:    map[uuid.UUID]models.Section{},
		services:    map[uuid.UUID]models.Service{},
		packages:    map[uuid.UUID]models.Package{},
		memberships: map[uuid.UUID][]uuid.UUID{},
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// ----- positions -----

type undo struct {
	kind     models.Kind
	id       uuid.UUID
	position int
}

// memTx работает под уже взятой блокировкой записи.
type memTx struct {
	m   *MemoryStore
	log []undo
}

// InTx держит блокировку записи до конца fn: читатели видят состояние
// только до или после транзакции. При ошибке позиции откатываются.
func (m *MemoryStore) InTx(ctx context.Context, fn func(PositionTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{m: m}
	if err := fn(tx); err != nil {
		for i := len(tx.log) - 1; i >= 0; i-- {
			u := tx.log[i]
			m.slots[u.kind][u.id].position = u.position
		}
		return err
	}
	return nil
}

func (t *memTx) LockParent(ctx context.Context, kind models.Kind, parentID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	if !t.m.parentActiveLocked(kind, parentID) {
		return ErrNotFound
	}
	return nil
}

func (t *memTx) ListActive(ctx context.Context, kind models.Kind, parentID uuid.UUID) ([]models.Positioned, error) {
	return t.m.listActiveLocked(kind, parentID)
}

func (t *memTx) SetPosition(ctx context.Context, kind models.Kind, id, parentID uuid.UUID, position int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	old, ok, err := t.m.setPositionLocked(kind, id, parentID, position)
	if err != nil || !ok {
		return ok, err
	}
	t.log = append(t.log, undo{kind: kind, id: id, position: old})
	return true, nil
}

func (m *MemoryStore) ListActive(ctx context.Context, kind models.Kind, parentID uuid.UUID) ([]models.Positioned, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listActiveLocked(kind, parentID)
}

func (m *MemoryStore) SetPosition(ctx context.Context, kind models.Kind, id, parentID uuid.UUID, position int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok, err := m.setPositionLocked(kind, id, parentID, position)
	return ok, err
}

func (m *MemoryStore) parentActiveLocked(kind models.Kind, parentID uuid.UUID) bool {
	if kind == models.KindSection {
		o, ok := m.owners[parentID]
		return ok && o.IsActive
	}
	s, ok := m.slots[models.KindSection][parentID]
	return ok && s.active
}

func (m *MemoryStore) listActiveLocked(kind models.Kind, parentID uuid.UUID) ([]models.Positioned, error) {
	rows, ok := m.slots[kind]
	if !ok {
		return nil, fmt.Errorf("unknown collection kind %q", kind)
	}
	out := []models.Positioned{}
	for id, s := range rows {
		if s.active && s.parent == parentID {
			out = append(out, models.Positioned{ID: id, Position: s.position})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (m *MemoryStore) setPositionLocked(kind models.Kind, id, parentID uuid.UUID, position int) (old int, ok bool, err error) {
	rows, known := m.slots[kind]
	if !known {
		return 0, false, fmt.Errorf("unknown collection kind %q", kind)
	}
	s, found := rows[id]
	if !found || !s.active || s.parent != parentID {
		return 0, false, nil
	}
	if err := m.checkSlotLocked(kind, id, parentID, s.name, position); err != nil {
		return 0, false, err
	}
	old = s.position
	s.position = position
	s.updated = time.Now()
	return old, true, nil
}

// checkSlotLocked повторяет ограничения схемы для активной строки id.
func (m *MemoryStore) checkSlotLocked(kind models.Kind, id, parentID uuid.UUID, name string, position int) error {
	if position < 1 {
		return fmt.Errorf("%w: %s position must be >= 1", ErrConstraintViolation, kind)
	}
	for otherID, other := range m.slots[kind] {
		if otherID == id || !other.active || other.parent != parentID {
			continue
		}
		if other.position == position {
			return fmt.Errorf("%w: %s %s already holds position %d", ErrConstraintViolation, kind, otherID, position)
		}
		if other.name == name {
			return fmt.Errorf("%w: %s name %q is taken", ErrConstraintViolation, kind, name)
		}
	}
	return nil
}

func (m *MemoryStore) nextPositionLocked(kind models.Kind, parentID uuid.UUID) int {
	max := 0
	for _, s := range m.slots[kind] {
		if s.active && s.parent == parentID && s.position > max {
			max = s.position
		}
	}
	return max + 1
}

// insertSlotLocked проверяет родителя и ограничения, затем добавляет строку.
func (m *MemoryStore) insertSlotLocked(kind models.Kind, id, parentID uuid.UUID, name string, position int) (int, time.Time, error) {
	if !m.parentActiveLocked(kind, parentID) {
		return 0, time.Time{}, fmt.Errorf("%w: %s %s", ErrNotFound, kind.Parent(), parentID)
	}
	if position <= 0 {
		position = m.nextPositionLocked(kind, parentID)
	}
	if _, exists := m.slots[kind][id]; exists {
		return 0, time.Time{}, fmt.Errorf("%w: duplicate id %s", ErrConstraintViolation, id)
	}
	if err := m.checkSlotLocked(kind, id, parentID, name, position); err != nil {
		return 0, time.Time{}, err
	}
	now := time.Now()
	m.slots[kind][id] = &slot{parent: parentID, name: name, position: position, active: true, updated: now}
	return position, now, nil
}

// ----- owners -----

func (m *MemoryStore) UpsertOwner(ctx context.Context, o *models.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.ownersByEmail[o.Email]; ok {
		*o = m.owners[id]
		return nil
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.IsActive = true
	o.CreatedAt = time.Now()
	m.owners[o.ID] = *o
	m.ownersByEmail[o.Email] = o.ID
	return nil
}

func (m *MemoryStore) GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.owners[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

// ----- entities -----

func (m *MemoryStore) GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.slots[models.KindSection][id]
	if !ok || !s.active {
		return nil, ErrNotFound
	}
	sec := m.sectionLocked(id)
	return &sec, nil
}

func (m *MemoryStore) CreateSection(ctx context.Context, s *models.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	pos, now, err := m.insertSlotLocked(models.KindSection, s.ID, s.OwnerID, s.Name, s.Position)
	if err != nil {
		return err
	}
	s.Position, s.IsActive, s.CreatedAt, s.UpdatedAt = pos, true, now, now
	m.sections[s.ID] = *s
	return nil
}

func (m *MemoryStore) CreateService(ctx context.Context, s *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.DurationMinutes <= 0 || s.Price < 0 {
		return fmt.Errorf("%w: duration must be > 0 and price >= 0", ErrConstraintViolation)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	pos, now, err := m.insertSlotLocked(models.KindService, s.ID, s.SectionID, s.Name, s.Position)
	if err != nil {
		return err
	}
	s.Position, s.IsActive, s.CreatedAt, s.UpdatedAt = pos, true, now, now
	m.services[s.ID] = *s
	return nil
}

func (m *MemoryStore) CreatePackage(ctx context.Context, ownerID uuid.UUID, p *models.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.DurationMinutes <= 0 || p.TotalPrice < 0 {
		return fmt.Errorf("%w: duration must be > 0 and price >= 0", ErrConstraintViolation)
	}

	members := make([]uuid.UUID, 0, len(p.ServiceIDs))
	seen := map[uuid.UUID]bool{}
	for _, sid := range p.ServiceIDs {
		if seen[sid] {
			continue
		}
		seen[sid] = true
		svc, ok := m.slots[models.KindService][sid]
		if !ok || !svc.active {
			return fmt.Errorf("%w: service %s", ErrNotFound, sid)
		}
		sec, ok := m.slots[models.KindSection][svc.parent]
		if !ok || !sec.active || sec.parent != ownerID {
			return fmt.Errorf("%w: service %s", ErrNotFound, sid)
		}
		members = append(members, sid)
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	pos, now, err := m.insertSlotLocked(models.KindPackage, p.ID, p.SectionID, p.Name, p.Position)
	if err != nil {
		return err
	}
	p.Position, p.IsActive, p.CreatedAt, p.UpdatedAt = pos, true, now, now
	p.ServiceIDs = members
	m.packages[p.ID] = *p
	m.memberships[p.ID] = members
	return nil
}

func (m *MemoryStore) Deactivate(ctx context.Context, kind models.Kind, parentID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.slots[kind]
	if !ok {
		return fmt.Errorf("unknown collection kind %q", kind)
	}
	s, ok := rows[id]
	if !ok || s.parent != parentID {
		return ErrNotFound
	}
	if s.active {
		s.active = false
		s.updated = time.Now()
	}
	return nil
}

// ListMenu — тот же снимок, что и у postgres-репозитория.
func (m *MemoryStore) ListMenu(ctx context.Context, ownerID uuid.UUID) (*models.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	menu := &models.Menu{OwnerID: ownerID, Sections: []models.MenuSection{}}
	sections, _ := m.listActiveLocked(models.KindSection, ownerID)
	for _, sp := range sections {
		ms := models.MenuSection{
			Section:  m.sectionLocked(sp.ID),
			Services: []models.Service{},
			Packages: []models.Package{},
		}

		services, _ := m.listActiveLocked(models.KindService, sp.ID)
		for _, p := range services {
			svc := m.services[p.ID]
			m.applySlotLocked(models.KindService, p.ID, &svc.Position, &svc.IsActive, &svc.UpdatedAt)
			ms.Services = append(ms.Services, svc)
		}

		packages, _ := m.listActiveLocked(models.KindPackage, sp.ID)
		for _, p := range packages {
			pkg := m.packages[p.ID]
			m.applySlotLocked(models.KindPackage, p.ID, &pkg.Position, &pkg.IsActive, &pkg.UpdatedAt)
			pkg.ServiceIDs = m.activeMembersLocked(p.ID)
			ms.Packages = append(ms.Packages, pkg)
		}

		menu.Sections = append(menu.Sections, ms)
	}
	return menu, nil
}

func (m *MemoryStore) sectionLocked(id uuid.UUID) models.Section {
	sec := m.sections[id]
	m.applySlotLocked(models.KindSection, id, &sec.Position, &sec.IsActive, &sec.UpdatedAt)
	return sec
}

func (m *MemoryStore) applySlotLocked(kind models.Kind, id uuid.UUID, position *int, active *bool, updated *time.Time) {
	if s, ok := m.slots[kind][id]; ok {
		*position, *active, *updated = s.position, s.active, s.updated
	}
}

func (m *MemoryStore) activeMembersLocked(packageID uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	for _, sid := range m.memberships[packageID] {
		s, ok := m.slots[models.KindService][sid]
		if !ok || !s.active {
			continue
		}
		if sec, ok := m.slots[models.KindSection][s.parent]; !ok || !sec.active {
			continue
		}
		out = append(out, sid)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
