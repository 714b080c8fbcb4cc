package repository

import (
	"context"
	"fmt"

	"salonmenu/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuRepository struct {
	db *pgxpool.Pool
}

func NewMenuRepository(db *pgxpool.Pool) *MenuRepository { return &MenuRepository{db: db} }

func (r *MenuRepository) Ping(ctx context.Context) error {
	return classify(r.db.Ping(ctx))
}

// InTx выполняет fn в одной транзакции; любая ошибка fn откатывает все записи.
func (r *MenuRepository) InTx(ctx context.Context, fn func(PositionTx) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(pgPositions{q: tx})
	})
}

// ListActive — активные дети области по возрастанию позиции.
// Неизвестный родитель не отличается от пустого.
func (r *MenuRepository) ListActive(ctx context.Context, kind models.Kind, parentID uuid.UUID) ([]models.Positioned, error) {
	return pgPositions{q: r.db}.ListActive(ctx, kind, parentID)
}

// SetPosition — одиночная запись позиции вне транзакции.
func (r *MenuRepository) SetPosition(ctx context.Context, kind models.Kind, id, parentID uuid.UUID, position int) (bool, error) {
	return pgPositions{q: r.db}.SetPosition(ctx, kind, id, parentID, position)
}

// ----- Sections -----

func (r *MenuRepository) GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	var s models.Section
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, COALESCE(description,''), position, is_active, created_at, updated_at
		 FROM sections WHERE id=$1 AND is_active`, id,
	).Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &s, nil
}

// CreateSection вставляет раздел. Position=0 — в конец списка владельца.
func (r *MenuRepository) CreateSection(ctx context.Context, s *models.Section) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
INSERT INTO sections (id, owner_id, name, description, position)
SELECT $1::uuid, o.id, $3::text, NULLIF($4::text,''),
       CASE WHEN $5::int > 0 THEN $5::int
            ELSE (SELECT COALESCE(MAX(position),0)+1 FROM sections WHERE owner_id=o.id AND is_active) END
FROM owners o
WHERE o.id=$2 AND o.is_active
RETURNING position, is_active, created_at, updated_at`,
		s.ID, s.OwnerID, s.Name, s.Description, s.Position,
	).Scan(&s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return classify(err)
}

// ----- Services -----

func (r *MenuRepository) CreateService(ctx context.Context, s *models.Service) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
INSERT INTO services (id, section_id, name, description, duration_minutes, price_cents, position)
SELECT $1::uuid, sec.id, $3::text, NULLIF($4::text,''), $5::int, $6::bigint,
       CASE WHEN $7::int > 0 THEN $7::int
            ELSE (SELECT COALESCE(MAX(position),0)+1 FROM services WHERE section_id=sec.id AND is_active) END
FROM sections sec
WHERE sec.id=$2 AND sec.is_active
RETURNING position, is_active, created_at, updated_at`,
		s.ID, s.SectionID, s.Name, s.Description, s.DurationMinutes, int64(s.Price), s.Position,
	).Scan(&s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return classify(err)
}

// ----- Packages -----

// CreatePackage вставляет пакет и его состав одной транзакцией.
// Все услуги должны быть активны и принадлежать тому же владельцу (раздел может быть любым).
func (r *MenuRepository) CreatePackage(ctx context.Context, ownerID uuid.UUID, p *models.Package) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	serviceIDs := uuidStrings(p.ServiceIDs)

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var found int
		if err := tx.QueryRow(ctx, `
SELECT COUNT(DISTINCT sv.id)
FROM services sv
JOIN sections sec ON sec.id = sv.section_id
WHERE sv.id = ANY($1::uuid[]) AND sv.is_active AND sec.is_active AND sec.owner_id=$2`,
			serviceIDs, ownerID,
		).Scan(&found); err != nil {
			return classify(err)
		}
		if found != len(serviceIDs) {
			return fmt.Errorf("%w: %d of %d services", ErrNotFound, len(serviceIDs)-found, len(serviceIDs))
		}

		err := tx.QueryRow(ctx, `
INSERT INTO packages (id, section_id, name, description, total_price_cents, total_duration_minutes, position)
SELECT $1::uuid, sec.id, $3::text, NULLIF($4::text,''), $5::bigint, $6::int,
       CASE WHEN $7::int > 0 THEN $7::int
            ELSE (SELECT COALESCE(MAX(position),0)+1 FROM packages WHERE section_id=sec.id AND is_active) END
FROM sections sec
WHERE sec.id=$2 AND sec.is_active
RETURNING position, is_active, created_at, updated_at`,
			p.ID, p.SectionID, p.Name, p.Description, int64(p.TotalPrice), p.DurationMinutes, p.Position,
		).Scan(&p.Position, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return classify(err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO package_memberships (package_id, service_id) SELECT $1::uuid, unnest($2::uuid[])`,
			p.ID, serviceIDs,
		); err != nil {
			return classify(err)
		}
		return nil
	})
}

// Deactivate снимает флаг активности. Повторный вызов не ошибка; соседей не перенумеровывает.
func (r *MenuRepository) Deactivate(ctx context.Context, kind models.Kind, parentID, id uuid.UUID) error {
	s, err := scopeOf(kind)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET is_active=false, updated_at=now() WHERE id=$1 AND %s=$2`,
		s.table, s.parentColumn)
	tag, err := r.db.Exec(ctx, q, id, parentID)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ----- Menu tree -----

// ListMenu собирает разделы владельца с услугами и пакетами.
// Читает в одной read-only транзакции repeatable read.
func (r *MenuRepository) ListMenu(ctx context.Context, ownerID uuid.UUID) (*models.Menu, error) {
	menu := &models.Menu{OwnerID: ownerID, Sections: []models.MenuSection{}}

	err := pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
SELECT id, owner_id, name, COALESCE(description,''), position, is_active, created_at, updated_at
FROM sections
WHERE owner_id=$1 AND is_active
ORDER BY position, id`, ownerID)
		if err != nil {
			return err
		}
		index := map[uuid.UUID]int{}
		for rows.Next() {
			var s models.Section
			if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
				rows.Close()
				return err
			}
			index[s.ID] = len(menu.Sections)
			menu.Sections = append(menu.Sections, models.MenuSection{
				Section:  s,
				Services: []models.Service{},
				Packages: []models.Package{},
			})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(menu.Sections) == 0 {
			return nil
		}

		if err := r.fillServices(ctx, tx, ownerID, menu, index); err != nil {
			return err
		}
		return r.fillPackages(ctx, tx, ownerID, menu, index)
	})
	if err != nil {
		return nil, classify(err)
	}
	return menu, nil
}

func (r *MenuRepository) fillServices(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, menu *models.Menu, index map[uuid.UUID]int) error {
	rows, err := tx.Query(ctx, `
SELECT sv.id, sv.section_id, sv.name, COALESCE(sv.description,''), sv.duration_minutes, sv.price_cents,
       sv.position, sv.is_active, sv.created_at, sv.updated_at
FROM services sv
JOIN sections sec ON sec.id = sv.section_id
WHERE sec.owner_id=$1 AND sec.is_active AND sv.is_active
ORDER BY sv.section_id, sv.position, sv.id`, ownerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s     models.Service
			cents int64
		)
		if err := rows.Scan(&s.ID, &s.SectionID, &s.Name, &s.Description, &s.DurationMinutes, &cents,
			&s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		s.Price = models.Money(cents)
		if i, ok := index[s.SectionID]; ok {
			menu.Sections[i].Services = append(menu.Sections[i].Services, s)
		}
	}
	return rows.Err()
}

func (r *MenuRepository) fillPackages(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, menu *models.Menu, index map[uuid.UUID]int) error {
	// состав пакета — активные услуги из активных разделов владельца
	rows, err := tx.Query(ctx, `
SELECT p.id, p.section_id, p.name, COALESCE(p.description,''), p.total_price_cents, p.total_duration_minutes,
       p.position, p.is_active, p.created_at, p.updated_at,
       COALESCE(ARRAY(
         SELECT pm.service_id::text
         FROM package_memberships pm
         JOIN services sv ON sv.id = pm.service_id AND sv.is_active
         JOIN sections msec ON msec.id = sv.section_id AND msec.is_active
         WHERE pm.package_id = p.id
         ORDER BY pm.service_id
       ), '{}')
FROM packages p
JOIN sections sec ON sec.id = p.section_id
WHERE sec.owner_id=$1 AND sec.is_active AND p.is_active
ORDER BY p.section_id, p.position, p.id`, ownerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p          models.Package
			cents      int64
			serviceIDs []string
		)
		if err := rows.Scan(&p.ID, &p.SectionID, &p.Name, &p.Description, &cents, &p.DurationMinutes,
			&p.Position, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &serviceIDs); err != nil {
			return err
		}
		p.TotalPrice = models.Money(cents)
		p.ServiceIDs = make([]uuid.UUID, 0, len(serviceIDs))
		for _, raw := range serviceIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("package %s: bad service id %q: %w", p.ID, raw, err)
			}
			p.ServiceIDs = append(p.ServiceIDs, id)
		}
		if i, ok := index[p.SectionID]; ok {
			menu.Sections[i].Packages = append(menu.Sections[i].Packages, p)
		}
	}
	return rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id.String())
	}
	return out
}
