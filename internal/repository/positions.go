package repository

import (
	"context"
	"fmt"

	"salonmenu/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PositionTx — операции над позициями внутри одной транзакции хранилища.
type PositionTx interface {
	// LockParent блокирует родителя области до конца транзакции.
	// ErrNotFound, если родителя нет или он неактивен.
	LockParent(ctx context.Context, kind models.Kind, parentID uuid.UUID) error
	ListActive(ctx context.Context, kind models.Kind, parentID uuid.UUID) ([]models.Positioned, error)
	// SetPosition возвращает false, если строка (id, parent) не найдена среди активных.
	SetPosition(ctx context.Context, kind models.Kind, id, parentID uuid.UUID, position int) (bool, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scope описывает таблицу коллекции и её родителя. Значения только константы.
type scope struct {
	table        string
	parentColumn string
	parentTable  string
}

var scopes = map[models.Kind]scope{
	models.KindSection: {table: "sections", parentColumn: "owner_id", parentTable: "owners"},
	models.KindService: {table: "services", parentColumn: "section_id", parentTable: "sections"},
	models.KindPackage: {table: "packages", parentColumn: "section_id", parentTable: "sections"},
}

func scopeOf(kind models.Kind) (scope, error) {
	s, ok := scopes[kind]
	if !ok {
		return scope{}, fmt.Errorf("unknown collection kind %q", kind)
	}
	return s, nil
}

// pgPositions реализует PositionTx поверх pgx.Tx или пула.
type pgPositions struct {
	q querier
}

func (p pgPositions) LockParent(ctx context.Context, kind models.Kind, parentID uuid.UUID) error {
	s, err := scopeOf(kind)
	if err != nil {
		return err
	}
	var id uuid.UUID
	q := fmt.Sprintf(`SELECT id FROM %s WHERE id=$1 AND is_active FOR UPDATE`, s.parentTable)
	if err := p.q.QueryRow(ctx, q, parentID).Scan(&id); err != nil {
		return classify(err)
	}
	return nil
}

func (p pgPositions) ListActive(ctx context.Context, kind models.Kind, parentID uuid.UUID) ([]models.Positioned, error) {
	s, err := scopeOf(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT id, position FROM %s WHERE %s=$1 AND is_active ORDER BY position, id`,
		s.table, s.parentColumn)
	rows, err := p.q.Query(ctx, q, parentID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []models.Positioned{}
	for rows.Next() {
		var item models.Positioned
		if err := rows.Scan(&item.ID, &item.Position); err != nil {
			return nil, classify(err)
		}
		out = append(out, item)
	}
	return out, classify(rows.Err())
}

func (p pgPositions) SetPosition(ctx context.Context, kind models.Kind, id, parentID uuid.UUID, position int) (bool, error) {
	s, err := scopeOf(kind)
	if err != nil {
		return false, err
	}
	q := fmt.Sprintf(`UPDATE %s SET position=$1, updated_at=now() WHERE id=$2 AND %s=$3 AND is_active`,
		s.table, s.parentColumn)
	tag, err := p.q.Exec(ctx, q, position, id, parentID)
	if err != nil {
		return false, classify(err)
	}
	return tag.RowsAffected() == 1, nil
}
