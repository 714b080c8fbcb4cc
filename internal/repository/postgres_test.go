package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"salonmenu/internal/models"
	"salonmenu/internal/repository"
	"salonmenu/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MENU_TEST_DATABASE_URL указывает на пустую тестовую базу; таблицы меню очищаются.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	url := os.Getenv("MENU_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MENU_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, repository.ApplyMigrations(ctx, pool))
	// повторный запуск ничего не делает
	require.NoError(t, repository.ApplyMigrations(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE owners CASCADE`)
	require.NoError(t, err)
	return pool
}

func pgOwner(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	o := &models.Owner{Email: uuid.NewString() + "@salon.test", BusinessName: "Salon"}
	require.NoError(t, repository.NewOwnerRepository(pool).UpsertOwner(context.Background(), o))
	return o.ID
}

func TestPostgres_OwnerUpsert(t *testing.T) {
	pool := openTestDB(t)
	repo := repository.NewOwnerRepository(pool)
	ctx := context.Background()

	a := &models.Owner{Email: "same@salon.test", BusinessName: "A"}
	require.NoError(t, repo.UpsertOwner(ctx, a))
	b := &models.Owner{Email: "same@salon.test", BusinessName: "B"}
	require.NoError(t, repo.UpsertOwner(ctx, b))
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "A", b.BusinessName)

	_, err := repo.GetOwner(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgres_ReorderAndConstraints(t *testing.T) {
	pool := openTestDB(t)
	repo := repository.NewMenuRepository(pool)
	ctx := context.Background()
	owner := pgOwner(t, pool)

	var ids []uuid.UUID
	for _, name := range []string{"X", "Y", "Z"} {
		s := &models.Section{OwnerID: owner, Name: name}
		require.NoError(t, repo.CreateSection(ctx, s))
		ids = append(ids, s.ID)
	}

	err := repo.CreateSection(ctx, &models.Section{OwnerID: owner, Name: "W", Position: 2})
	assert.ErrorIs(t, err, repository.ErrConstraintViolation)
	err = repo.CreateSection(ctx, &models.Section{OwnerID: owner, Name: "X"})
	assert.ErrorIs(t, err, repository.ErrConstraintViolation)
	err = repo.CreateSection(ctx, &models.Section{OwnerID: uuid.New(), Name: "Ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.SetPosition(ctx, models.KindSection, ids[2], owner, 1)
	assert.ErrorIs(t, err, repository.ErrConstraintViolation)

	res, err := services.NewRenumberer(repo).Apply(ctx, models.KindSection, owner, []uuid.UUID{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Updated)

	rows, err := repo.ListActive(ctx, models.KindSection, owner)
	require.NoError(t, err)
	assert.Equal(t, []models.Positioned{{ID: ids[2], Position: 1}, {ID: ids[0], Position: 2}, {ID: ids[1], Position: 3}}, rows)

	require.NoError(t, repo.Deactivate(ctx, models.KindSection, owner, ids[0]))
	require.NoError(t, repo.Deactivate(ctx, models.KindSection, owner, ids[0]))
	rows, err = repo.ListActive(ctx, models.KindSection, owner)
	require.NoError(t, err)
	assert.Equal(t, []models.Positioned{{ID: ids[2], Position: 1}, {ID: ids[1], Position: 3}}, rows)

	// позиция удалённой строки снова свободна
	require.NoError(t, repo.CreateSection(ctx, &models.Section{OwnerID: owner, Name: "X", Position: 2}))
}

func TestPostgres_PackageMembershipAcrossSections(t *testing.T) {
	pool := openTestDB(t)
	repo := repository.NewMenuRepository(pool)
	ctx := context.Background()
	owner := pgOwner(t, pool)

	hair := &models.Section{OwnerID: owner, Name: "Hair"}
	deals := &models.Section{OwnerID: owner, Name: "Deals"}
	require.NoError(t, repo.CreateSection(ctx, hair))
	require.NoError(t, repo.CreateSection(ctx, deals))

	var serviceIDs []uuid.UUID
	for _, name := range []string{"Cut", "Color"} {
		s := &models.Service{SectionID: hair.ID, Name: name, DurationMinutes: 30, Price: 2550}
		require.NoError(t, repo.CreateService(ctx, s))
		serviceIDs = append(serviceIDs, s.ID)
	}

	p := &models.Package{SectionID: deals.ID, Name: "Makeover", TotalPrice: 4500, DurationMinutes: 60, ServiceIDs: serviceIDs}
	require.NoError(t, repo.CreatePackage(ctx, owner, p))

	stranger := pgOwner(t, pool)
	err := repo.CreatePackage(ctx, stranger, &models.Package{SectionID: deals.ID, Name: "Steal", DurationMinutes: 60, ServiceIDs: serviceIDs})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	menu, err := repo.ListMenu(ctx, owner)
	require.NoError(t, err)
	require.Len(t, menu.Sections, 2)
	assert.Equal(t, hair.ID, menu.Sections[0].ID)
	require.Len(t, menu.Sections[0].Services, 2)
	assert.Equal(t, models.Money(2550), menu.Sections[0].Services[0].Price)
	require.Len(t, menu.Sections[1].Packages, 1)
	assert.ElementsMatch(t, serviceIDs, menu.Sections[1].Packages[0].ServiceIDs)

	// услуги удалённого раздела пропадают и из состава пакета
	require.NoError(t, repo.Deactivate(ctx, models.KindSection, owner, hair.ID))
	menu, err = repo.ListMenu(ctx, owner)
	require.NoError(t, err)
	require.Len(t, menu.Sections, 1)
	require.Len(t, menu.Sections[0].Packages, 1)
	assert.Empty(t, menu.Sections[0].Packages[0].ServiceIDs)
}

func TestPostgres_ConcurrentReordersStayUnique(t *testing.T) {
	pool := openTestDB(t)
	repo := repository.NewMenuRepository(pool)
	ctx := context.Background()
	owner := pgOwner(t, pool)
	section := &models.Section{OwnerID: owner, Name: "Hair"}
	require.NoError(t, repo.CreateSection(ctx, section))

	var ids []uuid.UUID
	for i := 0; i < 8; i++ {
		s := &models.Service{SectionID: section.ID, Name: uuid.NewString(), DurationMinutes: 15}
		require.NoError(t, repo.CreateService(ctx, s))
		ids = append(ids, s.ID)
	}
	backward := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		backward[len(ids)-1-i] = id
	}

	r := services.NewRenumberer(repo)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		list := ids
		if i%2 == 1 {
			list = backward
		}
		wg.Add(1)
		go func(list []uuid.UUID) {
			defer wg.Done()
			_, err := r.Apply(ctx, models.KindService, section.ID, list)
			assert.NoError(t, err)
		}(list)
	}
	wg.Wait()

	rows, err := repo.ListActive(ctx, models.KindService, section.ID)
	require.NoError(t, err)
	require.Len(t, rows, len(ids))
	for i, row := range rows {
		assert.Equal(t, i+1, row.Position)
	}
}
