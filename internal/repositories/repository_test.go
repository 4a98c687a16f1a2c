package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storeapi/internal/config"
	"storeapi/internal/database"
	"storeapi/internal/models"
	"storeapi/internal/repositories"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.Database{
		Driver:     config.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, zap.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))
	return db
}

func productRepos(t *testing.T) map[string]func() repositories.ProductRepository {
	return map[string]func() repositories.ProductRepository{
		"gorm": func() repositories.ProductRepository {
			return repositories.NewGORMProductRepository(openSQLite(t))
		},
		"memory": func() repositories.ProductRepository {
			return repositories.NewMemoryProductRepository()
		},
	}
}

func userRepos(t *testing.T) map[string]func() repositories.UserRepository {
	return map[string]func() repositories.UserRepository{
		"gorm": func() repositories.UserRepository {
			return repositories.NewGORMUserRepository(openSQLite(t))
		},
		"memory": func() repositories.UserRepository {
			return repositories.NewMemoryUserRepository()
		},
	}
}

func seed(t *testing.T, repo repositories.ProductRepository, n int) []*models.Product {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*models.Product, 0, n)
	for i := 0; i < n; i++ {
		category := "Home"
		if i%2 == 0 {
			category = "Garden"
		}
		p := &models.Product{
			Name:      fmt.Sprintf("Product %02d", i),
			Price:     "9.99",
			Category:  category,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(context.Background(), p))
		out = append(out, p)
	}
	return out
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	for name, newRepo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()

			p := &models.Product{Name: "Lamp", Description: "Desk lamp", Price: "19.99", Category: "Home"}
			require.NoError(t, repo.Create(ctx, p))
			require.NotEmpty(t, p.ID)
			_, err := uuid.Parse(p.ID)
			assert.NoError(t, err)

			found, err := repo.FindByPK(ctx, p.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Lamp", found.Name)
			assert.Equal(t, "19.99", found.Price)

			missing, err := repo.FindByPK(ctx, uuid.NewString())
			assert.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestProductRepository_DuplicateName(t *testing.T) {
	for name, newRepo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()

			require.NoError(t, repo.Create(ctx, &models.Product{Name: "Lamp", Price: "1", Category: "Home"}))
			err := repo.Create(ctx, &models.Product{Name: "Lamp", Price: "2", Category: "Other"})
			assert.ErrorIs(t, err, repositories.ErrDuplicate)

			n, err := repo.Count(ctx, repositories.ProductFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestProductRepository_Exists(t *testing.T) {
	for name, newRepo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()
			products := seed(t, repo, 2)

			ok, err := repo.Exists(ctx, repositories.ProductFilter{Name: "Product 00"})
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = repo.Exists(ctx, repositories.ProductFilter{Name: "Product 00", ExcludeID: products[0].ID})
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = repo.Exists(ctx, repositories.ProductFilter{Name: "Product 00", ExcludeID: products[1].ID})
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = repo.Exists(ctx, repositories.ProductFilter{Name: "Nope"})
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestProductRepository_Update(t *testing.T) {
	for name, newRepo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()
			products := seed(t, repo, 2)

			p := *products[0]
			p.Price = "5.00"
			p.Description = ""
			require.NoError(t, repo.Update(ctx, &p))

			found, err := repo.FindByPK(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "5.00", found.Price)
			assert.Empty(t, found.Description)
			assert.Equal(t, "Product 00", found.Name)

			clash := *products[1]
			clash.Name = "Product 00"
			assert.ErrorIs(t, repo.Update(ctx, &clash), repositories.ErrDuplicate)

			ghost := models.Product{ID: uuid.NewString(), Name: "Ghost", Price: "1", Category: "Home"}
			assert.ErrorIs(t, repo.Update(ctx, &ghost), repositories.ErrNotFound)
		})
	}
}

func TestProductRepository_Delete(t *testing.T) {
	for name, newRepo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()
			products := seed(t, repo, 1)

			require.NoError(t, repo.Delete(ctx, products[0].ID))
			found, err := repo.FindByPK(ctx, products[0].ID)
			require.NoError(t, err)
			assert.Nil(t, found)

			assert.ErrorIs(t, repo.Delete(ctx, products[0].ID), repositories.ErrNotFound)
		})
	}
}

func TestProductRepository_CountAndPaginate(t *testing.T) {
	for name, newRepo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()
			seed(t, repo, 7)

			n, err := repo.Count(ctx, repositories.ProductFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(7), n)

			n, err = repo.Count(ctx, repositories.ProductFilter{Category: "Garden"})
			require.NoError(t, err)
			assert.Equal(t, int64(4), n)

			page, total, err := repo.Paginate(ctx, repositories.ProductFilter{}, 3, 3)
			require.NoError(t, err)
			assert.Equal(t, int64(7), total)
			assert.Equal(t, []string{"Product 03", "Product 04", "Product 05"}, names(page))

			page, total, err = repo.Paginate(ctx, repositories.ProductFilter{Category: "Home"}, 2, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			assert.Equal(t, []string{"Product 05"}, names(page))

			page, total, err = repo.Paginate(ctx, repositories.ProductFilter{}, 10, 20)
			require.NoError(t, err)
			assert.Equal(t, int64(7), total)
			assert.Empty(t, page)
		})
	}
}

func TestUserRepository(t *testing.T) {
	for name, newRepo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()

			u := &models.User{Email: "test@example.com", FullName: "Test User", Password: "hash"}
			require.NoError(t, repo.Create(ctx, u))
			require.NotEmpty(t, u.ID)

			found, err := repo.FindByEmail(ctx, "test@example.com")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, u.ID, found.ID)
			assert.Equal(t, "hash", found.Password)

			found, err = repo.FindByID(ctx, u.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "test@example.com", found.Email)

			missing, err := repo.FindByEmail(ctx, "nobody@example.com")
			assert.NoError(t, err)
			assert.Nil(t, missing)

			err = repo.Create(ctx, &models.User{Email: "test@example.com", FullName: "Other", Password: "hash"})
			assert.ErrorIs(t, err, repositories.ErrDuplicate)
		})
	}
}
