package database_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/bizfish/tag-a-meal-app/pkg/database/databasetest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	gw      database.Gateway
	alice   entities.User
	bob     entities.User
	public  entities.Recipe
	private entities.Recipe
}

func setup(t *testing.T) fixture {
	db, gw := databasetest.Open(t)
	f := fixture{db: db, gw: gw}

	f.alice = entities.User{ID: uuid.New(), Email: "alice@example.com", Password: "x", FullName: "Alice", ShowAuthorName: true}
	f.bob = entities.User{ID: uuid.New(), Email: "bob@example.com", Password: "x", FullName: "Bob", ShowAuthorName: true}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)

	f.public = entities.Recipe{UserID: f.alice.ID, Title: "Public", Instructions: "mix", IsPublic: true}
	f.private = entities.Recipe{UserID: f.alice.ID, Title: "Private", Instructions: "mix"}
	require.NoError(t, db.Create(&f.public).Error)
	require.NoError(t, db.Create(&f.private).Error)
	return f
}

func titles(t *testing.T, tx *gorm.DB) []string {
	var got []string
	require.NoError(t, tx.Model(&entities.Recipe{}).Order("title").Pluck("title", &got).Error)
	return got
}

func TestRecipeVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Equal(t, []string{"Public"}, titles(t, f.gw.Anonymous(ctx)))
	assert.Equal(t, []string{"Public"}, titles(t, f.gw.AsUser(ctx, f.bob.ID.String())))
	assert.Equal(t, []string{"Private", "Public"}, titles(t, f.gw.AsUser(ctx, f.alice.ID.String())))
	assert.Equal(t, []string{"Private", "Public"}, titles(t, f.gw.Service(ctx)))

	var r entities.Recipe
	err := f.gw.AsUser(ctx, f.bob.ID.String()).First(&r, "id = ?", f.private.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, f.gw.Anonymous(ctx).Model(&entities.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSessionReuse(t *testing.T) {
	f := setup(t)
	tx := f.gw.AsUser(context.Background(), f.bob.ID.String())

	// the principal must survive several statements on the same session
	for i := 0; i < 3; i++ {
		assert.Equal(t, []string{"Public"}, titles(t, tx))
	}
}

func TestCreatePolicies(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("anonymous cannot write", func(t *testing.T) {
		err := f.gw.Anonymous(ctx).Create(&entities.Ingredient{Name: "Salt"}).Error
		assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)
	})

	t.Run("recipe must belong to caller", func(t *testing.T) {
		r := entities.Recipe{UserID: f.alice.ID, Title: "Forged", Instructions: "x"}
		err := f.gw.AsUser(ctx, f.bob.ID.String()).Create(&r).Error
		assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)
	})

	t.Run("own recipe is accepted", func(t *testing.T) {
		r := entities.Recipe{UserID: f.bob.ID, Title: "Mine", Instructions: "x"}
		assert.NoError(t, f.gw.AsUser(ctx, f.bob.ID.String()).Create(&r).Error)
	})

	t.Run("rating must belong to caller", func(t *testing.T) {
		rating := entities.RecipeRating{RecipeID: f.public.ID, UserID: f.alice.ID, Rating: 5}
		err := f.gw.AsUser(ctx, f.bob.ID.String()).Create(&rating).Error
		assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)
	})

	t.Run("links only on own recipes", func(t *testing.T) {
		tag := entities.Tag{Name: "Dinner", Color: "#000000"}
		require.NoError(t, f.db.Create(&tag).Error)

		err := f.gw.AsUser(ctx, f.bob.ID.String()).Create(&entities.RecipeTag{RecipeID: f.public.ID, TagID: tag.ID}).Error
		assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)

		err = f.gw.AsUser(ctx, f.alice.ID.String()).Create(&entities.RecipeTag{RecipeID: f.public.ID, TagID: tag.ID}).Error
		assert.NoError(t, err)
	})

	t.Run("profile row only for self", func(t *testing.T) {
		id := uuid.New()
		u := entities.User{ID: id, Email: "carol@example.com", Password: "x", ShowAuthorName: true}
		err := f.gw.AsUser(ctx, f.bob.ID.String()).Create(&u).Error
		assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)

		assert.NoError(t, f.gw.AsUser(ctx, id.String()).Create(&u).Error)
	})
}

func TestMutationsScopedToOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res := f.gw.AsUser(ctx, f.bob.ID.String()).
		Model(&entities.Recipe{}).Where("id = ?", f.public.ID).Update("title", "Hijacked")
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)

	res = f.gw.AsUser(ctx, f.alice.ID.String()).
		Model(&entities.Recipe{}).Where("id = ?", f.public.ID).Update("title", "Renamed")
	require.NoError(t, res.Error)
	assert.EqualValues(t, 1, res.RowsAffected)

	res = f.gw.AsUser(ctx, f.bob.ID.String()).Delete(&entities.Recipe{}, "id = ?", f.private.ID)
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)

	err := f.gw.Anonymous(ctx).Delete(&entities.Recipe{}, "id = ?", f.private.ID).Error
	assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)
}

func TestTransactionKeepsPrincipal(t *testing.T) {
	f := setup(t)

	err := f.gw.Transaction(context.Background(), database.User(f.bob.ID.String()), func(tx *gorm.DB) error {
		if got := titles(t, tx); len(got) != 1 {
			return fmt.Errorf("expected only the public recipe, got %v", got)
		}
		return tx.Create(&entities.Recipe{UserID: f.alice.ID, Title: "Forged", Instructions: "x"}).Error
	})
	assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)

	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Where("title = ?", "Forged").Count(&count).Error)
	assert.Zero(t, count)
}

func TestIsInsufficientPrivilege(t *testing.T) {
	assert.True(t, database.IsInsufficientPrivilege(database.ErrInsufficientPrivilege))
	assert.True(t, database.IsInsufficientPrivilege(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "42501"})))
	assert.False(t, database.IsInsufficientPrivilege(&pgconn.PgError{Code: "23505"}))
	assert.False(t, database.IsInsufficientPrivilege(gorm.ErrRecordNotFound))
}

func TestPrincipalOf(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Equal(t, database.Service(), database.PrincipalOf(f.db))
	assert.Equal(t, database.User("abc"), database.PrincipalOf(f.gw.AsUser(ctx, "abc")))
	assert.Equal(t, database.Anon(), database.PrincipalOf(f.gw.AsUser(ctx, "")))
}
