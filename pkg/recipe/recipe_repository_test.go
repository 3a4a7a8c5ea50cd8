package recipe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mockRepository(t *testing.T) (recipe.RecipeRepository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gw, err := database.NewGateway(db)
	require.NoError(t, err)
	return recipe.NewRecipeRepository(gw), mock
}

func TestRepositoryPropagatesQueryErrors(t *testing.T) {
	repo, mock := mockRepository(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "recipes"`).WillReturnError(errors.New("connection reset"))

	_, _, err := repo.ListRecipes(context.Background(), database.Service(), recipe.RecipeQuery{})
	assert.EqualError(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateMissingRow(t *testing.T) {
	repo, mock := mockRepository(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "recipes" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRecipe(context.Background(), database.Service(), id, map[string]any{"title": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryPolicyViolation(t *testing.T) {
	repo, mock := mockRepository(t)

	mock.ExpectExec(`DELETE FROM "recipes"`).WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied"})

	err := repo.DeleteRecipe(context.Background(), database.Service(), uuid.New())
	assert.True(t, database.IsInsufficientPrivilege(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAnonymousWriteNeverReachesDatabase(t *testing.T) {
	repo, mock := mockRepository(t)

	err := repo.DeleteRecipe(context.Background(), database.Anon(), uuid.New())
	assert.ErrorIs(t, err, database.ErrInsufficientPrivilege)
	require.NoError(t, mock.ExpectationsWereMet())
}
