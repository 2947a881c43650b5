package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/userapp/internal/models"
)

func newTestDB(t *testing.T) (*JSONDB, string) {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), "db_test.json")

	theStorage, err := New(fileName)
	require.NoError(t, err)
	require.NotNil(t, theStorage)

	return theStorage, fileName
}

func Test(t *testing.T) {
	t.Run("The base jsondb package test", func(t *testing.T) {
		ctx := context.Background()
		theStorage, _ := newTestDB(t)
		defer func() {
			require.NoError(t, theStorage.Close())
		}()

		users, err := theStorage.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)

		bob, err := theStorage.Save(ctx, models.User{Forename: "bob", Surname: "lee", Age: 22})
		require.NoError(t, err)
		assert.Equal(t, 1, bob.ID)

		fred, err := theStorage.Save(ctx, models.User{Forename: "fred", Surname: "see", Age: 25})
		require.NoError(t, err)
		assert.Equal(t, 2, fred.ID)

		found, ok, err := theStorage.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, bob, found)

		exists, err := theStorage.ExistsByID(ctx, 3)
		require.NoError(t, err)
		assert.False(t, exists)

		bob.Age = 23
		saved, err := theStorage.Save(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, bob, saved)

		users, err = theStorage.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.User{bob, fred}, users)

		require.NoError(t, theStorage.DeleteByID(ctx, 1))
		require.NoError(t, theStorage.DeleteByID(ctx, 1))

		_, ok, err = theStorage.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, theStorage.Ping(ctx))
	})
}

func TestSaveWithUnknownIDAssignsNewOne(t *testing.T) {
	theStorage, _ := newTestDB(t)

	saved, err := theStorage.Save(context.Background(), models.User{ID: 77, Forename: "ann", Surname: "doe", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.ID)
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	theStorage, fileName := newTestDB(t)

	_, err := theStorage.Save(ctx, models.User{Forename: "bob", Surname: "lee", Age: 22})
	require.NoError(t, err)
	_, err = theStorage.Save(ctx, models.User{Forename: "fred", Surname: "see", Age: 25})
	require.NoError(t, err)
	require.NoError(t, theStorage.DeleteByID(ctx, 2))
	require.NoError(t, theStorage.Close())

	reopened, err := New(fileName)
	require.NoError(t, err)

	users, err := reopened.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: 1, Forename: "bob", Surname: "lee", Age: 22}}, users)

	// deleted ids are not reused
	next, err := reopened.Save(ctx, models.User{Forename: "ann", Surname: "doe", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, 3, next.ID)
}

func TestNewRejectsCorruptFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(fileName, []byte(`{"Users":`), 0o600))

	_, err := New(fileName)
	assert.Error(t, err)
}

func TestNewDropsNullEntries(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "nulls.json")
	content := `{"Users":{"1":null,"2":{"forename":"fred","surname":"see","age":25}},"NextUserID":2}`
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0o600))

	theStorage, err := New(fileName)
	require.NoError(t, err)

	users, err := theStorage.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: 2, Forename: "fred", Surname: "see", Age: 25}}, users)

	exists, err := theStorage.ExistsByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, exists)

	created, err := theStorage.Save(context.Background(), models.User{Forename: "ann", Surname: "doe", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, 3, created.ID)
}
