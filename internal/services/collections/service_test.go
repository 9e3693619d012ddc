package collections

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jamdash/internal/database"
	"jamdash/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// seed creates the liked collection, one working collection with `members`
// companies, and likes every even-numbered company.
func seed(t *testing.T, db *gorm.DB, members int) (workingID, likedID string) {
	t.Helper()

	liked := models.CompanyCollection{ID: uuid.New().String(), CollectionName: models.LikedCollectionName}
	working := models.CompanyCollection{ID: uuid.New().String(), CollectionName: "My List"}
	require.NoError(t, db.Create(&liked).Error)
	require.NoError(t, db.Create(&working).Error)

	for i := 1; i <= members; i++ {
		require.NoError(t, db.Create(&models.Company{ID: i, CompanyName: fmt.Sprintf("Company %d", i)}).Error)
		require.NoError(t, db.Create(&models.CompanyCollectionAssociation{
			CompanyID: i, CollectionID: working.ID,
		}).Error)
		if i%2 == 0 {
			require.NoError(t, db.Create(&models.CompanyCollectionAssociation{
				CompanyID: i, CollectionID: liked.ID,
			}).Error)
		}
	}
	return working.ID, liked.ID
}

func TestListCompanies(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	seed(t, db, 6)

	t.Run("Should page through companies in id order with liked flags", func(t *testing.T) {
		page, err := svc.ListCompanies(0, 4)
		require.NoError(t, err)
		require.Len(t, page, 4)
		assert.Equal(t, 1, page[0].ID)
		assert.False(t, page[0].Liked)
		assert.Equal(t, 2, page[1].ID)
		assert.True(t, page[1].Liked)

		rest, err := svc.ListCompanies(4, 4)
		require.NoError(t, err)
		require.Len(t, rest, 2)
		assert.Equal(t, 5, rest[0].ID)
	})

	t.Run("Should return an empty page past the end", func(t *testing.T) {
		page, err := svc.ListCompanies(100, 10)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestListCollections(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	workingID, likedID := seed(t, db, 6)

	cols, err := svc.ListCollections()
	require.NoError(t, err)
	require.Len(t, cols, 2)

	byID := map[string]CollectionMetadata{}
	for _, c := range cols {
		byID[c.ID] = c
	}
	assert.EqualValues(t, 6, byID[workingID].Total)
	assert.EqualValues(t, 3, byID[likedID].Total)
}

func TestGetCollectionPage(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	workingID, likedID := seed(t, db, 6)

	t.Run("Should return members with total and liked flags", func(t *testing.T) {
		page, err := svc.GetCollectionPage(likedID, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
		require.Len(t, page.Companies, 3)
		assert.Equal(t, 2, page.Companies[0].ID)
		assert.True(t, page.Companies[0].Liked)
	})

	t.Run("Should respect offset and limit", func(t *testing.T) {
		page, err := svc.GetCollectionPage(workingID, 2, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 6, page.Total)
		require.Len(t, page.Companies, 2)
		assert.Equal(t, 3, page.Companies[0].ID)
		assert.Equal(t, 4, page.Companies[1].ID)
	})

	t.Run("Should report unknown collections", func(t *testing.T) {
		_, err := svc.GetCollectionPage(uuid.New().String(), 0, 10)
		assert.ErrorIs(t, err, ErrCollectionNotFound)
	})
}

func TestAddCompanies(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	_, likedID := seed(t, db, 6)

	t.Run("Should skip companies already in the collection", func(t *testing.T) {
		added, name, err := svc.AddCompanies([]int{1, 2, 3}, likedID)
		require.NoError(t, err)
		assert.Equal(t, 2, added, "company 2 is already liked")
		assert.Equal(t, models.LikedCollectionName, name)
	})

	t.Run("Should reject unknown companies", func(t *testing.T) {
		_, _, err := svc.AddCompanies([]int{1, 999}, likedID)
		assert.ErrorIs(t, err, ErrCompanyNotFound)
	})

	t.Run("Should reject unknown collections", func(t *testing.T) {
		_, _, err := svc.AddCompanies([]int{1}, uuid.New().String())
		assert.ErrorIs(t, err, ErrCollectionNotFound)
	})
}

func TestRemoveCompanies(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	workingID, _ := seed(t, db, 6)

	t.Run("Should remove matching associations", func(t *testing.T) {
		removed, _, err := svc.RemoveCompanies([]int{1, 2}, workingID)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		page, err := svc.GetCollectionPage(workingID, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
	})

	t.Run("Should error when nothing matches", func(t *testing.T) {
		_, _, err := svc.RemoveCompanies([]int{1, 2}, workingID)
		assert.ErrorIs(t, err, ErrNoAssociations)
	})
}

func TestLikeUnlike(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	seed(t, db, 4)

	t.Run("Like adds the company once", func(t *testing.T) {
		ok, msg, err := svc.LikeCompany(1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Company liked successfully", msg)

		ok, msg, err = svc.LikeCompany(1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "Company already liked", msg)
	})

	t.Run("Unlike removes the membership", func(t *testing.T) {
		ok, _, err := svc.UnlikeCompany(2)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, msg, err := svc.UnlikeCompany(2)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "Company not in liked collection", msg)
	})
}
