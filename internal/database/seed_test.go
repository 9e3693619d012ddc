package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jamdash/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestSeedCreatesDefaultCollections(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, false))

	var count int64
	require.NoError(t, db.Model(&models.CompanyCollection{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	var liked models.CompanyCollection
	assert.NoError(t, db.Where("collection_name = ?", models.LikedCollectionName).First(&liked).Error)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, false))
	require.NoError(t, Seed(db, false))

	var count int64
	require.NoError(t, db.Model(&models.CompanyCollection{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestSeedSkipsDemoDataWhenCompaniesExist(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Company{ID: 1, CompanyName: "Existing"}).Error)

	require.NoError(t, Seed(db, true))

	var count int64
	require.NoError(t, db.Model(&models.Company{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
