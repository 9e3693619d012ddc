package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamdash/internal/models"
)

func TestInit(t *testing.T) {
	t.Run("Should open and migrate a sqlite database", func(t *testing.T) {
		db, err := Init("sqlite://" + filepath.Join(t.TempDir(), "jam.db"))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer func() { assert.NoError(t, Close()) }()

		// Migration ran: the task table is queryable.
		var count int64
		assert.NoError(t, db.Model(&models.MergeTask{}).Count(&count).Error)
	})

	t.Run("Should reject unsupported URL schemes", func(t *testing.T) {
		_, err := Init("mysql://localhost/jam")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database URL format")
	})
}
