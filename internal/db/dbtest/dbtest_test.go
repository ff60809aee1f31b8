package dbtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db/dbtest"
)

func TestNewReturnsIsolatedDatabases(t *testing.T) {
	first := dbtest.New(t)
	require.NoError(t, db.SeedCategories(first, []string{"정치"}))

	second := dbtest.New(t)
	var count int64
	require.NoError(t, second.Model(&db.Category{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	require.NoError(t, first.Model(&db.Category{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
