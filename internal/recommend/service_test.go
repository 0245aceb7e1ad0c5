package recommend

import (
	"path/filepath"
	"testing"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/platform/database"
	"github.com/lootradar/lootradar-backend/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceDB 用临时文件建一个隔离的SQLite库并替换全局连接
func setupServiceDB(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&profile.Profile{}))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func TestGetBecauseForUserWithoutLikes(t *testing.T) {
	setupServiceDB(t)

	userID, err := profile.CreateProvisionalUser()
	require.NoError(t, err)

	dto := GetBecauseForUser(userID)
	assert.False(t, dto.HasLikes)
	assert.Empty(t, dto.Items)
}

func TestGetBecauseForUserDeterministicTieBreak(t *testing.T) {
	setupServiceDB(t)

	price := 20.0
	entries := []catalog.GameEntry{
		{Identity: "l1", Title: "Liked One", Genres: []string{"RPG"}, SalePrice: &price, DiscountPercent: 30},
		{Identity: "l2", Title: "Liked Two", Genres: []string{"Horror"}, SalePrice: &price, DiscountPercent: 30},
		{Identity: "l3", Title: "Liked Three", Genres: []string{"Racing"}, SalePrice: &price, DiscountPercent: 30},
		{Identity: "l4", Title: "Liked Four", Genres: []string{"Puzzle"}, SalePrice: &price, DiscountPercent: 30},
		{Identity: "fresh", Title: "Fresh Pick", Genres: []string{"RPG"}, SalePrice: &price, DiscountPercent: 60},
	}
	require.True(t, catalog.ReplaceCatalog(catalog.NextLoadVersion(), entries, nil))

	userID, err := profile.CreateProvisionalUser()
	require.NoError(t, err)

	prefs := profile.DefaultPreferences()
	for _, id := range []string{"l1", "l2", "l3", "l4"} {
		require.True(t, profile.ApplyFeedback(&prefs, id, profile.FeedbackLike))
	}
	require.NoError(t, profile.Save(userID, prefs))

	// 四个喜欢条目的类型频率全部相同，平局只能靠目录顺序决出。
	// likes集合是无序map，重复调用必须给出同一个结果。
	want := "Based on your likes in: RPG, Horror, Racing."
	for i := 0; i < 50; i++ {
		dto := GetBecauseForUser(userID)
		require.True(t, dto.HasLikes)
		assert.Equal(t, want, dto.Reason)
		require.Len(t, dto.Items, 1)
		assert.Equal(t, "fresh", dto.Items[0].Entry.Identity)
	}
}
