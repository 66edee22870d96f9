package database

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"gearswap/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAllModelsMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(AllModels()...)
	assert.NoError(t, err)

	for _, table := range []string{
		"users", "user_profiles", "follows", "posts", "post_images",
		"liked_posts", "cart_items", "outfits", "searches",
		"styler_preferences", "conversation_logs", "password_reset_tokens",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestConnectReadReplicaSkipsWithoutHost(t *testing.T) {
	SetReadDB(nil)
	require.NoError(t, ConnectReadReplica(&config.Config{}))
	assert.Nil(t, GetReadDB())
}

func TestCustomGormLoggerLogMode(t *testing.T) {
	base := &CustomGormLogger{
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		Config: logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
		},
	}

	leveled := base.LogMode(logger.Error)
	assert.NotSame(t, base, leveled)
	assert.Equal(t, logger.Warn, base.Config.LogLevel, "original logger must keep its level")
}
