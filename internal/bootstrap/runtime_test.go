package bootstrap

import (
	"testing"

	"careerhub/internal/config"
	"careerhub/internal/models"
	"careerhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDevUser(t *testing.T) {
	db := testutil.OpenSQLite(t)

	require.NoError(t, ensureDevUser(&config.Config{Env: "production", DevBootstrapUser: true}, db))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)

	cfg := &config.Config{Env: "development", DevBootstrapUser: true}
	require.NoError(t, ensureDevUser(cfg, db))
	require.NoError(t, ensureDevUser(cfg, db))

	var user models.User
	require.NoError(t, db.First(&user, 1).Error)
	assert.Equal(t, "dev", user.Nickname)
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
