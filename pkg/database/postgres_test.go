package database

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPoolLimits(t *testing.T) {
	poolConfig, err := pgxpool.ParseConfig("host=localhost port=5432 user=ttb dbname=ttb_registry sslmode=disable")
	require.NoError(t, err)

	applyPoolLimits(poolConfig, &Config{
		MaxConnections:  10,
		MaxConnLifetime: 2 * time.Hour,
		MaxConnIdleTime: 5 * time.Minute,
	})

	assert.Equal(t, int32(10), poolConfig.MaxConns)
	assert.Equal(t, 2*time.Hour, poolConfig.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, poolConfig.MaxConnIdleTime)
}

func TestApplyPoolLimitsDefaults(t *testing.T) {
	poolConfig, err := pgxpool.ParseConfig("host=localhost port=5432 user=ttb dbname=ttb_registry sslmode=disable")
	require.NoError(t, err)

	applyPoolLimits(poolConfig, &Config{})

	assert.Equal(t, int32(25), poolConfig.MaxConns)
	assert.Equal(t, time.Hour, poolConfig.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, poolConfig.MaxConnIdleTime)
}
