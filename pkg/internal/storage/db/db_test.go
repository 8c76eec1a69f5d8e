package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/db/dbtest"
)

func TestGetRegisteredDBTypes(t *testing.T) {
	types := db.GetRegisteredDBTypes()

	assert.Contains(t, types, configs.SQLite)
	assert.Contains(t, types, configs.PostgreSQL)
	assert.Contains(t, types, configs.MySQL)
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := db.New(context.Background(), configs.DBConfig{Type: "oracle", DSN: "x"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestClient_HealthCheck(t *testing.T) {
	client := dbtest.New(t)

	require.NoError(t, client.HealthCheck(context.Background()))
}
