package db

import (
	"testing"

	"github.com/smallbiznis/profitable/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	cases := []struct {
		dbType string
		name   string
	}{
		{dbType: "postgres", name: "postgres"},
		{dbType: "MySQL", name: "mysql"},
		{dbType: "sqlite", name: "sqlite"},
	}
	for _, tc := range cases {
		t.Run(tc.dbType, func(t *testing.T) {
			dialector, err := Dialect(Config{Type: tc.dbType, Name: "billing"})
			require.NoError(t, err)
			assert.Equal(t, tc.name, dialector.Name())
		})
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Config{DBType: "postgres", DBName: "billing", DBMaxOpenConn: 7, DBMetricsEnabled: true})
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "billing", cfg.Name)
	assert.Equal(t, 7, cfg.MaxOpenConn)
	assert.True(t, cfg.MetricsEnabled)
}
