package sql_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/tqt95/app-react-jpa/internal/sql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

var envs = map[string]string{
	"DATABASE_NAME":     "employees",
	"DATABASE_USER":     "employees",
	"DATABASE_PASSWORD": "employees",
	"DATABASE_MIGRATE":  "true",
}

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 && s[0] != "" {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

func TestMySql(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mysql integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mysql.Run(ctx, "mysql:8.0.36",
		mysql.WithDatabase(envs["DATABASE_NAME"]),
		mysql.WithUsername(envs["DATABASE_USER"]),
		mysql.WithPassword(envs["DATABASE_PASSWORD"]),
	)
	defer func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}()
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	configuration := make(map[string]string, len(envs))
	for key, value := range envs {
		configuration[key] = value
	}
	configuration["DATABASE_HOST"] = host
	configuration["DATABASE_PORT"] = port.Port()

	s := sql.NewMySql()
	require.NoError(t, s.Configure(configuration))
	require.NoError(t, s.Open(ctx))
	defer func() {
		assert.NoError(t, s.Close(ctx))
	}()

	t.Run("Migrate", func(t *testing.T) {
		version, dirty, err := s.MigrateVersion(ctx)
		require.NoError(t, err)
		assert.False(t, dirty)
		assert.Equal(t, uint(1), version)

		// applying again is a no-op
		assert.NoError(t, s.MigrateUp(ctx))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("Employees", func(t *testing.T) {
		testEmployees(t, s)
	})
}
