package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv_LoadsExistingFilesOnly(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "ENGAGEMENT_UPDATER_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(tmp))

	_ = os.Unsetenv("ENGAGEMENT_UPDATER_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("ENGAGEMENT_UPDATER_TEST_ENV_LOAD"))
}

func TestConfiguration_RequiresAssociationType(t *testing.T) {
	t.Setenv("ASSOCIATION_TYPE", "")
	c := &Configuration{}
	err := c.load(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ASSOCIATION_TYPE")
}

func TestConfiguration_Load(t *testing.T) {
	t.Setenv("ASSOCIATION_TYPE", "engagement-moved")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("PORT", "9000")
	t.Setenv("GO_APP_ENV", Production)

	c := &Configuration{}
	require.NoError(t, c.load(nil))
	require.Equal(t, "engagement-moved", c.AssociationType)
	require.True(t, c.DryRun)
	require.Equal(t, ":9000", c.SocketAddress)
	require.Equal(t, 1, c.AMQP.PrefetchCount)
	require.NotNil(t, c.Logger())
}

func TestConfiguration_RejectsZeroPrefetch(t *testing.T) {
	t.Setenv("ASSOCIATION_TYPE", "engagement-moved")
	t.Setenv("AMQP_PREFETCH_COUNT", "0")

	c := &Configuration{}
	err := c.load(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "AMQP_PREFETCH_COUNT")
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
