package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhatDave/BssPrepaidImporter/internal/config"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

func writeProjectConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(config.ConfigFileName, []byte(content), 0o644))
}

func TestResolveCount_Precedence(t *testing.T) {
	t.Setenv("BSSIMPORT_TEST_COUNT", "7")

	n, err := resolveCount("workers", "3", 5, "BSSIMPORT_TEST_COUNT", 9, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "positional wins")

	n, err = resolveCount("workers", "", 5, "BSSIMPORT_TEST_COUNT", 9, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "flag beats environment")

	n, err = resolveCount("workers", "", 0, "BSSIMPORT_TEST_COUNT", 9, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, n, "environment beats file")

	t.Setenv("BSSIMPORT_TEST_COUNT", "")
	n, err = resolveCount("workers", "", 0, "BSSIMPORT_TEST_COUNT", 9, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, n, "file beats fallback")

	n, err = resolveCount("workers", "", 0, "BSSIMPORT_TEST_COUNT", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResolveCount_NotANumber(t *testing.T) {
	_, err := resolveCount("batch size", "lots", 0, "BSSIMPORT_TEST_COUNT", 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)

	t.Setenv("BSSIMPORT_TEST_COUNT", "x")
	_, err = resolveCount("batch size", "", 0, "BSSIMPORT_TEST_COUNT", 0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$BSSIMPORT_TEST_COUNT")
}

func TestResolveTables(t *testing.T) {
	spec := resolveTables(tableFlagValues{}, nil)
	assert.Equal(t, bssimport.DefaultTableSpec(), spec)

	spec = resolveTables(tableFlagValues{keyColumn: "msisdn_id"}, &config.ProjectConfig{
		Tables: config.TablesConfig{Target: "billing.subscribers", KeyColumn: "ignored"},
	})
	assert.Equal(t, "billing.subscribers", spec.Target)
	assert.Equal(t, "billing.subscribers"+bssimport.StagingSuffix, spec.Staging)
	assert.Equal(t, "msisdn_id", spec.KeyColumn)
	assert.Equal(t, bssimport.DefaultFlagColumn, spec.FlagColumn)
}

func TestResolveEffectiveTimeout(t *testing.T) {
	d, err := resolveEffectiveTimeout(0, nil)
	require.NoError(t, err)
	assert.Equal(t, bssimport.DefaultTimeout, d)

	d, err = resolveEffectiveTimeout(0, &config.ProjectConfig{Timeout: "15m"})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	d, err = resolveEffectiveTimeout(time.Minute, &config.ProjectConfig{Timeout: "15m"})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	_, err = resolveEffectiveTimeout(0, &config.ProjectConfig{Timeout: "soon"})
	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)
}

func TestLoadProjectConfig_MissingIsNotAnError(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadProjectConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectConfig_ExplicitPathMustExist(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := loadProjectConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestLoadProjectConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(envWorkers))
	require.NoError(t, os.WriteFile(".env", []byte(envWorkers+"=6\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv(envWorkers) })

	_, err := loadProjectConfig("")
	require.NoError(t, err)
	assert.Equal(t, "6", os.Getenv(envWorkers))
}

func TestBuildLoadConfig_FromProjectFile(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()
	writeProjectConfig(t, `
connection: bss:secret@db.internal:5432/bss
sslmode: require
workers: 4
batch_size: 2048
merge_policy: always
timeout: 30m
tables:
  target: billing.subscriber_billings
`)

	cfg, err := buildLoadConfig([]string{"t.csv", "f.csv"}, false)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, 5432, cfg.Connection.Port)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 2048, cfg.BatchSize)
	assert.Equal(t, bssimport.MergeAlways, cfg.MergePolicy)
	assert.Equal(t, 30*time.Minute, cfg.Timeout)
	assert.Equal(t, "billing.subscriber_billings", cfg.Tables.Target)
	assert.Equal(t, "billing.subscriber_billings_temp", cfg.Tables.Staging)
}

func TestBuildLoadConfig_ArgumentsOverrideEverything(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()
	t.Setenv(envConnection, "env:env@envhost:1111/envdb")
	t.Setenv(envWorkers, "3")
	t.Setenv(envBatchSize, "30")
	writeProjectConfig(t, "workers: 4\nbatch_size: 40\n")

	cfg, err := buildLoadConfig([]string{"t.csv", "f.csv", "bss:secret@localhost:5434/bss", "8", "100"}, false)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Connection.Host)
	assert.Equal(t, "bss", cfg.Connection.Username)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 100, cfg.BatchSize)
}

func TestBuildLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()
	t.Setenv(envConnection, "env:env@envhost:1111/envdb")
	t.Setenv(envWorkers, "3")
	writeProjectConfig(t, "connection: bss:secret@filehost:5432/bss\nworkers: 4\nbatch_size: 40\n")

	cfg, err := buildLoadConfig([]string{"t.csv", "f.csv"}, false)
	require.NoError(t, err)

	assert.Equal(t, "envhost", cfg.Connection.Host)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 40, cfg.BatchSize)
}

func TestBuildLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()

	cfg, err := buildLoadConfig([]string{"t.csv", "f.csv", "bss:secret@localhost:5434/bss"}, false)
	require.NoError(t, err)

	assert.Equal(t, bssimport.DefaultWorkers, cfg.Workers)
	assert.Equal(t, bssimport.DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, bssimport.MergeOnSuccess, cfg.MergePolicy)
	assert.Equal(t, bssimport.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, bssimport.DefaultTableSpec(), cfg.Tables)
}

func TestBuildLoadConfig_InvalidMergePolicy(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()
	loadFlags.mergePolicy = "sometimes"

	_, err := buildLoadConfig([]string{"t.csv", "f.csv", "bss:secret@localhost:5434/bss"}, false)
	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)
}

func TestResolveConnection_Auth(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAzureSecret, "s3cret")

	cfg, err := resolveConnection("", connectionFlagValues{
		connection:    "bss:secret@myserver:5432/bss",
		auth:          "azure",
		azureTenantID: "tenant",
	}, &config.ProjectConfig{Auth: config.AuthConfig{AzureClientID: "client"}})
	require.NoError(t, err)

	assert.Equal(t, bssimport.AuthMethodAzureEntraID, cfg.AuthMethod)
	assert.Equal(t, "tenant", cfg.AzureTenantID)
	assert.Equal(t, "client", cfg.AzureClientID)
	assert.Equal(t, "s3cret", cfg.AzureClientSecret)
}

func TestResolveConnection_AWSRegionFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "eu-central-1")

	cfg, err := resolveConnection("bss:secret@myserver:5432/bss", connectionFlagValues{auth: "aws"}, nil)
	require.NoError(t, err)
	assert.Equal(t, bssimport.AuthMethodAWSIAM, cfg.AuthMethod)
	assert.Equal(t, "eu-central-1", cfg.AWSRegion)
}

func TestResolveConnection_UnknownAuth(t *testing.T) {
	clearEnv(t)

	_, err := resolveConnection("bss:secret@myserver:5432/bss", connectionFlagValues{auth: "kerberos"}, nil)
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestBuildMergeRequest(t *testing.T) {
	clearEnv(t)
	resetMergeFlags()
	mergeFlags.tables.staging = "billings_retry"

	req, err := buildMergeRequest([]string{"bss:secret@localhost:5434/bss"})
	require.NoError(t, err)
	assert.Equal(t, "localhost", req.Connection.Host)
	assert.Equal(t, bssimport.DefaultTargetTable, req.Tables.Target)
	assert.Equal(t, "billings_retry", req.Tables.Staging)
}
