package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

func resetLoadFlags() {
	loadFlags = loadFlagValues{}
}

func resetMergeFlags() {
	mergeFlags = mergeFlagValues{}
}

// clearEnv isolates a test from the operator's environment and any .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{envConnection, envWorkers, envBatchSize, envAzureSecret,
		"AWS_REGION", "AZURE_TENANT_ID", "AZURE_CLIENT_ID"} {
		t.Setenv(v, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadCmd_ArgsValidation(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{"true.csv"})
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitUsageError, bssimport.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "TRUE_FILE and FALSE_FILE")
}

func TestLoadCmd_ArgsValidation_TooMany(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{"a", "b", "c", "1", "2", "x"})
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitUsageError, bssimport.ExitCodeForError(err))
}

func TestLoadCmd_ArgsValidation_Accepts(t *testing.T) {
	assert.NoError(t, loadCmd.Args(loadCmd, []string{"a", "b"}))
	assert.NoError(t, loadCmd.Args(loadCmd, []string{"a", "b", "bss:secret@localhost:5434/bss", "4", "100"}))
}

func TestMergeCmd_ArgsValidation(t *testing.T) {
	assert.NoError(t, mergeCmd.Args(mergeCmd, nil))
	err := mergeCmd.Args(mergeCmd, []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitUsageError, bssimport.ExitCodeForError(err))
}

func TestRunLoad_MissingConnection(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()

	err := runLoad(loadCmd, []string{"true.csv", "false.csv"})
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestRunLoad_InvalidDescriptor(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()

	err := runLoad(loadCmd, []string{"true.csv", "false.csv", "not a descriptor"})
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestRunLoad_MissingInputFile(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()

	// Input files are read before any connection attempt.
	err := runLoad(loadCmd, []string{"missing_true.csv", "missing_false.csv", "bss:secret@localhost:1/bss"})
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestRunLoad_BatchSizeTooLarge(t *testing.T) {
	clearEnv(t)
	resetLoadFlags()

	err := runLoad(loadCmd, []string{"true.csv", "false.csv", "bss:secret@localhost:5434/bss", "1", "40000"})
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestRunMerge_MissingConnection(t *testing.T) {
	clearEnv(t)
	resetMergeFlags()

	err := runMerge(mergeCmd, nil)
	require.Error(t, err)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"load", "merge", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
