package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PhatDave/BssPrepaidImporter/internal/config"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// tableFlagValues overrides the table names of bssimport.yaml.
type tableFlagValues struct {
	target     string
	staging    string
	keyColumn  string
	flagColumn string
}

// loadProjectConfig loads .env and bssimport.yaml. Without an explicit
// path a missing file in the working directory is not an error.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

// resolveTables layers flags over bssimport.yaml over defaults.
func resolveTables(f tableFlagValues, projectCfg *config.ProjectConfig) bssimport.TableSpec {
	var fromFile config.TablesConfig
	if projectCfg != nil {
		fromFile = projectCfg.Tables
	}
	return bssimport.TableSpec{
		Target:     firstNonEmpty(f.target, fromFile.Target),
		Staging:    firstNonEmpty(f.staging, fromFile.Staging),
		KeyColumn:  firstNonEmpty(f.keyColumn, fromFile.KeyColumn),
		FlagColumn: firstNonEmpty(f.flagColumn, fromFile.FlagColumn),
	}.WithDefaults()
}

// resolveCount picks a positive integer setting. Precedence: positional
// argument > flag > environment variable > bssimport.yaml > fallback.
// Zero means "not set" for the flag and file values.
func resolveCount(name, positional string, flag int, envVar string, fromFile, fallback int) (int, error) {
	if positional != "" {
		return parseCount(name, positional)
	}
	if flag != 0 {
		return flag, nil
	}
	if v := os.Getenv(envVar); v != "" {
		n, err := parseCount(name, v)
		if err != nil {
			return 0, fmt.Errorf("$%s: %w", envVar, err)
		}
		return n, nil
	}
	if fromFile != 0 {
		return fromFile, nil
	}
	return fallback, nil
}

func parseCount(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q: %w", name, s, bssimport.ErrInvalidConfig)
	}
	return n, nil
}

// resolveEffectiveTimeout prefers the flag, then bssimport.yaml, then the default.
func resolveEffectiveTimeout(flagTimeout time.Duration, projectCfg *config.ProjectConfig) (time.Duration, error) {
	if flagTimeout != 0 {
		return flagTimeout, nil
	}
	if projectCfg != nil {
		d, err := projectCfg.TimeoutDuration()
		if err != nil {
			return 0, err
		}
		if d != 0 {
			return d, nil
		}
	}
	return bssimport.DefaultTimeout, nil
}
