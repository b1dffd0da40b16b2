package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PhatDave/BssPrepaidImporter/internal/config"
	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

const (
	envConnection  = "BSSIMPORT_CONNECTION"
	envWorkers     = "BSSIMPORT_WORKERS"
	envBatchSize   = "BSSIMPORT_BATCH_SIZE"
	envAzureSecret = "AZURE_CLIENT_SECRET"
)

// connectionFlagValues holds the connection flags shared by load and merge.
type connectionFlagValues struct {
	connection     string
	sslMode        string
	auth           string
	awsRegion      string
	googleInstance string
	azureTenantID  string
	azureClientID  string
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlagValues) {
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"Connection descriptor user:password@host:port/database or a postgres:// URI\n"+
			"Precedence: CONNECTION argument > --connection > $"+envConnection+" > bssimport.yaml")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full")
	cmd.Flags().StringVar(&f.auth, "auth", "",
		"Authentication method: standard|aws|google|azure (default: standard)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for RDS IAM authentication (overrides $AWS_REGION)")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name project:region:instance")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)\n"+
			"The client secret is read from $"+envAzureSecret)
}

// resolveConnection picks the connection descriptor and authentication
// settings. positional is the optional CONNECTION argument.
func resolveConnection(positional string, f connectionFlagValues, projectCfg *config.ProjectConfig) (*bssimport.ConnectionConfig, error) {
	if projectCfg == nil {
		projectCfg = &config.ProjectConfig{}
	}

	descriptor := firstNonEmpty(positional, f.connection, os.Getenv(envConnection), projectCfg.Connection)
	if descriptor == "" {
		return nil, fmt.Errorf("no connection descriptor: pass CONNECTION or --connection, or set $%s: %w",
			envConnection, bssimport.ErrInvalidConfig)
	}

	cfg, err := db.ParseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}

	if mode := firstNonEmpty(f.sslMode, projectCfg.SSLMode); mode != "" {
		cfg.SSLMode = mode
	}

	if method := firstNonEmpty(f.auth, projectCfg.Auth.Method); method != "" {
		cfg.AuthMethod, err = bssimport.ParseAuthMethod(method)
		if err != nil {
			return nil, err
		}
	}
	cfg.AWSRegion = firstNonEmpty(f.awsRegion, projectCfg.Auth.AWSRegion, os.Getenv("AWS_REGION"))
	cfg.GoogleInstance = firstNonEmpty(f.googleInstance, projectCfg.Auth.GoogleInstance)
	cfg.AzureTenantID = firstNonEmpty(f.azureTenantID, projectCfg.Auth.AzureTenantID, os.Getenv("AZURE_TENANT_ID"))
	cfg.AzureClientID = firstNonEmpty(f.azureClientID, projectCfg.Auth.AzureClientID, os.Getenv("AZURE_CLIENT_ID"))
	cfg.AzureClientSecret = os.Getenv(envAzureSecret)

	return cfg, nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(logger bssimport.Logger, cfg *bssimport.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Host: %s", cfg.Host)
	logger.Verbose("  Port: %d", cfg.Port)
	logger.Verbose("  User: %s", cfg.Username)
	logger.Verbose("  Database: %s", cfg.Database)
	logger.Verbose("  SSL Mode: %s", cfg.SSLMode)
	logger.Verbose("  Auth Method: %s", cfg.AuthMethod)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
