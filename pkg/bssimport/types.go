package bssimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one subscriber billing row: an MSISDN and its prepaid flag.
// Identifier is the natural unique key of the target table.
type Record struct {
	Identifier string
	Flag       bool
}

// TableSpec names the target table, its staging twin and the two columns
// the importer writes.
type TableSpec struct {
	// Target is the permanent table, optionally schema-qualified ("billing.subscriber_billings").
	Target string

	// Staging is the ephemeral table. Defaults to Target + StagingSuffix.
	Staging string

	// KeyColumn holds the unique identifier (MSISDN).
	KeyColumn string

	// FlagColumn holds the prepaid flag.
	FlagColumn string
}

// DefaultTableSpec returns the subscriber_billings layout.
func DefaultTableSpec() TableSpec {
	return TableSpec{
		Target:     DefaultTargetTable,
		Staging:    DefaultTargetTable + StagingSuffix,
		KeyColumn:  DefaultKeyColumn,
		FlagColumn: DefaultFlagColumn,
	}
}

// WithDefaults fills empty fields from DefaultTableSpec. The staging table
// follows a custom target name.
func (t TableSpec) WithDefaults() TableSpec {
	if t.Target == "" {
		t.Target = DefaultTargetTable
	}
	if t.Staging == "" {
		t.Staging = t.Target + StagingSuffix
	}
	if t.KeyColumn == "" {
		t.KeyColumn = DefaultKeyColumn
	}
	if t.FlagColumn == "" {
		t.FlagColumn = DefaultFlagColumn
	}
	return t
}

// Validate checks that the staging table cannot be confused with the target.
func (t TableSpec) Validate() error {
	var errs []error
	if t.Target == "" {
		errs = append(errs, fmt.Errorf("target table is required: %w", ErrInvalidConfig))
	}
	if t.Staging == "" {
		errs = append(errs, fmt.Errorf("staging table is required: %w", ErrInvalidConfig))
	}
	if t.Target != "" && strings.EqualFold(t.Target, t.Staging) {
		errs = append(errs, fmt.Errorf("staging table must differ from target table %q: %w", t.Target, ErrInvalidConfig))
	}
	if t.KeyColumn == "" || t.FlagColumn == "" {
		errs = append(errs, fmt.Errorf("key and flag columns are required: %w", ErrInvalidConfig))
	}
	if t.KeyColumn != "" && t.KeyColumn == t.FlagColumn {
		errs = append(errs, fmt.Errorf("key and flag columns must differ: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// MergePolicy decides whether the merge runs after some workers failed.
type MergePolicy int

const (
	// MergeOnSuccess merges only when every worker staged its whole chunk.
	// Otherwise the staging table is kept and the job fails.
	MergeOnSuccess MergePolicy = iota

	// MergeAlways merges whatever was staged once all workers are done,
	// even if some failed. The job still fails if any worker did.
	MergeAlways
)

// String returns the flag spelling of the policy.
func (p MergePolicy) String() string {
	switch p {
	case MergeOnSuccess:
		return "on-success"
	case MergeAlways:
		return "always"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParseMergePolicy parses "on-success" or "always". Empty selects MergeOnSuccess.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on-success":
		return MergeOnSuccess, nil
	case "always":
		return MergeAlways, nil
	}
	return MergeOnSuccess, fmt.Errorf("unknown merge policy %q (want on-success or always): %w", s, ErrInvalidConfig)
}

// LoadConfig contains all parameters needed for one import job.
type LoadConfig struct {
	// Connection is the resolved database connection.
	Connection *ConnectionConfig

	// Tables names the target and staging tables.
	Tables TableSpec

	// Workers is the number of parallel workers, clamped to the record count.
	Workers int

	// BatchSize is the number of records per multi-row INSERT.
	BatchSize int

	// MergePolicy decides what happens after a worker failure.
	MergePolicy MergePolicy

	// Timeout is the global timeout for the whole job. Zero disables it.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.Connection == nil {
		errs = append(errs, fmt.Errorf("connection is required: %w", ErrInvalidConfig))
	}

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d: %w", c.Workers, ErrInvalidConfig))
	}

	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch size must be at least 1, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}

	if c.BatchSize > MaxBatchSize {
		errs = append(errs, fmt.Errorf("batch size %d exceeds the per-statement limit of %d rows: %w", c.BatchSize, MaxBatchSize, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if err := c.Tables.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod parses the --auth flag value.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	}
	return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
}

// RunID identifies one import job in logs and pg_stat_activity.
type RunID = uuid.UUID

// NewRunID returns a fresh random run identifier.
func NewRunID() RunID {
	return uuid.New()
}
