package logging

import (
	"fmt"
	"strings"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// Format selects the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses the --log-format flag.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown log format %q (want text or json): %w", s, bssimport.ErrInvalidConfig)
}

// New returns the logger for the given format.
func New(format Format, verbose bool) bssimport.Logger {
	if format == FormatJSON {
		return NewJSONLogger(verbose)
	}
	return NewConsoleLogger(verbose)
}

var (
	_ bssimport.Logger = (*ConsoleLogger)(nil)
	_ bssimport.Logger = (*JSONLogger)(nil)
	_ bssimport.Logger = (*NullLogger)(nil)
)
