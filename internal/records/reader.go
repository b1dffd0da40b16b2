// Package records reads subscriber billing input files.
//
// Each file has one header line followed by "identifier,flag" lines.
// Fields are trimmed; the flag accepts true/false, t/f and 1/0 in any case.
package records

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Parse reads records from r. name is used in error messages.
// The first non-empty line is the header and is skipped.
func Parse(r io.Reader, name string) ([]bssimport.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var out []bssimport.Record
	header := true
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if header {
			header = false
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v: %w", name, lineNo, err, bssimport.ErrInvalidConfig)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return out, nil
}

func parseLine(line string) (bssimport.Record, error) {
	id, flag, ok := strings.Cut(line, ",")
	if !ok {
		return bssimport.Record{}, fmt.Errorf("expected identifier,flag, got %q", line)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return bssimport.Record{}, fmt.Errorf("empty identifier")
	}
	flag = strings.TrimSpace(flag)
	if extra := strings.IndexByte(flag, ','); extra >= 0 {
		flag = strings.TrimSpace(flag[:extra])
	}
	b, err := strconv.ParseBool(flag)
	if err != nil {
		return bssimport.Record{}, fmt.Errorf("invalid flag %q for %s", flag, id)
	}
	return bssimport.Record{Identifier: id, Flag: b}, nil
}

// ReadFile parses the file at path.
func ReadFile(path string) ([]bssimport.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open input file: %v: %w", err, bssimport.ErrInvalidConfig)
	}
	defer f.Close()
	return Parse(f, path)
}

// ReadAll parses every path in order and concatenates the records.
// The engine receives the "true" file first, then the "false" file.
func ReadAll(paths ...string) ([]bssimport.Record, error) {
	var all []bssimport.Record
	for _, p := range paths {
		recs, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}
