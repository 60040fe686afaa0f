package invitekit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var resultHeader = []string{"user_id", "username", "first_name", "last_name", "status", "reason", "timestamp"}

const timestampLayout = "2006-01-02 15:04:05"

// ReadUsers reads user records from a CSV file and returns them
// deduplicated, in input order. The file must have a header row with a
// user_id column; username, first_name and last_name are optional.
// Rows with neither a user ID nor a username are skipped.
func ReadUsers(path string) ([]UserRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)

	var users []UserRecord
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		u := UserRecord{
			Username:  field(row, cols, "username"),
			FirstName: field(row, cols, "first_name"),
			LastName:  field(row, cols, "last_name"),
		}
		if raw := field(row, cols, "user_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err == nil {
				u.ID = id
			}
		}
		if u.ID == 0 && u.Username == "" {
			continue
		}
		users = append(users, u)
	}

	return DedupUsers(users), nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// LoadProcessed returns the deduplication keys already present in a
// results file from a previous run. A missing file yields an empty set.
func LoadProcessed(path string) (map[string]struct{}, error) {
	processed := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return processed, nil
		}
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return processed, nil
		}
		return nil, fmt.Errorf("read results header: %w", err)
	}
	cols := columnIndex(header)

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read results row: %w", err)
		}
		key := field(row, cols, "user_id")
		if key == "" {
			key = strings.TrimPrefix(field(row, cols, "username"), "@")
		}
		if key != "" {
			processed[key] = struct{}{}
		}
	}

	return processed, nil
}

// ResultSink receives attempt results as they are produced.
type ResultSink interface {
	Append(result AttemptResult) error
}

// ResultWriter appends attempt results to a CSV file, one row per
// result, flushing after every row so a killed run loses nothing.
type ResultWriter struct {
	f *os.File
	w *csv.Writer
}

// NewResultWriter opens (or creates) the results file in append mode,
// writing the header row only when the file is new or empty.
func NewResultWriter(path string) (*ResultWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}

	rw := &ResultWriter{f: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat output: %w", err)
	}
	if info.Size() == 0 {
		if err := rw.w.Write(resultHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		rw.w.Flush()
		if err := rw.w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	return rw, nil
}

// Append writes a single result row and flushes it to disk.
func (rw *ResultWriter) Append(result AttemptResult) error {
	var id string
	if result.User.ID != 0 {
		id = strconv.FormatInt(result.User.ID, 10)
	}
	row := []string{
		id,
		result.User.Username,
		result.User.FirstName,
		result.User.LastName,
		string(result.Status),
		result.Reason,
		result.Timestamp.Format(timestampLayout),
	}
	if err := rw.w.Write(row); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	rw.w.Flush()
	if err := rw.w.Error(); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// Close flushes pending rows and closes the file.
func (rw *ResultWriter) Close() error {
	rw.w.Flush()
	if err := rw.w.Error(); err != nil {
		rw.f.Close()
		return err
	}
	return rw.f.Close()
}
