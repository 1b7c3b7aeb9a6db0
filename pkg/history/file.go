package history

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// FileStore keeps one "<show_id> <RFC3339 timestamp>" line per show. Writers
// hold an exclusive flock on "<path>.lock" and replace the file through
// "<path>.temp" so readers never see a half-written history.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore creates a store backed by the file at path. The file does not need to exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

// Last implements Store
func (s *FileStore) Last(ctx context.Context, showID string) (time.Time, bool, error) {
	if _, err := s.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return time.Time{}, false, fmt.Errorf("lock history: %w", err)
	}
	defer s.lock.Unlock()

	data, err := s.load()
	if err != nil {
		return time.Time{}, false, err
	}
	t, ok := data[showID]
	return t, ok, nil
}

// Set implements Store
func (s *FileStore) Set(ctx context.Context, showID string, t time.Time) error {
	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer s.lock.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[showID] = t
	return s.save(data)
}

// Close implements Store
func (s *FileStore) Close(context.Context) error {
	return s.lock.Close()
}

func (s *FileStore) load() (map[string]time.Time, error) {
	data := map[string]time.Time{}

	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("history %s:%d: expected \"<show> <timestamp>\"", s.path, lineNo)
		}
		t, err := time.Parse(time.RFC3339, fields[1])
		if err != nil {
			return nil, fmt.Errorf("history %s:%d: %w", s.path, lineNo, err)
		}
		data[fields[0]] = t
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return data, nil
}

func (s *FileStore) save(data map[string]time.Time) error {
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s %s\n", id, data[id].Format(time.RFC3339))
	}

	tempPath := s.path + ".temp"
	if err := os.WriteFile(tempPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
