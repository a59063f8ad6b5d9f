// Package teams serves team display metadata loaded from a CSV file.
package teams

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"
)

// ErrNotConfigured is returned when no CSV path was provided.
var ErrNotConfigured = errors.New("teams: no metadata source configured")

var header = []string{"name", "display_name", "primary_color", "secondary_color", "logo", "logo_dark"}

// Team is one row of the metadata file.
type Team struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	Logo           string `json:"logo,omitempty"`
	LogoDark       string `json:"logoDark,omitempty"`
}

// Store loads the CSV on first use and keeps it in memory. A failed load is
// remembered and returned on every later call.
type Store struct {
	open func() (io.ReadCloser, error)

	once    sync.Once
	loadErr error

	mu    sync.RWMutex
	teams map[string]Team
}

// NewStore reads from path. An empty path yields a store whose lookups
// return ErrNotConfigured.
func NewStore(path string) *Store {
	path = strings.TrimSpace(path)
	if path == "" {
		return &Store{open: func() (io.ReadCloser, error) { return nil, ErrNotConfigured }}
	}
	return &Store{open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

// NewStoreFromReader is used by tests and embedded data.
func NewStoreFromReader(r io.Reader) *Store {
	return &Store{open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil }}
}

// Load forces the one-time read and reports its outcome.
func (s *Store) Load() error {
	s.once.Do(func() {
		s.loadErr = s.load()
	})
	return s.loadErr
}

// Lookup finds a team by name. Case, spacing and punctuation are ignored.
func (s *Store) Lookup(name string) (Team, bool, error) {
	if err := s.Load(); err != nil {
		return Team{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[LookupKey(name)]
	return t, ok, nil
}

// Len returns the number of loaded teams.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teams)
}

func (s *Store) load() error {
	rc, err := s.open()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.TrimLeadingSpace = true

	first, err := r.Read()
	if err != nil {
		return fmt.Errorf("teams: read header: %w", err)
	}
	cols, err := columns(first)
	if err != nil {
		return err
	}
	r.FieldsPerRecord = len(first)

	teams := make(map[string]Team)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("teams: %w", err)
		}
		t := Team{
			Name:           rec[cols["name"]],
			DisplayName:    rec[cols["display_name"]],
			PrimaryColor:   rec[cols["primary_color"]],
			SecondaryColor: rec[cols["secondary_color"]],
			Logo:           rec[cols["logo"]],
			LogoDark:       rec[cols["logo_dark"]],
		}
		key := LookupKey(t.Name)
		if key == "" {
			continue
		}
		if t.DisplayName == "" {
			t.DisplayName = t.Name
		}
		teams[key] = t
	}

	s.mu.Lock()
	s.teams = teams
	s.mu.Unlock()
	return nil
}

func columns(row []string) (map[string]int, error) {
	cols := make(map[string]int, len(row))
	for i, name := range row {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, want := range header {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("teams: missing column %q", want)
		}
	}
	return cols, nil
}

// LookupKey lower-cases name and drops everything but letters and digits.
func LookupKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
