package count

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sentinel is emitted instead of a Snapshot when the counts cannot be
// trusted, e.g. because the mail client is not running.
const Sentinel = "???"

var (
	// ErrNoAccount is returned when an index file's path does not start with
	// a plain directory name under the watch root.
	ErrNoAccount = errors.New("path has no account component")
	// ErrNotText is returned for index files whose content is not valid UTF-8.
	ErrNotText = errors.New("content is not text")
)

// Account is one mail account's unread total.
type Account struct {
	Name   string
	Unread int
}

// Snapshot is the result of one aggregation pass, ordered by account name.
type Snapshot struct {
	Accounts []Account
}

// Counts returns the per-account totals in account order.
func (s Snapshot) Counts() []int {
	counts := make([]int, len(s.Accounts))
	for i, a := range s.Accounts {
		counts[i] = a.Unread
	}
	return counts
}

// String renders the snapshot as space-separated decimal totals. An empty
// snapshot renders as the empty string.
func (s Snapshot) String() string {
	parts := make([]string, len(s.Accounts))
	for i, a := range s.Accounts {
		parts[i] = strconv.Itoa(a.Unread)
	}
	return strings.Join(parts, " ")
}

// Aggregator sums unread counts of all index files below a root directory.
type Aggregator struct {
	root   string
	suffix string
}

// NewAggregator returns an Aggregator for root matching files with suffix.
// An empty suffix selects IndexSuffix.
func NewAggregator(root, suffix string) *Aggregator {
	if suffix == "" {
		suffix = IndexSuffix
	}
	return &Aggregator{root: filepath.Clean(root), suffix: suffix}
}

// Root returns the directory the aggregator scans.
func (a *Aggregator) Root() string { return a.root }

// Aggregate runs a single pass over the default index suffix under root.
func Aggregate(root string) (Snapshot, error) {
	return NewAggregator(root, IndexSuffix).Run()
}

// Run walks the root, parses every index file and returns the per-account
// totals. Symbolic links to directories are followed, so a linked root or
// account directory is counted like a real one. Any unreadable file or
// unexpected path aborts the whole pass.
func (a *Aggregator) Run() (Snapshot, error) {
	totals := make(map[string]int)

	err := Walk(a.root, func(path string, d fs.DirEntry) error {
		if d.IsDir() || !strings.HasSuffix(filepath.Base(path), a.suffix) {
			return nil
		}

		account, err := AccountOf(a.root, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("could not read %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			return fmt.Errorf("could not read %s: %w", path, ErrNotText)
		}

		totals[account] += ParseUnread(data)
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("scanning %s: %w", a.root, err)
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	snap := Snapshot{Accounts: make([]Account, len(names))}
	for i, name := range names {
		snap.Accounts[i] = Account{Name: name, Unread: totals[name]}
	}
	return snap, nil
}

// AccountOf returns the account identifier for path, which is the first
// component of path relative to root.
func AccountOf(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	switch first {
	case "", ".", "..":
		return "", fmt.Errorf("%s: %w", path, ErrNoAccount)
	}
	return first, nil
}
