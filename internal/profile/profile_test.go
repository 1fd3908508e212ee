package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tbunread/tbunread/internal/config"
)

const profilesIni = `[Profile1]
Name=old
IsRelative=1
Path=abcd.old

[Install4F96D1932A9F858E]
Default=wxyz.default-release
Locked=1

[Profile0]
Name=default-release
IsRelative=1
Path=wxyz.default-release
Default=1

[General]
StartWithLastProfile=1
Version=2
`

func writeIni(t *testing.T, content string) string {
	t.Helper()
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "profiles.ini"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return home
}

func TestDefaultProfile(t *testing.T) {
	home := writeIni(t, profilesIni)

	got, err := DefaultProfile(home)
	if err != nil {
		t.Fatalf("DefaultProfile() error: %v", err)
	}
	want := filepath.Join(home, "wxyz.default-release")
	if got != want {
		t.Errorf("DefaultProfile() = %q, want %q", got, want)
	}
}

func TestDefaultProfileAbsolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere")
	home := writeIni(t, "[InstallABC]\nDefault="+abs+"\n")

	got, err := DefaultProfile(home)
	if err != nil {
		t.Fatalf("DefaultProfile() error: %v", err)
	}
	if got != abs {
		t.Errorf("DefaultProfile() = %q, want %q", got, abs)
	}
}

func TestDefaultProfileNoInstallSection(t *testing.T) {
	home := writeIni(t, "[Profile0]\nName=x\nPath=x.default\nDefault=1\n")

	_, err := DefaultProfile(home)
	if !errors.Is(err, ErrNoDefaultProfile) {
		t.Errorf("DefaultProfile() error = %v, want ErrNoDefaultProfile", err)
	}
}

func TestDefaultProfileMissingIni(t *testing.T) {
	_, err := DefaultProfile(t.TempDir())
	if err == nil {
		t.Fatal("DefaultProfile() without profiles.ini should return error")
	}
}

func mkdir(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}

func TestWatchRoot(t *testing.T) {
	home := writeIni(t, profilesIni)
	want := mkdir(t, filepath.Join(home, "wxyz.default-release", "ImapMail"))

	got, err := WatchRoot(config.ProfileConfig{Home: home, MailDir: "ImapMail"})
	if err != nil {
		t.Fatalf("WatchRoot() error: %v", err)
	}
	if got != want {
		t.Errorf("WatchRoot() = %q, want %q", got, want)
	}
}

func TestWatchRootExplicit(t *testing.T) {
	root := mkdir(t, t.TempDir())

	got, err := WatchRoot(config.ProfileConfig{Root: root, Home: "/does/not/matter"})
	if err != nil {
		t.Fatalf("WatchRoot() error: %v", err)
	}
	if got != root {
		t.Errorf("WatchRoot() = %q, want %q", got, root)
	}
}

func TestWatchRootDefaultMailDir(t *testing.T) {
	home := writeIni(t, profilesIni)
	mkdir(t, filepath.Join(home, "wxyz.default-release", config.DefaultMailDir))

	got, err := WatchRoot(config.ProfileConfig{Home: home})
	if err != nil {
		t.Fatalf("WatchRoot() error: %v", err)
	}
	if filepath.Base(got) != config.DefaultMailDir {
		t.Errorf("WatchRoot() = %q, want it to end in %q", got, config.DefaultMailDir)
	}
}

func TestWatchRootResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := mkdir(t, filepath.Join(dir, "mail"))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := WatchRoot(config.ProfileConfig{Root: link})
	if err != nil {
		t.Fatalf("WatchRoot() error: %v", err)
	}
	if got != target {
		t.Errorf("WatchRoot(%q) = %q, want %q", link, got, target)
	}
}

func TestWatchRootLinkedMailDir(t *testing.T) {
	home := writeIni(t, profilesIni)
	target := mkdir(t, filepath.Join(t.TempDir(), "ImapMail"))
	mkdir(t, filepath.Join(home, "wxyz.default-release"))
	if err := os.Symlink(target, filepath.Join(home, "wxyz.default-release", "ImapMail")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := WatchRoot(config.ProfileConfig{Home: home})
	if err != nil {
		t.Fatalf("WatchRoot() error: %v", err)
	}
	if got != target {
		t.Errorf("WatchRoot() = %q, want %q", got, target)
	}
}

func TestWatchRootMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := WatchRoot(config.ProfileConfig{Root: missing})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("WatchRoot(%q) error = %v, want os.ErrNotExist", missing, err)
	}
}
