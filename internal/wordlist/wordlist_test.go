package wordlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedEnglish(t *testing.T) {
	words, path, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("load embedded pool: %v", err)
	}
	if path != "" {
		t.Fatalf("expected embedded pool, got path %q", path)
	}
	if len(words) < 100 || words[0] != "the" {
		t.Fatalf("unexpected embedded pool: %d words starting %q", len(words), words[0])
	}
}

func TestLoadPrefersFile(t *testing.T) {
	dir := t.TempDir()
	body := "# frequency ordered\nalpha\n\nBeta\ngamma\n"
	if err := os.WriteFile(filepath.Join(dir, "en.txt"), []byte(body), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	words, path, err := Load(dir, "EN")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != filepath.Join(dir, "en.txt") {
		t.Fatalf("unexpected path %q", path)
	}
	if len(words) != 2 || words[0] != "alpha" || words[1] != "gamma" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestLoadUnknownLang(t *testing.T) {
	_, _, err := Load(t.TempDir(), "xx")
	if !errors.Is(err, ErrUnknownLang) {
		t.Fatalf("expected ErrUnknownLang, got %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "de.txt"), []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	if _, _, err := Load(dir, "de"); err == nil {
		t.Fatalf("expected error for empty list")
	}
}

func TestTop(t *testing.T) {
	words := []string{"a", "b", "c"}
	if got := Top(words, 2); len(got) != 2 || got[1] != "b" {
		t.Fatalf("unexpected top: %v", got)
	}
	if got := Top(words, 0); len(got) != 3 {
		t.Fatalf("expected all words, got %v", got)
	}
	if got := Top(words, 10); len(got) != 3 {
		t.Fatalf("expected all words, got %v", got)
	}
}

func TestLangs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"de.txt", "fr.txt", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	langs, err := Langs(dir)
	if err != nil {
		t.Fatalf("langs: %v", err)
	}
	want := []string{"de", "en", "fr"}
	if len(langs) != len(want) {
		t.Fatalf("expected %v, got %v", want, langs)
	}
	for i := range want {
		if langs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, langs)
		}
	}
	if _, err := Langs(filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("missing dir should list embedded pool: %v", err)
	}
}
