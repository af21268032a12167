// Package wordlist loads the word pools prompts are sampled from.
package wordlist

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultLang is the pool shipped inside the binary.
const DefaultLang = "en"

//go:embed en.txt
var embeddedEnglish string

// ErrUnknownLang is returned when no pool exists for a language.
var ErrUnknownLang = errors.New("unknown language")

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Best-effort close for read-only word list.
		_ = file.Close()
	}()
	return readWords(file)
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// Load returns the pool for lang. A <lang>.txt file in dir takes precedence
// over the embedded pool; words rejected by the language filter are dropped.
func Load(dir, lang string) ([]string, string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLang
	}
	path := filepath.Join(dir, lang+".txt")
	words, err := LoadWords(path)
	switch {
	case err == nil:
		return Filter(words, FilterForLang(lang)), path, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, path, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	if lang != DefaultLang {
		return nil, path, fmt.Errorf("%w %q: no word list at %s", ErrUnknownLang, lang, path)
	}
	words, err = readWords(strings.NewReader(embeddedEnglish))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read embedded word list: %w", err)
	}
	return words, "", nil
}

// Top keeps the first n words of a frequency-ordered pool. n <= 0 keeps all.
func Top(words []string, n int) []string {
	if n <= 0 || n >= len(words) {
		return words
	}
	return words[:n]
}

// Langs lists the languages available from dir plus the embedded pool.
func Langs(dir string) ([]string, error) {
	set := map[string]struct{}{DefaultLang: {}}
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		set[strings.TrimSuffix(name, ".txt")] = struct{}{}
	}
	langs := make([]string, 0, len(set))
	for lang := range set {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}
