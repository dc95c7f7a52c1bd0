package reference

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

const maxLineBytes = 1024 * 1024

// ErrLoad is returned when a reference word list cannot be read.
var ErrLoad = errors.New("reference load failed")

// Set is an immutable set of lowercase words.
type Set struct {
	words map[string]struct{}
}

// Sets holds the two reference lists used by the evaluator.
type Sets struct {
	Common     *Set
	Dictionary *Set
}

// NewSet creates a set from the given words, normalized the same way Load does.
func NewSet(words ...string) *Set {
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.add(w)
	}
	return s
}

func (s *Set) add(w string) {
	w = normalize(w)
	if w == "" {
		return
	}
	s.words[w] = struct{}{}
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// Contains reports whether the word (case-insensitive) is in the set.
func (s *Set) Contains(w string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[normalize(w)]
	return ok
}

// Len returns the number of unique words.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns the set content sorted alphabetically.
func (s *Set) Words() []string {
	if s == nil {
		return nil
	}
	list := make([]string, 0, len(s.words))
	for w := range s.words {
		list = append(list, w)
	}
	sort.Strings(list)
	return list
}

// Parse reads one token per line from r.
func Parse(r io.Reader) (*Set, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrLoad)
	}

	s := &Set{words: make(map[string]struct{})}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		s.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanning lines: %w", ErrLoad, err)
	}

	return s, nil
}

// Load reads the newline-delimited word list at path.
func Load(path string) (*Set, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path not specified", ErrLoad)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrLoad, path, err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	slog.Debug("reference list loaded", "path", path, "words", s.Len())
	return s, nil
}

// LoadAll loads the common-password and dictionary-word lists.
func LoadAll(commonPath, dictionaryPath string) (*Sets, error) {
	common, err := Load(commonPath)
	if err != nil {
		return nil, fmt.Errorf("loading common passwords: %w", err)
	}

	dict, err := Load(dictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("loading dictionary words: %w", err)
	}

	return &Sets{
		Common:     common,
		Dictionary: dict,
	}, nil
}
