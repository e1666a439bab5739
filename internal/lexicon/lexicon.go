// Package lexicon holds the word lists used when deriving identifiers and
// parsing personal names.
package lexicon

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Lexicon is an immutable set of word lists. Construct it with Default or Load
// and pass it explicitly to the functions that need it.
type Lexicon struct {
	stopwords     map[string]bool
	honorifics    map[string]bool
	nameSuffixes  map[string]bool
	nameParticles map[string]bool
}

// File is the YAML shape accepted by Load. Lists present in the file replace
// the defaults; missing lists keep them.
type File struct {
	Stopwords     []string `yaml:"stopwords"`
	Honorifics    []string `yaml:"honorifics"`
	NameSuffixes  []string `yaml:"name_suffixes"`
	NameParticles []string `yaml:"name_particles"`
}

var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "de", "del", "der", "des",
	"for", "from", "in", "into", "is", "it", "its", "la", "le", "of", "on",
	"or", "the", "to", "und", "via", "with", "without",
}

var defaultHonorifics = []string{
	"dr", "prof", "professor", "mr", "mrs", "ms", "miss", "sir", "dame",
}

// Kept in sync with the suffixes recognised by the Semantic Scholar mapper
// that this list grew out of.
var defaultNameSuffixes = []string{
	"jr", "sr", "ii", "iii", "iv", "phd", "md",
}

var defaultNameParticles = []string{
	"van", "von", "de", "der", "den", "del", "della", "di", "da", "le", "la",
	"du", "dos", "das", "bin", "ibn",
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the built-in lexicon. It is constructed once and shared.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		defaultLex = New(File{})
	})
	return defaultLex
}

// New builds a lexicon from f, falling back to the built-in list for every
// list f leaves empty.
func New(f File) *Lexicon {
	pick := func(custom, fallback []string) map[string]bool {
		if len(custom) == 0 {
			custom = fallback
		}
		return toSet(custom)
	}
	return &Lexicon{
		stopwords:     pick(f.Stopwords, defaultStopwords),
		honorifics:    pick(f.Honorifics, defaultHonorifics),
		nameSuffixes:  pick(f.NameSuffixes, defaultNameSuffixes),
		nameParticles: pick(f.NameParticles, defaultNameParticles),
	}
}

// Load reads a YAML lexicon file.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	return New(f), nil
}

// LoadOrDefault loads path when it is non-empty and returns Default otherwise.
func LoadOrDefault(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// IsStopword reports whether w is a title/name stopword.
func (l *Lexicon) IsStopword(w string) bool {
	return l.stopwords[normalizeWord(w)]
}

// IsHonorific reports whether w is a personal title such as "Dr".
func (l *Lexicon) IsHonorific(w string) bool {
	return l.honorifics[normalizeWord(w)]
}

// IsNameSuffix reports whether w is a generational or degree suffix.
func (l *Lexicon) IsNameSuffix(w string) bool {
	return l.nameSuffixes[normalizeWord(w)]
}

// IsNameParticle reports whether w is a surname particle such as "van".
func (l *Lexicon) IsNameParticle(w string) bool {
	return l.nameParticles[normalizeWord(w)]
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if w = normalizeWord(w); w != "" {
			set[w] = true
		}
	}
	return set
}

func normalizeWord(w string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(w)), ".,")
}
