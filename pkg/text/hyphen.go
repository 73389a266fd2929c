package text

import (
	"io"
	"os"
	"strings"

	"github.com/speedata/hyphenation"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// Hyphenator finds the places a word may be broken across lines.
type Hyphenator interface {
	// Breaks returns byte offsets into word where a hyphen may go.
	Breaks(word string) []int
}

// SoftHyphens breaks words only at soft hyphens (U+00AD) in the text.
type SoftHyphens struct{}

// Breaks implements Hyphenator.
func (SoftHyphens) Breaks(word string) []int {
	var out []int
	for i := 0; ; {
		j := strings.Index(word[i:], softHyphen)
		if j < 0 {
			return out
		}
		out = append(out, i+j)
		i += j + len(softHyphen)
	}
}

// Patterns hyphenates with TeX hyphenation patterns, such as the
// hyph-*.pat.txt files of the hyph-utf8 project. MinPrefix and MinSuffix
// are the fewest letters kept on either side of a break (default 2).
//
// A Patterns is safe for concurrent use once loaded.
type Patterns struct {
	MinPrefix, MinSuffix int

	lang *hyphenation.Lang
}

// NewPatterns reads a TeX pattern file.
func NewPatterns(r io.Reader) (*Patterns, error) {
	lang, err := hyphenation.New(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read hyphenation patterns")
	}
	return &Patterns{lang: lang}, nil
}

// LoadPatterns reads a TeX pattern file from disk.
func LoadPatterns(path string) (*Patterns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not open hyphenation patterns %s", path)
	}
	defer f.Close()
	return NewPatterns(f)
}

// Breaks implements Hyphenator.
func (p *Patterns) Breaks(word string) []int {
	minPre, minSuf := p.MinPrefix, p.MinSuffix
	if minPre <= 0 {
		minPre = 2
	}
	if minSuf <= 0 {
		minSuf = 2
	}

	// The patterns count letters; callers need byte offsets.
	var offsets []int
	for i := range word {
		offsets = append(offsets, i)
	}
	n := len(offsets)

	var out []int
	for _, pos := range p.lang.Hyphenate(word) {
		if pos < minPre || pos > n-minSuf {
			continue
		}
		out = append(out, offsets[pos])
	}
	return out
}
