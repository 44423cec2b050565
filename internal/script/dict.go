package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/spella/spella/internal/spelling"
)

// DictHeader is the YAML front matter of a dictionary source file.
type DictHeader struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ParseError reports a malformed dictionary source file.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dict line %d: %s", e.Line, e.Reason)
}

// headerEnd terminates the YAML front matter, as in Rime dictionary sources.
const headerEnd = "..."

// ReadDict parses a dictionary source: an optional YAML header delimited by
// a "---" line and a "..." line, followed by one tab-separated row per
// syllable. A bare syllable seeds its identity spelling; extra columns add
// an alternative spelling with an optional credibility score:
//
//	syllable
//	syllable<TAB>text
//	syllable<TAB>text<TAB>credibility
//
// Syllable and spelling text are normalized to NFC. Blank lines and lines
// starting with '#' are skipped.
func ReadDict(r io.Reader) (DictHeader, *Script, error) {
	var header DictHeader
	s := New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	inHeader := false
	var headerLines []string

	for scanner.Scan() {
		line++
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)

		switch {
		case line == 1 && trimmed == "---":
			inHeader = true
			continue
		case inHeader && trimmed == headerEnd:
			inHeader = false
			if err := yaml.Unmarshal([]byte(strings.Join(headerLines, "\n")), &header); err != nil {
				return header, nil, &ParseError{Line: line, Reason: fmt.Sprintf("invalid YAML header: %v", err)}
			}
			continue
		case inHeader:
			headerLines = append(headerLines, text)
			continue
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue
		}

		if err := parseRow(s, text, line); err != nil {
			return header, nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return header, nil, fmt.Errorf("read dict: %w", err)
	}
	if inHeader {
		return header, nil, &ParseError{Line: line, Reason: "unterminated YAML header (missing \"...\")"}
	}

	return header, s, nil
}

// parseRow folds one data row into the script.
func parseRow(s *Script, row string, line int) error {
	cols := strings.Split(row, "\t")
	syllable := norm.NFC.String(strings.TrimSpace(cols[0]))
	if syllable == "" {
		return &ParseError{Line: line, Reason: "empty syllable"}
	}

	if s.AddSyllable(syllable) {
		// A new syllable always carries its identity spelling.
		s.Merge(syllable, spelling.Annotation{}, []spelling.Spelling{{Text: syllable}})
	}

	if len(cols) < 2 {
		return nil
	}
	text := norm.NFC.String(strings.TrimSpace(cols[1]))
	if text == "" {
		return &ParseError{Line: line, Reason: "empty spelling text"}
	}

	var credibility float64
	if len(cols) >= 3 && strings.TrimSpace(cols[2]) != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(cols[2]), 64)
		if err != nil {
			return &ParseError{Line: line, Reason: fmt.Sprintf("invalid credibility %q", cols[2])}
		}
		credibility = v
	}

	s.Merge(syllable, spelling.Annotation{}, []spelling.Spelling{
		{Text: text, Props: spelling.Annotation{Credibility: credibility}},
	})
	return nil
}
