package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spella/spella/internal/spelling"
)

func TestReadDict_Header(t *testing.T) {
	src := strings.Join([]string{
		"---",
		"name: luna_pinyin",
		"version: \"0.9\"",
		"...",
		"zhong",
	}, "\n")

	header, s, err := ReadDict(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "luna_pinyin", header.Name)
	assert.Equal(t, "0.9", header.Version)
	assert.Equal(t, 1, s.Len())
}

func TestReadDict_NoHeader(t *testing.T) {
	header, s, err := ReadDict(strings.NewReader("zhong\nchang\n"))
	require.NoError(t, err)
	assert.Empty(t, header.Name)
	assert.Equal(t, []string{"chang", "zhong"}, s.Syllables())
}

func TestReadDict_IdentitySpelling(t *testing.T) {
	_, s, err := ReadDict(strings.NewReader("zhong\n"))
	require.NoError(t, err)

	got := s.Spellings("zhong")
	require.Len(t, got, 1)
	assert.Equal(t, "zhong", got[0].Text)
	assert.Equal(t, spelling.Annotation{}, got[0].Props)
}

func TestReadDict_AlternativeSpelling(t *testing.T) {
	_, s, err := ReadDict(strings.NewReader("zhong\tzong\t-0.5\n"))
	require.NoError(t, err)

	got := s.Spellings("zhong")
	require.Len(t, got, 2)
	assert.Equal(t, "zhong", got[0].Text)
	assert.Equal(t, "zong", got[1].Text)
	assert.Equal(t, -0.5, got[1].Props.Credibility)
}

func TestReadDict_RepeatedSyllableMerges(t *testing.T) {
	src := "zhong\tzong\nzhong\tjong\n"
	_, s, err := ReadDict(strings.NewReader(src))
	require.NoError(t, err)

	got := s.Spellings("zhong")
	require.Len(t, got, 3)
	assert.Equal(t, "jong", got[0].Text)
	assert.Equal(t, "zhong", got[1].Text)
	assert.Equal(t, "zong", got[2].Text)
}

func TestReadDict_NFCNormalization(t *testing.T) {
	// "e" followed by a combining acute accent normalizes to the
	// precomposed form.
	_, s, err := ReadDict(strings.NewReader("me\u0301\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"m\u00e9"}, s.Syllables())
}

func TestReadDict_SkipsCommentsAndBlanks(t *testing.T) {
	src := "# comment\n\nzhong\n  \n# another\nchang\n"
	_, s, err := ReadDict(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestReadDict_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unterminated header", "---\nname: x\n", 2},
		{"bad yaml", "---\nname: [\n...\n", 3},
		{"empty spelling text", "zhong\t\n", 1},
		{"bad credibility", "zhong\tzong\tnope\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadDict(strings.NewReader(tt.src))
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}
