package trace

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Parse_WellFormed(t *testing.T) {
	input := `
20000
3
5
1

a 0 512
a 1 64
r 0 1024
f 1
f 0
`
	tr, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, 20000, tr.SuggestedBytes)
	require.Equal(t, 3, tr.IDs)
	require.Equal(t, 1, tr.Weight)
	require.Equal(t, []Op{
		{Kind: OpAlloc, ID: 0, Size: 512},
		{Kind: OpAlloc, ID: 1, Size: 64},
		{Kind: OpResize, ID: 0, Size: 1024},
		{Kind: OpRelease, ID: 1},
		{Kind: OpRelease, ID: 0},
	}, tr.Ops)
}

func Test_Parse_HeaderErrors(t *testing.T) {
	cases := map[string]string{
		"empty input":       "",
		"short header":      "100\n2\n",
		"non-numeric line":  "100\ntwo\n3\n1\n",
		"negative id count": "100\n-2\n0\n1\n",
		"negative op count": "100\n2\n-5\n1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func Test_Parse_OpErrors(t *testing.T) {
	cases := map[string]string{
		"unknown op":        "100\n2\n1\n1\nx 0 8\n",
		"id out of range":   "100\n2\n1\n1\na 2 8\n",
		"negative id":       "100\n2\n1\n1\na -1 8\n",
		"zero size":         "100\n2\n1\n1\na 0 0\n",
		"release with size": "100\n2\n1\n1\nf 0 8\n",
		"alloc missing arg": "100\n2\n1\n1\na 0\n",
		"count mismatch":    "100\n2\n3\n1\na 0 8\nf 0\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func Test_Encode_RoundTrip(t *testing.T) {
	tr := &Trace{
		SuggestedBytes: 4096,
		IDs:            4,
		Weight:         1,
		Ops: []Op{
			{Kind: OpAlloc, ID: 2, Size: 100},
			{Kind: OpResize, ID: 2, Size: 300},
			{Kind: OpAlloc, ID: 0, Size: 24},
			{Kind: OpRelease, ID: 2},
			{Kind: OpRelease, ID: 0},
		},
	}

	var b strings.Builder
	require.NoError(t, tr.Encode(&b))

	got, err := Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, tr, got)
}

func Test_Open_PlainAndBrotli(t *testing.T) {
	tr := Generate(&GenConfig{Ops: 500, IDs: 32, MinSize: 16, MaxSize: 256, Seed: 3})
	dir := t.TempDir()

	for _, name := range []string{"work.trace", "work.trace.br"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, tr.WriteFile(path))

			got, err := Open(path)
			require.NoError(t, err)
			require.Equal(t, tr, got)
		})
	}
}

func Test_Open_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.trace"))
	require.Error(t, err)
}
