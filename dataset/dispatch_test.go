package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/tstafylakis/s3prl-correlation/collate"
	"github.com/tstafylakis/s3prl-correlation/corpus"
)

type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) []int {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids
}

// writeLibriSpeech creates a LibriSpeech subset with n utterances in a single
// chapter. The audio files are empty placeholders.
func writeLibriSpeech(t *testing.T, root, subset string, n int) {
	t.Helper()
	dir := filepath.Join(root, subset, "19", "198")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	var lines []string
	for i := 0; i < n; i++ {
		id := "19-198-" + strings.Repeat("0", 3) + string(rune('a'+i))
		lines = append(lines, id+" WORD")
		require.NoError(t, os.WriteFile(filepath.Join(dir, id+".flac"), make([]byte, i+1), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "19-198.trans.txt"), []byte(strings.Join(lines, "\n")), 0o644))
}

func libriConfig(root string) Config {
	cfg := DefaultConfig()
	cfg.Name = "librispeech"
	cfg.Path = root
	cfg.BatchSize = 32
	cfg.Splits = map[string]Entries{"train": {"train-clean-100"}, "dev": {"dev-clean"}}
	return cfg
}

func TestSizing(t *testing.T) {
	tests := []struct {
		split     collate.Split
		bucketing bool
		wantGroup int
		wantFetch int
	}{
		{collate.Train, true, 32, 1},
		{collate.Train, false, 1, 32},
		{"dev", true, 1, 32},
		{"dev", false, 1, 32},
		{"test", true, 1, 32},
	}
	for _, tt := range tests {
		group, fetch := Sizing(tt.split, tt.bucketing, 32)
		if group != tt.wantGroup || fetch != tt.wantFetch {
			t.Fatalf("Sizing(%s, %v, 32): got (%d, %d) want (%d, %d)",
				tt.split, tt.bucketing, group, fetch, tt.wantGroup, tt.wantFetch)
		}
	}
}

func TestResolve_LibriSpeech(t *testing.T) {
	root := t.TempDir()
	writeLibriSpeech(t, root, "train-clean-100", 5)
	writeLibriSpeech(t, root, "dev-clean", 3)

	cfg := libriConfig(root)
	cfg.Bucketing = true

	backend, fetch, err := Resolve(collate.Train, byteTokenizer{}, cfg)
	require.NoError(t, err)
	require.Equal(t, 32, backend.GroupSize())
	require.Equal(t, 1, fetch)
	require.Len(t, backend.Groups(), 1)
	require.Len(t, backend.Groups()[0], 5)

	backend, fetch, err = Resolve("dev", byteTokenizer{}, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, backend.GroupSize())
	require.Equal(t, 32, fetch)
	require.Len(t, backend.Groups(), 3)

	cfg.Bucketing = false
	backend, fetch, err = Resolve(collate.Train, byteTokenizer{}, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, backend.GroupSize())
	require.Equal(t, 32, fetch)
}

func TestResolve_CaseInsensitiveName(t *testing.T) {
	root := t.TempDir()
	writeLibriSpeech(t, root, "train-clean-100", 2)
	cfg := libriConfig(root)
	cfg.Name = "LibriSpeech"

	backend, _, err := Resolve(collate.Train, byteTokenizer{}, cfg)
	require.NoError(t, err)
	require.Equal(t, corpus.LibriSpeechName, backend.Name())
}

func TestResolve_UnsupportedCorpus(t *testing.T) {
	// The path does not exist: any I/O would fail with a different error.
	cfg := libriConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	cfg.Name = "foo"
	cfg.BatchSize = 0

	_, _, err := Resolve(collate.Train, byteTokenizer{}, cfg)
	var uce *UnsupportedCorpusError
	require.True(t, errors.As(err, &uce), "got %v", err)
	require.Equal(t, "foo", uce.Name)

	_, err = ParseKind("timit")
	require.True(t, errors.As(err, &uce))
}

func TestResolve_MissingSplit(t *testing.T) {
	cfg := libriConfig(t.TempDir())
	_, _, err := Resolve("test", byteTokenizer{}, cfg)
	require.True(t, errors.Is(err, ErrMissingSplit), "got %v", err)
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"librispeech":  LibriSpeech,
		" LIBRISPEECH": LibriSpeech,
		"Snips":        Snips,
	} {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
	require.Equal(t, "snips", Snips.String())
	require.Equal(t, "Kind(9)", Kind(9).String())
}
