package corpus

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// LibriSpeechName is the registry name of the LibriSpeech corpus.
const LibriSpeechName = "librispeech"

// NewLibriSpeech reads the LibriSpeech subsets named in entries (for example
// "train-clean-100") under root.
//
// Each subset is laid out as <subset>/<speaker>/<chapter>/, where the chapter
// directory holds <speaker>-<chapter>.trans.txt with one "UTTERANCE-ID TEXT"
// line per utterance and a matching <UTTERANCE-ID>.flac file. Items are
// ordered by subset (in entries order), speaker, chapter and transcript line.
// The audio file size is used as the length hint for bucketing.
func NewLibriSpeech(root string, entries []string, tok Tokenizer, groupSize int) (Backend, error) {
	if tok == nil {
		return nil, errors.New("librispeech: tokenizer is nil")
	}
	var items []Item
	var lengths []int64
	for _, entry := range entries {
		subset := filepath.Join(root, entry)
		speakers, err := subdirs(subset)
		if err != nil {
			return nil, errors.Wrapf(err, "librispeech: failed to list subset %s", entry)
		}
		for _, speaker := range speakers {
			chapters, err := subdirs(filepath.Join(subset, speaker))
			if err != nil {
				return nil, errors.Wrapf(err, "librispeech: failed to list speaker %s", speaker)
			}
			for _, chapter := range chapters {
				dir := filepath.Join(subset, speaker, chapter)
				trans := filepath.Join(dir, speaker+"-"+chapter+".trans.txt")
				if err := readTranscript(trans, dir, tok, &items, &lengths); err != nil {
					return nil, err
				}
			}
		}
	}

	g, err := newGrouped(LibriSpeechName, items, lengths, groupSize)
	if err != nil {
		return nil, errors.Wrapf(err, "librispeech: %s %v", root, entries)
	}
	return g, nil
}

// subdirs lists the directory names under dir in lexical order.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func readTranscript(path, dir string, tok Tokenizer, items *[]Item, lengths *[]int64) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		klog.Warningf("librispeech: chapter %s has no transcript, skipping", dir)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "librispeech: failed to open transcript")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, text, ok := strings.Cut(line, " ")
		if !ok {
			klog.Warningf("librispeech: %s: malformed line %q", path, line)
			continue
		}
		audioPath := filepath.Join(dir, id+".flac")
		info, err := os.Stat(audioPath)
		if err != nil {
			klog.Warningf("librispeech: missing audio for %s: %v", id, err)
			continue
		}
		*items = append(*items, Item{Path: audioPath, Tokens: tok.Encode(strings.TrimSpace(text))})
		*lengths = append(*lengths, info.Size())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "librispeech: failed to read %s", path)
	}
	return nil
}
