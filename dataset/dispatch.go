// Package dataset turns a corpus configuration into a ready-to-iterate source
// of collated batches.
//
// Resolve picks the corpus backend and the batch sizing for a split; Load
// wires the backend and a collator into a Loader, which is also a gomlx
// train.Dataset.
package dataset

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tstafylakis/s3prl-correlation/collate"
	"github.com/tstafylakis/s3prl-correlation/corpus"
)

// UnsupportedCorpusError is returned for a corpus name with no backend.
type UnsupportedCorpusError struct {
	Name string
}

func (e *UnsupportedCorpusError) Error() string {
	return fmt.Sprintf("unsupported corpus %q", e.Name)
}

// Kind enumerates the supported corpora.
type Kind int

// Supported corpora. The zero Kind is not a corpus.
const (
	LibriSpeech Kind = iota + 1
	Snips
)

var kindNames = map[Kind]string{
	LibriSpeech: corpus.LibriSpeechName,
	Snips:       corpus.SnipsName,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a corpus name, in any case, to its Kind.
func ParseKind(name string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == norm {
			return k, nil
		}
	}
	return 0, &UnsupportedCorpusError{Name: name}
}

// newBackend constructs the backend for k.
func (k Kind) newBackend(root string, entries []string, tok corpus.Tokenizer, groupSize int) (corpus.Backend, error) {
	switch k {
	case LibriSpeech:
		return corpus.NewLibriSpeech(root, entries, tok, groupSize)
	case Snips:
		return corpus.NewSnips(root, entries, tok, groupSize)
	default:
		return nil, &UnsupportedCorpusError{Name: k.String()}
	}
}

// Sizing returns the backend group size and the number of units the loader
// fetches per batch.
//
// Only a bucketed training split groups items in the backend; the loader then
// fetches one bucket at a time. Every other case fetches batchSize single
// items.
func Sizing(split collate.Split, bucketing bool, batchSize int) (groupSize, fetchSize int) {
	if split.Training() && bucketing {
		return batchSize, 1
	}
	return 1, batchSize
}

// Resolve builds the backend for split and returns it together with the
// loader fetch size. The corpus name is checked before touching the disk.
func Resolve(split collate.Split, tok corpus.Tokenizer, cfg Config) (corpus.Backend, int, error) {
	kind, err := ParseKind(cfg.Name)
	if err != nil {
		return nil, 0, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	entries, err := cfg.Entries(split)
	if err != nil {
		return nil, 0, err
	}

	groupSize, fetchSize := Sizing(split, cfg.Bucketing, cfg.BatchSize)
	backend, err := kind.newBackend(cfg.Path, entries, tok, groupSize)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to open %s split %q", kind, split)
	}
	klog.V(1).Infof("dataset: %s split=%s entries=%v units=%d group=%d fetch=%d",
		kind, split, entries, len(backend.Groups()), groupSize, fetchSize)
	return backend, fetchSize, nil
}
