// Package corpus defines the items a speech corpus enumerates and the
// backends that read them from disk.
//
// A Backend produces an ordered list of units. With a group size of 1 each
// unit is a single Item; with a larger group size each unit is a bucket of
// items of similar length, meant to be delivered to the collator as one
// RawBatch.
package corpus

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyCorpus is returned by backend constructors that found no items.
var ErrEmptyCorpus = errors.New("corpus has no items")

// Item is one audio file paired with its tokenized transcription.
type Item struct {
	Path   string
	Tokens []int
}

// ID returns the base name of the audio path without its extension.
func (it Item) ID() string {
	base := filepath.Base(it.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Tokenizer turns a transcription into token ids.
type Tokenizer interface {
	Encode(text string) []int
}

// Backend is a corpus reader bound to one split.
type Backend interface {
	// Name identifies the corpus, e.g. "librispeech".
	Name() string

	// GroupSize is the number of items coalesced per unit.
	GroupSize() int

	// Groups returns the enumerated units. Every unit holds GroupSize items
	// except possibly the last one. The returned slices are shared and must
	// not be modified.
	Groups() [][]Item
}

type rawKind uint8

const (
	flatKind rawKind = iota
	bucketKind
)

// RawBatch is what the loader hands to the collator: either a flat list of
// items or a single pre-grouped bucket. The zero value is an empty flat batch.
type RawBatch struct {
	kind  rawKind
	items []Item
}

// Flat builds a RawBatch from individually fetched items.
func Flat(items ...Item) RawBatch {
	return RawBatch{kind: flatKind, items: items}
}

// Bucket builds a RawBatch from one pre-grouped bucket.
func Bucket(items []Item) RawBatch {
	return RawBatch{kind: bucketKind, items: items}
}

// IsBucket reports whether b was built with Bucket.
func (b RawBatch) IsBucket() bool { return b.kind == bucketKind }

// Items returns the items of b in order, regardless of its shape.
func (b RawBatch) Items() []Item { return b.items }

// Len returns the number of items in b.
func (b RawBatch) Len() int { return len(b.items) }
