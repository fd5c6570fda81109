// Package collate turns a raw batch of corpus items into a model-ready batch.
//
// Collate decodes every item, optionally drops the second half of a training
// batch whose first item is very long, and sorts the result by descending
// audio length so that padding is cheap downstream.
package collate

import (
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tstafylakis/s3prl-correlation/audio"
	"github.com/tstafylakis/s3prl-correlation/corpus"
)

// DefaultHalfBatchFrames is the first-item frame count above which a mono
// training batch is halved.
const DefaultHalfBatchFrames = 300000

// ErrInvalidBatch is returned for an empty raw batch.
var ErrInvalidBatch = errors.New("invalid raw batch")

// Split names the phase data is prepared for.
type Split string

// Train is the training split. Every other split is an evaluation split.
const Train Split = "train"

// Training reports whether s is the training split.
func (s Split) Training() bool { return s == Train }

// Collator collates raw batches for one split. It holds no per-call state and
// is safe for concurrent use as long as its Source is.
type Collator struct {
	source          audio.Source
	split           Split
	halfBatchFrames int
}

// Option configures a Collator.
type Option func(*Collator)

// WithHalfBatchFrames sets the memory-guard threshold. Non-positive values
// are ignored.
func WithHalfBatchFrames(frames int) Option {
	return func(c *Collator) {
		if frames > 0 {
			c.halfBatchFrames = frames
		}
	}
}

// New creates a Collator reading audio from src.
func New(src audio.Source, split Split, opts ...Option) *Collator {
	c := &Collator{
		source:          src,
		split:           split,
		halfBatchFrames: DefaultHalfBatchFrames,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split returns the split the collator was built for.
func (c *Collator) Split() Split { return c.split }

// decoded is one item after reading its audio.
type decoded struct {
	id       string
	waveform audio.Waveform
	tokens   []int
}

// Collate builds a Batch from raw.
//
// On the training split, the first item is decoded before anything else: if
// it is mono, longer than the half-batch threshold and the batch holds more
// than one item, only the first len/2 items are kept. Only the first item is
// inspected, so a long item further down the batch does not trigger the
// guard. Any decode failure aborts the whole batch.
func (c *Collator) Collate(raw corpus.RawBatch) (*Batch, error) {
	items := raw.Items()
	if len(items) == 0 {
		return nil, errors.Wrap(ErrInvalidBatch, "no items")
	}

	var first *audio.Waveform
	if c.split.Training() {
		w, err := c.decode(items[0].Path)
		if err != nil {
			return nil, err
		}
		first = &w
		if w.Channels == 1 && w.Frames > c.halfBatchFrames && len(items) > 1 {
			klog.V(2).Infof("collate: first item %s has %d frames, keeping %d of %d items",
				items[0].ID(), w.Frames, len(items)/2, len(items))
			items = items[:len(items)/2]
		}
	}

	batch := make([]decoded, len(items))
	for i, it := range items {
		var w audio.Waveform
		if i == 0 && first != nil {
			w = *first
		} else {
			var err error
			if w, err = c.decode(it.Path); err != nil {
				return nil, err
			}
		}
		batch[i] = decoded{id: it.ID(), waveform: w, tokens: it.Tokens}
	}

	sort.SliceStable(batch, func(a, b int) bool {
		return batch[a].waveform.Frames > batch[b].waveform.Frames
	})

	out := &Batch{
		Waveforms: make([]audio.Waveform, len(batch)),
		Tokens:    make([][]int, len(batch)),
		IDs:       make([]string, len(batch)),
	}
	for i, d := range batch {
		out.Waveforms[i] = d.waveform
		out.Tokens[i] = d.tokens
		out.IDs[i] = d.id
	}
	return out, nil
}

// decode reads one file, making sure failures surface as *audio.DecodeError
// whatever the Source returned.
func (c *Collator) decode(path string) (audio.Waveform, error) {
	w, err := c.source.Decode(path)
	if err != nil {
		var de *audio.DecodeError
		if !errors.As(err, &de) {
			err = &audio.DecodeError{Path: path, Err: err}
		}
		return audio.Waveform{}, err
	}
	return w, nil
}
