package dataset

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	mldatasets "github.com/gomlx/gomlx/pkg/ml/datasets"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tstafylakis/s3prl-correlation/audio"
	"github.com/tstafylakis/s3prl-correlation/collate"
	"github.com/tstafylakis/s3prl-correlation/corpus"
)

// Loader delivers the collated batches of one split, pass after pass.
//
// With NumWorkers > 0 batches are collated ahead of time by that many
// goroutines and arrive in completion order, not enumeration order. With
// NumWorkers == 0 they are collated on the caller's goroutine, in order.
//
// Loader implements train.Dataset, so it can be handed to a gomlx trainer.
type Loader struct {
	producer *Producer
	parallel *mldatasets.ParallelDataset
}

var _ train.Dataset = (*Loader)(nil)

type loadOptions struct {
	source audio.Source
}

// Option configures Load.
type Option func(*loadOptions)

// WithSource replaces the audio source, which defaults to audio.FileSource.
func WithSource(src audio.Source) Option {
	return func(o *loadOptions) { o.source = src }
}

// Load resolves the corpus for split and starts a Loader over it. Close must
// be called to stop the worker goroutines.
func Load(split collate.Split, tok corpus.Tokenizer, cfg Config, opts ...Option) (*Loader, error) {
	o := loadOptions{source: audio.FileSource{}}
	for _, opt := range opts {
		opt(&o)
	}

	backend, fetchSize, err := Resolve(split, tok, cfg)
	if err != nil {
		return nil, err
	}
	collator := collate.New(o.source, split, collate.WithHalfBatchFrames(cfg.HalfBatchFrames))
	l := &Loader{producer: NewProducer(backend, collator, fetchSize, cfg.Seed)}

	if cfg.NumWorkers > 0 {
		l.parallel = mldatasets.CustomParallel(poolFeed{l.producer}).
			Parallelism(cfg.NumWorkers).
			Buffer(cfg.NumWorkers).
			Start()
	}
	klog.V(1).Infof("dataset: loader %s ready, %d batches per pass, %d workers",
		l.producer.Name(), l.producer.Len(), cfg.NumWorkers)
	return l, nil
}

// Name implements train.Dataset.
func (l *Loader) Name() string { return l.producer.Name() }

// ShortName implements train.HasShortName.
func (l *Loader) ShortName() string { return l.producer.ShortName() }

// Len returns the number of batches in one pass.
func (l *Loader) Len() int { return l.producer.Len() }

// Next returns the next batch of the current pass, or io.EOF when the pass is
// over. Call Reset to start the next pass.
func (l *Loader) Next() (*collate.Batch, error) {
	if l.parallel == nil {
		return l.producer.Next()
	}
	spec, _, _, err := l.Yield()
	if err != nil {
		return nil, err
	}
	return spec.(*collate.Batch), nil
}

// Yield implements train.Dataset. spec is the *collate.Batch.
//
// A collation error is returned in place of its own batch, in both modes;
// the rest of the pass is still delivered.
func (l *Loader) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if l.parallel == nil {
		return l.producer.Yield()
	}

	spec, inputs, labels, err = l.parallel.Yield()
	if err != nil {
		return nil, nil, nil, err
	}
	switch s := spec.(type) {
	case *collate.Batch:
		return s, inputs, labels, nil
	case failedBatch:
		return nil, nil, nil, s.err
	default:
		return nil, nil, nil, errors.Errorf("loader %s: unexpected yield spec %T", l.Name(), spec)
	}
}

// Reset implements train.Dataset. It abandons whatever is left of the current
// pass and starts a new one.
func (l *Loader) Reset() {
	if l.parallel == nil {
		l.producer.Reset()
		return
	}
	l.parallel.Reset()
}

// Close stops the worker goroutines and waits for them to exit. The Loader
// must not be used afterwards.
func (l *Loader) Close() {
	if l.parallel == nil {
		l.producer.stop()
		return
	}
	// ParallelDataset.Done only returns if its workers are still running, so
	// starve them instead and wait for the pass to run dry.
	l.producer.stop()
	for {
		if _, _, _, err := l.parallel.Yield(); err != nil {
			break
		}
	}
	l.parallel = nil
}
