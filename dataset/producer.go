package dataset

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"

	"github.com/tstafylakis/s3prl-correlation/collate"
	"github.com/tstafylakis/s3prl-correlation/corpus"
)

// Producer walks a backend one pass at a time and collates every fetch into a
// Batch. A pass visits each unit of the backend exactly once, in a fresh
// random order when the collator's split is the training split.
//
// Producer implements train.Dataset and is safe for concurrent use: several
// goroutines may call Next or Yield, each gets a distinct fetch.
type Producer struct {
	backend  corpus.Backend
	collator *collate.Collator
	fetch    int
	shuffle  bool

	mu      sync.Mutex
	rng     *rand.Rand
	order   []int
	cursor  int
	stopped bool
}

var _ train.Dataset = (*Producer)(nil)

// NewProducer creates a Producer fetching fetchSize units per batch. A
// bucketing backend always fetches one bucket per batch, whatever fetchSize
// says. A zero seed picks a time-based one.
func NewProducer(backend corpus.Backend, collator *collate.Collator, fetchSize int, seed int64) *Producer {
	if fetchSize < 1 || backend.GroupSize() > 1 {
		fetchSize = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p := &Producer{
		backend:  backend,
		collator: collator,
		fetch:    fetchSize,
		shuffle:  collator.Split().Training(),
		rng:      rand.New(rand.NewSource(seed)),
		order:    make([]int, len(backend.Groups())),
	}
	for i := range p.order {
		p.order[i] = i
	}
	p.shuffleOrder()
	return p
}

// shuffleOrder must be called with mu held or before p is shared.
func (p *Producer) shuffleOrder() {
	if !p.shuffle {
		return
	}
	p.rng.Shuffle(len(p.order), func(i, j int) {
		p.order[i], p.order[j] = p.order[j], p.order[i]
	})
}

// Name implements train.Dataset.
func (p *Producer) Name() string {
	return fmt.Sprintf("%s/%s", p.backend.Name(), p.collator.Split())
}

// ShortName implements train.HasShortName.
func (p *Producer) ShortName() string {
	name := p.backend.Name()
	return strings.ToUpper(name[:min(3, len(name))])
}

// Len returns the number of batches in one pass.
func (p *Producer) Len() int {
	return (len(p.order) + p.fetch - 1) / p.fetch
}

// Reset implements train.Dataset. It starts a new pass, reshuffled on the
// training split.
func (p *Producer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = 0
	p.shuffleOrder()
}

// take claims the next fetch of the pass.
func (p *Producer) take() (corpus.RawBatch, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.cursor >= len(p.order) {
		return corpus.RawBatch{}, false
	}
	end := min(p.cursor+p.fetch, len(p.order))
	idx := p.order[p.cursor:end]
	p.cursor = end

	groups := p.backend.Groups()
	if p.backend.GroupSize() > 1 {
		// fetch is 1 when the backend buckets.
		return corpus.Bucket(groups[idx[0]]), true
	}
	items := make([]corpus.Item, 0, len(idx))
	for _, i := range idx {
		items = append(items, groups[i]...)
	}
	return corpus.Flat(items...), true
}

// Next collates the next fetch of the pass. It returns io.EOF once the pass is
// exhausted. A collation error only affects its own batch.
func (p *Producer) Next() (*collate.Batch, error) {
	raw, ok := p.take()
	if !ok {
		return nil, io.EOF
	}
	return p.collator.Collate(raw)
}

// Yield implements train.Dataset. spec is the *collate.Batch, inputs are the
// waveform tensors and labels the token tensors. A collation error is
// returned for its own batch only; the next call moves on to the next fetch.
func (p *Producer) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	b, err := p.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	inputs, labels = b.Tensors()
	return b, inputs, labels, nil
}

// stop ends the current pass and every later one.
func (p *Producer) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

// failedBatch carries a collation error through the worker pool in place of
// a batch.
type failedBatch struct {
	err error
}

// poolFeed is the train.Dataset handed to the gomlx worker pool. The pool
// tears itself down on any error other than io.EOF, so collation failures
// travel through it as failedBatch specs instead.
type poolFeed struct {
	*Producer
}

// Yield implements train.Dataset.
func (f poolFeed) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	spec, inputs, labels, err = f.Producer.Yield()
	if err != nil && err != io.EOF {
		return failedBatch{err: err}, nil, nil, nil
	}
	return spec, inputs, labels, err
}
