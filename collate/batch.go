package collate

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/tstafylakis/s3prl-correlation/audio"
)

// Batch is a collated batch. Waveforms, Tokens and IDs are co-indexed and
// sorted by descending waveform length.
type Batch struct {
	Waveforms []audio.Waveform
	Tokens    [][]int
	IDs       []string
}

// Len returns the number of items in the batch.
func (b *Batch) Len() int { return len(b.IDs) }

// Lengths returns the frame count of every waveform.
func (b *Batch) Lengths() []int {
	lengths := make([]int, len(b.Waveforms))
	for i, w := range b.Waveforms {
		lengths[i] = w.Frames
	}
	return lengths
}

// Tensors converts the batch to gomlx tensors: one float32 [frames, channels]
// tensor per waveform and one int32 tensor per token sequence. Items keep
// their own lengths; padding is left to the model.
func (b *Batch) Tensors() (waveforms []*tensors.Tensor, tokens []*tensors.Tensor) {
	waveforms = make([]*tensors.Tensor, len(b.Waveforms))
	for i, w := range b.Waveforms {
		waveforms[i] = tensors.FromFlatDataAndDimensions(w.Samples, w.Frames, w.Channels)
	}
	tokens = make([]*tensors.Tensor, len(b.Tokens))
	for i, seq := range b.Tokens {
		ids := make([]int32, len(seq))
		for j, id := range seq {
			ids[j] = int32(id)
		}
		tokens[i] = tensors.FromFlatDataAndDimensions(ids, len(ids))
	}
	return waveforms, tokens
}
