package main

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"k8s.io/klog/v2"

	"github.com/tstafylakis/s3prl-correlation/collate"
)

// stats accumulates per-batch figures over a pass.
type stats struct {
	batchSize int

	Batches int
	Items   int
	// Short counts batches holding fewer items than batch_size: the last
	// batch of a pass, bucket remainders and memory-guard truncations.
	Short int

	// Longest holds the frame count of the longest item of every batch.
	Longest []float64

	MaxFrames int
	MaxID     string
}

func newStats(batchSize int) *stats {
	return &stats{batchSize: batchSize}
}

// Add records one batch. Batches are sorted, so the first item is the longest.
func (s *stats) Add(b *collate.Batch) {
	s.Batches++
	s.Items += b.Len()
	if b.Len() < s.batchSize {
		s.Short++
	}
	if b.Len() == 0 {
		return
	}
	frames := b.Waveforms[0].Frames
	s.Longest = append(s.Longest, float64(frames))
	if frames > s.MaxFrames {
		s.MaxFrames = frames
		s.MaxID = b.IDs[0]
	}
}

// MeanBatch returns the average number of items per batch.
func (s *stats) MeanBatch() float64 {
	if s.Batches == 0 {
		return 0
	}
	return float64(s.Items) / float64(s.Batches)
}

func (s *stats) Report() {
	klog.Infof("batches=%d items=%d mean_batch=%.2f short_batches=%d", s.Batches, s.Items, s.MeanBatch(), s.Short)
	if s.MaxID != "" {
		klog.Infof("longest item: %s (%d frames)", s.MaxID, s.MaxFrames)
	}
}

// PlotLongest writes a histogram of the per-batch longest frame counts.
func (s *stats) PlotLongest(path string) error {
	if len(s.Longest) == 0 {
		return errors.New("no batches to plot")
	}
	p := plot.New()
	p.Title.Text = "Longest item per batch"
	p.X.Label.Text = "frames"
	p.Y.Label.Text = "batches"

	h, err := plotter.NewHist(plotter.Values(s.Longest), 20)
	if err != nil {
		return errors.Wrap(err, "failed to build histogram")
	}
	p.Add(h)
	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "failed to save %s", path)
}
