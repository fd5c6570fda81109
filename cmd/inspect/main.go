// Command inspect loads a corpus exactly as the training loop would, runs one
// pass of its loader and reports batch statistics.
//
// Usage:
//
//	go run ./cmd/inspect -config corpus.yaml -vocab vocab.txt -split train -plot lengths.png
//
// The config is the YAML corpus section (name, path, per-split entries,
// bucketing, batch_size, num_workers). Use -v=1 to see how the corpus was
// resolved and -v=2 to log every memory-guard truncation.
package main

import (
	"flag"
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"k8s.io/klog/v2"

	"github.com/tstafylakis/s3prl-correlation/collate"
	"github.com/tstafylakis/s3prl-correlation/dataset"
	"github.com/tstafylakis/s3prl-correlation/text"
)

func main() {
	klog.InitFlags(nil)
	configPath := flag.String("config", "corpus.yaml", "path to the YAML corpus config")
	split := flag.String("split", string(collate.Train), "split to load (train, dev, test, ...)")
	vocabPath := flag.String("vocab", "vocab.txt", "character vocabulary, one symbol per line")
	maxBatches := flag.Int("max-batches", 0, "stop after this many batches (0 = full pass)")
	workers := flag.Int("workers", -1, "override num_workers from the config (-1 keeps the config value)")
	plotPath := flag.String("plot", "", "if set, write a histogram of each batch's longest frame count to this PNG")
	flag.Parse()
	defer klog.Flush()

	cfg, err := dataset.LoadConfig(*configPath)
	if err != nil {
		klog.Fatalf("failed to load corpus config: %v", err)
	}
	if *workers >= 0 {
		cfg.NumWorkers = *workers
	}
	tok, err := text.LoadCharacterVocab(*vocabPath)
	if err != nil {
		klog.Fatalf("failed to load vocabulary: %v", err)
	}

	loader, err := dataset.Load(collate.Split(*split), tok, cfg)
	if err != nil {
		klog.Fatalf("failed to load %s split %q: %v", cfg.Name, *split, err)
	}
	defer loader.Close()
	klog.Infof("Loaded %s: %d batches per pass (batch_size=%d, bucketing=%v, workers=%d)",
		loader.Name(), loader.Len(), cfg.BatchSize, cfg.Bucketing, cfg.NumWorkers)

	total := loader.Len()
	if *maxBatches > 0 && *maxBatches < total {
		total = *maxBatches
	}

	progress := mpb.New(mpb.WithWidth(64))
	bar := progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Collating: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)

	st := newStats(cfg.BatchSize)
	passStart := time.Now()
	for st.Batches < total {
		start := time.Now()
		b, err := loader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			bar.Abort(false)
			progress.Wait()
			klog.Fatalf("batch %d failed: %v", st.Batches, err)
		}
		st.Add(b)
		bar.EwmaIncrement(time.Since(start))
	}
	bar.SetTotal(-1, true)
	progress.Wait()

	klog.Infof("Pass finished in %s", time.Since(passStart).Round(time.Millisecond))
	st.Report()

	if *plotPath != "" {
		if err := st.PlotLongest(*plotPath); err != nil {
			klog.Fatalf("failed to write plot: %v", err)
		}
		klog.Infof("Wrote batch length histogram to %s", *plotPath)
	}
}
