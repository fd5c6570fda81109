package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// writeWAV writes interleaved 16-bit PCM samples to path.
func writeWAV(t *testing.T, path string, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 16000, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: 16000},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close wav encoder: %v", err)
	}
}

func TestFileSource_DecodeMonoWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utt-0001.wav")
	writeWAV(t, path, 1, []int{0, 16384, -16384, 32767, -32768})

	w, err := FileSource{}.Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w.Frames != 5 || w.Channels != 1 {
		t.Fatalf("unexpected shape: got %v want [5 1]", w.Shape())
	}
	if w.SampleRate != 16000 {
		t.Fatalf("unexpected sample rate: got %d want 16000", w.SampleRate)
	}
	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1}
	for i, v := range want {
		if math.Abs(float64(w.Samples[i]-v)) > 1e-6 {
			t.Fatalf("sample %d: got %v want %v", i, w.Samples[i], v)
		}
	}
}

func TestFileSource_DecodeStereoWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.WAV")
	// three frames, two channels each
	writeWAV(t, path, 2, []int{1, 2, 3, 4, 5, 6})

	w, err := FileSource{}.Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w.Frames != 3 || w.Channels != 2 {
		t.Fatalf("unexpected shape: got %v want [3 2]", w.Shape())
	}
	if len(w.Samples) != 6 {
		t.Fatalf("unexpected sample count: got %d want 6", len(w.Samples))
	}
}

func TestFileSource_Errors(t *testing.T) {
	tmp := t.TempDir()

	corrupt := filepath.Join(tmp, "corrupt.wav")
	if err := os.WriteFile(corrupt, []byte("definitely not RIFF"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing wav", filepath.Join(tmp, "missing.wav")},
		{"missing flac", filepath.Join(tmp, "missing.flac")},
		{"corrupt wav", corrupt},
		{"unknown extension", filepath.Join(tmp, "clip.ogg")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FileSource{}.Decode(tt.path)
			if err == nil {
				t.Fatalf("expected an error decoding %s", tt.path)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if de.Path != tt.path {
				t.Fatalf("DecodeError path: got %q want %q", de.Path, tt.path)
			}
		})
	}

	_, err := FileSource{}.Decode(filepath.Join(tmp, "clip.ogg"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestScale(t *testing.T) {
	tests := map[int]float32{8: 128, 16: 32768, 24: 8388608, 32: 2147483648, 0: 32768}
	for depth, want := range tests {
		if got := scale(depth); got != want {
			t.Fatalf("scale(%d): got %v want %v", depth, got, want)
		}
	}
}
