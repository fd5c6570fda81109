// Package audio decodes the audio files referenced by a corpus manifest into
// in-memory waveforms.
//
// A Waveform is laid out the way the collator consumes it: a row-major
// [Frames][Channels] buffer of float32 samples normalized to [-1, 1). WAV
// files are read with go-audio/wav and FLAC files with mewkiz/flac; the format
// is picked from the file extension.
package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is wrapped in a DecodeError when the file extension
// does not map to a known decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Waveform is a decoded audio signal.
type Waveform struct {
	// Samples holds Frames*Channels interleaved samples, frame-major.
	Samples []float32

	// Frames is the number of samples per channel.
	Frames int

	// Channels is the number of interleaved channels (1 for mono).
	Channels int

	// SampleRate in Hz, as declared by the file header.
	SampleRate int
}

// Shape returns the waveform dimensions as [frames, channels].
func (w Waveform) Shape() []int {
	return []int{w.Frames, w.Channels}
}

// Source decodes the audio file at a path. Implementations must be safe for
// concurrent use: the loader calls Decode from several workers at once.
type Source interface {
	Decode(path string) (Waveform, error)
}

// DecodeError reports a file that could not be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// decoder reads one file format.
type decoder func(path string) (Waveform, error)

// FileSource decodes files from the local filesystem. The zero value is ready
// to use.
type FileSource struct{}

var decoders = map[string]decoder{
	".wav":  decodeWAV,
	".flac": decodeFLAC,
}

// Decode implements Source.
func (FileSource) Decode(path string) (Waveform, error) {
	ext := strings.ToLower(filepath.Ext(path))
	dec, ok := decoders[ext]
	if !ok {
		return Waveform{}, &DecodeError{Path: path, Err: errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)}
	}
	w, err := dec(path)
	if err != nil {
		return Waveform{}, &DecodeError{Path: path, Err: err}
	}
	if w.Channels <= 0 {
		return Waveform{}, &DecodeError{Path: path, Err: errors.New("stream declares no channels")}
	}
	return w, nil
}

// scale returns the divisor that maps signed integer PCM of the given bit
// depth into [-1, 1).
func scale(bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	return float32(uint64(1) << uint(bitDepth-1))
}
