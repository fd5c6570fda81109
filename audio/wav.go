package audio

import (
	"os"

	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

func decodeWAV(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Waveform{}, errors.New("not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, errors.Wrap(err, "read PCM data")
	}

	channels := int(dec.NumChans)
	if channels == 0 {
		return Waveform{}, errors.New("WAV header declares zero channels")
	}
	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}

	div := scale(bitDepth)
	// 8-bit WAV is unsigned; everything else is signed.
	var offset int
	if bitDepth == 8 {
		offset = 128
	}
	frames := len(buf.Data) / channels
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = float32(buf.Data[i]-offset) / div
	}

	return Waveform{
		Samples:    samples,
		Frames:     frames,
		Channels:   channels,
		SampleRate: int(dec.SampleRate),
	}, nil
}
