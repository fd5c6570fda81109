package audio

import (
	"io"

	"github.com/mewkiz/flac"
	"github.com/pkg/errors"
)

func decodeFLAC(path string) (Waveform, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return Waveform{}, err
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	if channels == 0 {
		return Waveform{}, errors.New("FLAC stream info declares zero channels")
	}
	div := scale(int(stream.Info.BitsPerSample))

	// NSamples is zero when the encoder did not know the length up front.
	samples := make([]float32, 0, int(stream.Info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Waveform{}, errors.Wrap(err, "parse FLAC frame")
		}
		if len(frame.Subframes) != channels {
			return Waveform{}, errors.Errorf("FLAC frame has %d subframes, want %d", len(frame.Subframes), channels)
		}
		n := int(frame.BlockSize)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float32(frame.Subframes[ch].Samples[i])/div)
			}
		}
	}

	return Waveform{
		Samples:    samples,
		Frames:     len(samples) / channels,
		Channels:   channels,
		SampleRate: int(stream.Info.SampleRate),
	}, nil
}
