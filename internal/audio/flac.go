package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const flacBlockSize = 4096

// minTrackBytes is the smallest size a written track may have before the
// integrity check considers it truncated. The FLAC marker plus a STREAMINFO
// block alone take 42 bytes.
const minTrackBytes = 42

// WriteFLAC encodes a mono 16-bit segment as FLAC (verbatim subframes).
// The writer is never closed: the encoder would close any io.Closer it is
// handed, so it only ever sees a plain writer.
func WriteFLAC(w io.Writer, seg Segment) error {
	if seg.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", seg.SampleRate)
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(seg.SampleRate),
		NChannels:     1,
		BitsPerSample: 16,
		NSamples:      uint64(len(seg.Samples)),
	}

	enc, err := flac.NewEncoder(struct{ io.Writer }{w}, info)
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}

	for start := 0; start < len(seg.Samples); start += flacBlockSize {
		end := start + flacBlockSize
		if end > len(seg.Samples) {
			end = len(seg.Samples)
		}
		block := seg.Samples[start:end]

		samples := make([]int32, len(block))
		for i, s := range block {
			samples[i] = int32(s)
		}

		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: false,
				BlockSize:         uint16(len(block)),
				SampleRate:        uint32(seg.SampleRate),
				Channels:          frame.ChannelsMono,
				BitsPerSample:     16,
			},
			Subframes: []*frame.Subframe{
				{
					SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
					Samples:   samples,
					NSamples:  len(block),
				},
			},
		}
		if err := enc.WriteFrame(f); err != nil {
			enc.Close()
			return fmt.Errorf("write frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}
	return nil
}

// EncodeFile writes the segment to path as FLAC. A partially written file is
// removed on error so failed runs never leave a track behind.
func EncodeFile(path string, seg Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteFLAC(f, seg); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// CheckTrack verifies a written track exists and is not trivially truncated.
func CheckTrack(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat track: %w", err)
	}
	if fi.Size() < minTrackBytes {
		return fmt.Errorf("track %s is truncated (%d bytes)", path, fi.Size())
	}
	return nil
}
