// Package audio holds the PCM building blocks of the pipeline: the mono
// 16-bit segment model, the polyphase resampler used to reconcile voice
// sample rates, and the FLAC track writer.
package audio

import "time"

// Segment is a chunk of mono 16-bit PCM at a known sample rate.
type Segment struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the playback length of the segment.
func (s Segment) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

// Silence returns a zero-valued segment of the given duration.
func Silence(d time.Duration, sampleRate int) Segment {
	n := int(d * time.Duration(sampleRate) / time.Second)
	if n < 0 {
		n = 0
	}
	return Segment{
		Samples:    make([]int16, n),
		SampleRate: sampleRate,
	}
}

// ResampleTo returns a copy of the segment converted to the target rate.
func (s Segment) ResampleTo(sampleRate int) Segment {
	return Segment{
		Samples:    Resample(s.Samples, s.SampleRate, sampleRate),
		SampleRate: sampleRate,
	}
}

// Concat joins segments into one. All inputs must already share the given
// sample rate; callers resample beforehand.
func Concat(sampleRate int, segments ...Segment) Segment {
	total := 0
	for _, seg := range segments {
		total += len(seg.Samples)
	}
	out := make([]int16, 0, total)
	for _, seg := range segments {
		out = append(out, seg.Samples...)
	}
	return Segment{Samples: out, SampleRate: sampleRate}
}
