package audio

import (
	"math"
	"testing"
)

func TestResampleIdentity(t *testing.T) {
	in := []int16{0, 100, -100, 32767, -32768, 5}
	out := Resample(in, 22050, 22050)

	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d changed: %d -> %d", i, in[i], out[i])
		}
	}

	// Must be a copy, not the same backing array.
	out[0] = 42
	if in[0] == 42 {
		t.Error("identity resample aliases the input slice")
	}
}

func TestResampleLength(t *testing.T) {
	cases := []struct {
		n        int
		from, to int
	}{
		{80, 16000, 22050},
		{22050, 22050, 16000},
		{1000, 16000, 48000},
		{4410, 44100, 22050},
		{1, 16000, 22050},
		{999, 22050, 44100},
	}

	for _, c := range cases {
		in := make([]int16, c.n)
		out := Resample(in, c.from, c.to)

		want := math.Round(float64(c.n) * float64(c.to) / float64(c.from))
		if diff := math.Abs(float64(len(out)) - want); diff > 1 {
			t.Errorf("resample %d samples %d->%d: got %d, want %.0f +/- 1",
				c.n, c.from, c.to, len(out), want)
		}
	}
}

func TestResampleEmpty(t *testing.T) {
	out := Resample(nil, 16000, 22050)
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d samples", len(out))
	}
}

func TestResampleDeterministic(t *testing.T) {
	in := make([]int16, 500)
	for i := range in {
		in[i] = int16(3000 * math.Sin(float64(i)*0.1))
	}

	a := Resample(in, 22050, 16000)
	b := Resample(in, 22050, 16000)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("outputs differ at sample %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestResamplePreservesLevel(t *testing.T) {
	// A constant signal should come out at roughly the same level once the
	// filter has warmed up.
	const level = 1000
	in := make([]int16, 2000)
	for i := range in {
		in[i] = level
	}

	out := Resample(in, 16000, 22050)
	if len(out) == 0 {
		t.Fatal("no output")
	}

	for i := len(out) / 4; i < 3*len(out)/4; i++ {
		if math.Abs(float64(out[i])-level) > 50 {
			t.Fatalf("sample %d = %d, expected near %d", i, out[i], level)
		}
	}
}

func TestResampleClamps(t *testing.T) {
	// Full-scale input must not wrap around after filtering.
	in := make([]int16, 1000)
	for i := range in {
		in[i] = math.MaxInt16
	}

	out := Resample(in, 16000, 22050)
	for i, s := range out {
		if s < -1000 {
			t.Fatalf("sample %d wrapped to %d", i, s)
		}
	}
}
