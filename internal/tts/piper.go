package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/ljmonteiro/interviewcast/internal/audio"
	"github.com/ljmonteiro/interviewcast/internal/models"
)

// PiperSynthesizer shells out to the piper binary, one process per line,
// reading raw 16-bit little-endian mono PCM from stdout. Voice configs are
// converted from parquet to a temp JSON file once per model and reused
// until Close.
type PiperSynthesizer struct {
	bin string

	mu     sync.Mutex
	loaded map[string]*loadedVoice
}

type loadedVoice struct {
	configJSON string
	sampleRate int
}

func NewPiperSynthesizer(bin string) *PiperSynthesizer {
	return &PiperSynthesizer{
		bin:    bin,
		loaded: make(map[string]*loadedVoice),
	}
}

// load returns the cached converted config for a voice, converting it on
// first use.
func (p *PiperSynthesizer) load(voice VoiceProfile) (*loadedVoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lv, ok := p.loaded[voice.ModelPath]; ok {
		return lv, nil
	}

	cfg, err := loadVoiceConfig(voice.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	path, err := writeTempConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}

	lv := &loadedVoice{configJSON: path, sampleRate: cfg.Audio.SampleRate}
	p.loaded[voice.ModelPath] = lv
	log.Printf("[Piper] loaded voice %s (rate %d)", voice.Name, lv.sampleRate)
	return lv, nil
}

// Synthesize renders one line of text with the given voice.
func (p *PiperSynthesizer) Synthesize(ctx context.Context, text string, voice VoiceProfile) (audio.Segment, error) {
	lv, err := p.load(voice)
	if err != nil {
		return audio.Segment{}, err
	}

	cmd := exec.CommandContext(ctx, p.bin,
		"--model", voice.ModelPath,
		"--config", lv.configJSON,
		"--output_raw",
	)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return audio.Segment{}, fmt.Errorf("piper %s: %w: %v (%s)",
			voice.Name, models.ErrSynthesis, err, strings.TrimSpace(stderr.String()))
	}

	samples := bytesToInt16(stdout.Bytes())
	if len(samples) == 0 {
		return audio.Segment{}, fmt.Errorf("piper %s returned no audio for %q: %w",
			voice.Name, truncate(text, 40), models.ErrSynthesis)
	}

	return audio.Segment{Samples: samples, SampleRate: lv.sampleRate}, nil
}

// Close removes the temp config files created by load.
func (p *PiperSynthesizer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for model, lv := range p.loaded {
		if err := os.Remove(lv.configJSON); err != nil && first == nil {
			first = err
		}
		delete(p.loaded, model)
	}
	return first
}

// bytesToInt16 decodes little-endian 16-bit PCM. A trailing odd byte is
// dropped.
func bytesToInt16(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
