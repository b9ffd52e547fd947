package tts

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// voiceConfig is the piper voice configuration as stored in the single-row
// .onnx.parquet sidecar. Fields mirror the JSON config piper expects; the
// parquet layout is a flat one-row table of the same shape.
type voiceConfig struct {
	Audio struct {
		SampleRate int    `parquet:"sample_rate" json:"sample_rate"`
		Quality    string `parquet:"quality,optional" json:"quality,omitempty"`
	} `parquet:"audio" json:"audio"`
	Espeak struct {
		Voice string `parquet:"voice" json:"voice"`
	} `parquet:"espeak" json:"espeak"`
	Inference struct {
		NoiseScale  float64 `parquet:"noise_scale" json:"noise_scale"`
		LengthScale float64 `parquet:"length_scale" json:"length_scale"`
		NoiseW      float64 `parquet:"noise_w" json:"noise_w"`
	} `parquet:"inference" json:"inference"`
	PhonemeType   string             `parquet:"phoneme_type,optional" json:"phoneme_type,omitempty"`
	PhonemeIDMap  map[string][]int32 `parquet:"phoneme_id_map,optional" json:"phoneme_id_map,omitempty"`
	NumSymbols    int                `parquet:"num_symbols,optional" json:"num_symbols,omitempty"`
	NumSpeakers   int                `parquet:"num_speakers,optional" json:"num_speakers,omitempty"`
}

// loadVoiceConfig reads the one-row parquet sidecar for a voice.
func loadVoiceConfig(path string) (*voiceConfig, error) {
	rows, err := parquet.ReadFile[voiceConfig](path)
	if err != nil {
		return nil, fmt.Errorf("read voice config %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("voice config %s has no rows", path)
	}
	cfg := rows[0]
	if cfg.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("voice config %s has no sample rate", path)
	}
	return &cfg, nil
}

// writeTempConfig materializes the config as the JSON file piper reads.
// The caller owns the returned path and removes it when done.
func writeTempConfig(cfg *voiceConfig) (string, error) {
	f, err := os.CreateTemp("", "voice-config-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp config: %w", err)
	}

	enc := json.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp config: %w", err)
	}
	return f.Name(), nil
}
