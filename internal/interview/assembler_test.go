package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ljmonteiro/interviewcast/internal/audio"
	"github.com/ljmonteiro/interviewcast/internal/models"
	"github.com/ljmonteiro/interviewcast/internal/tts"
)

type fakeSource struct {
	lines map[models.Language][]models.DialogueLine
	err   error
}

func (f *fakeSource) Generate(ctx context.Context, lang models.Language, topic string) ([]models.DialogueLine, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lines[lang], nil
}

type fakeSynth struct {
	rates []int // rate per call, last repeats
	calls int
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, voice tts.VoiceProfile) (audio.Segment, error) {
	idx := f.calls
	if idx >= len(f.rates) {
		idx = len(f.rates) - 1
	}
	rate := f.rates[idx]
	f.calls++
	return audio.Segment{Samples: make([]int16, rate/10), SampleRate: rate}, nil
}

type fakeVoices struct{}

func (fakeVoices) InterviewPair(lang models.Language) (tts.VoiceProfile, tts.VoiceProfile, error) {
	return tts.VoiceProfile{Name: "sarah", Speaker: models.SpeakerSarah},
		tts.VoiceProfile{Name: "leo", Speaker: models.SpeakerLeo}, nil
}

func (fakeVoices) EnsureAvailable(profiles ...tts.VoiceProfile) error { return nil }

type fakeConversations struct {
	saved map[string]string
	err   error
}

func (f *fakeConversations) Save(ctx context.Context, collection, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[collection] = text
	return "11111111-1111-1111-1111-111111111111", nil
}

func twoLines() map[models.Language][]models.DialogueLine {
	return map[models.Language][]models.DialogueLine{
		models.LanguageEnglish: {
			{Speaker: models.SpeakerSarah, Text: "Hello."},
			{Speaker: models.SpeakerLeo, Text: "Hi."},
		},
		models.LanguageSpanish: {
			{Speaker: models.SpeakerSarah, Text: "Hola."},
			{Speaker: models.SpeakerLeo, Text: "Buenas."},
		},
	}
}

func newTestAssembler(dir string, synth LineSynthesizer, conv ConversationStore) *Assembler {
	return NewAssembler(synth, fakeVoices{}, conv, dir, 500*time.Millisecond)
}

func TestGenerateWritesTrackAndTranscript(t *testing.T) {
	dir := t.TempDir()
	conv := &fakeConversations{}
	a := newTestAssembler(dir, &fakeSynth{rates: []int{22050}}, conv)

	var buf bytes.Buffer
	res, err := a.Generate(context.Background(), &fakeSource{lines: twoLines()}, models.LanguageEnglish, "", &buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if res.AudioPath != filepath.Join(dir, "interview_english.flac") {
		t.Errorf("unexpected audio path %s", res.AudioPath)
	}
	if res.SampleRate != 22050 {
		t.Errorf("sample rate = %d", res.SampleRate)
	}
	if res.RateMismatch {
		t.Error("no mismatch expected")
	}
	if err := audio.CheckTrack(res.AudioPath); err != nil {
		t.Errorf("track failed integrity check: %v", err)
	}

	data, err := os.ReadFile(res.TranscriptPath)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	var tr models.Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatalf("transcript is not valid JSON: %v", err)
	}
	if len(tr.Lines) != 2 || tr.Lines[0].Speaker != models.SpeakerSarah {
		t.Errorf("unexpected transcript: %+v", tr)
	}

	if res.ConversationID == "" {
		t.Error("expected a conversation id")
	}
	if _, ok := conv.saved[CollectionConversations]; !ok {
		t.Error("conversation not archived")
	}
}

func TestGenerateCanonicalRate(t *testing.T) {
	dir := t.TempDir()
	// First line comes back at 16000, second at 22050; the first wins.
	a := newTestAssembler(dir, &fakeSynth{rates: []int{16000, 22050}}, nil)

	var buf bytes.Buffer
	res, err := a.Generate(context.Background(), &fakeSource{lines: twoLines()}, models.LanguageEnglish, "", &buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.SampleRate != 16000 {
		t.Errorf("canonical rate = %d, want 16000 (first segment)", res.SampleRate)
	}
	if !res.RateMismatch {
		t.Error("mismatch flag should be set")
	}
}

func TestGenerateEmptyDialogueWritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := newTestAssembler(dir, &fakeSynth{rates: []int{22050}}, nil)

	var buf bytes.Buffer
	_, err := a.Generate(context.Background(), &fakeSource{lines: nil}, models.LanguageEnglish, "", &buf)
	if !errors.Is(err, models.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("expected no output files, found %d", len(entries))
	}
}

func TestVersionedNaming(t *testing.T) {
	dir := t.TempDir()
	a := newTestAssembler(dir, &fakeSynth{rates: []int{22050}}, nil)
	src := &fakeSource{lines: twoLines()}

	want := []string{"interview_english.flac", "interview_english_v2.flac", "interview_english_v3.flac"}
	for _, name := range want {
		var buf bytes.Buffer
		res, err := a.Generate(context.Background(), src, models.LanguageEnglish, "", &buf)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if got := filepath.Base(res.AudioPath); got != name {
			t.Fatalf("got %s, want %s", got, name)
		}
		base := name[:len(name)-len(".flac")]
		if got := filepath.Base(res.TranscriptPath); got != base+".json" {
			t.Errorf("transcript %s does not share base %s", got, base)
		}
	}
}

func TestVersionedNamingSkipsToFirstFree(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"interview_spanish.flac", "interview_spanish_v2.flac"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	a := newTestAssembler(dir, &fakeSynth{rates: []int{22050}}, nil)
	var buf bytes.Buffer
	res, err := a.Generate(context.Background(), &fakeSource{lines: twoLines()}, models.LanguageSpanish, "", &buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := filepath.Base(res.AudioPath); got != "interview_spanish_v3.flac" {
		t.Errorf("got %s, want interview_spanish_v3.flac", got)
	}
}

func TestSilencePadding(t *testing.T) {
	dir := t.TempDir()
	const rate = 16000
	a := newTestAssembler(dir, &fakeSynth{rates: []int{rate}}, nil)

	var buf bytes.Buffer
	res, err := a.Generate(context.Background(), &fakeSource{lines: twoLines()}, models.LanguageEnglish, "", &buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Two 0.1 s segments plus a 0.5 s pause after each: 1.2 s total,
	// so 19200 verbatim samples at 16 kHz. Verbatim FLAC frames store
	// 2 bytes per sample plus headers, which bounds the file size.
	fi, err := os.Stat(res.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	wantSamples := int64(2*(rate/10) + 2*(rate/2))
	if fi.Size() < wantSamples*2 {
		t.Errorf("track too small for %d samples: %d bytes", wantSamples, fi.Size())
	}
}

func TestRunContinuesAcrossLanguages(t *testing.T) {
	dir := t.TempDir()
	a := newTestAssembler(dir, &fakeSynth{rates: []int{22050}}, nil)

	// Spanish has no lines, English succeeds.
	lines := twoLines()
	lines[models.LanguageSpanish] = nil
	src := &fakeSource{lines: lines}

	var buf bytes.Buffer
	results, err := a.Run(context.Background(),
		src, []models.Language{models.LanguageEnglish, models.LanguageSpanish}, "", &buf)

	if err == nil {
		t.Fatal("expected an error from the failed language")
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 successful result, got %d", len(results))
	}
	if results[0].Language != models.LanguageEnglish {
		t.Errorf("unexpected surviving language %s", results[0].Language)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "interview_english.flac")); statErr != nil {
		t.Errorf("english track missing: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "interview_spanish.flac")); !os.IsNotExist(statErr) {
		t.Error("spanish track should not exist")
	}
}

func TestGenerateArchiveFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	conv := &fakeConversations{err: fmt.Errorf("postgres down")}
	a := newTestAssembler(dir, &fakeSynth{rates: []int{22050}}, conv)

	var buf bytes.Buffer
	res, err := a.Generate(context.Background(), &fakeSource{lines: twoLines()}, models.LanguageEnglish, "", &buf)
	if err != nil {
		t.Fatalf("archive failure must not fail the run: %v", err)
	}
	if res.ConversationID != "" {
		t.Error("no conversation id expected")
	}
}
