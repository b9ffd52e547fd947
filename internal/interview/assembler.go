// Package interview assembles finished audio tracks: it takes a dialogue
// source, synthesizes every line with the speaker's voice, reconciles
// sample rates, pads with silence and writes a versioned FLAC plus a JSON
// transcript per language.
package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ljmonteiro/interviewcast/internal/audio"
	"github.com/ljmonteiro/interviewcast/internal/dialogue"
	"github.com/ljmonteiro/interviewcast/internal/models"
	"github.com/ljmonteiro/interviewcast/internal/tts"
)

// CollectionConversations stores the final transcript of every successful
// run, keyed by a fresh UUID, for later retrieval.
const CollectionConversations = "conversations"

// DialogueSource produces the normalized script for one language.
// Implemented by dialogue.Generator.
type DialogueSource interface {
	Generate(ctx context.Context, lang models.Language, selectedTopic string) ([]models.DialogueLine, error)
}

// LineSynthesizer renders one line of text with a voice.
// Implemented by tts.PiperSynthesizer.
type LineSynthesizer interface {
	Synthesize(ctx context.Context, text string, voice tts.VoiceProfile) (audio.Segment, error)
}

// VoiceSource resolves and validates the voices for a language.
// Implemented by tts.Catalog.
type VoiceSource interface {
	InterviewPair(lang models.Language) (sarah, leo tts.VoiceProfile, err error)
	EnsureAvailable(profiles ...tts.VoiceProfile) error
}

// ConversationStore archives the final transcript text.
// Implemented by audit.Recorder; nil disables archiving.
type ConversationStore interface {
	Save(ctx context.Context, collection, text string) (string, error)
}

// Result describes one finished language track.
type Result struct {
	Language       models.Language
	AudioPath      string
	TranscriptPath string
	Lines          []models.DialogueLine
	SampleRate     int
	RateMismatch   bool
	ConversationID string
}

type Assembler struct {
	synth         LineSynthesizer
	voices        VoiceSource
	conversations ConversationStore
	outputDir     string
	silence       time.Duration

	// writeMu serializes the pick-a-free-version-and-write step so two
	// runs for the same language cannot claim the same file name.
	writeMu sync.Mutex
}

func NewAssembler(synth LineSynthesizer, voices VoiceSource, conversations ConversationStore, outputDir string, silence time.Duration) *Assembler {
	return &Assembler{
		synth:         synth,
		voices:        voices,
		conversations: conversations,
		outputDir:     outputDir,
		silence:       silence,
	}
}

// Generate runs the pipeline for a single language. Progress is written to
// logw; on any error no output files remain for this run.
func (a *Assembler) Generate(ctx context.Context, source DialogueSource, lang models.Language, selectedTopic string, logw io.Writer) (*Result, error) {
	fmt.Fprintf(logw, "[%s] generating dialogue\n", lang.TrackName())

	lines, err := source.Generate(ctx, lang, selectedTopic)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no dialogue generated for %s: %w", lang.TrackName(), models.ErrGeneration)
	}
	fmt.Fprintf(logw, "[%s] %d lines\n", lang.TrackName(), len(lines))

	sarah, leo, err := a.voices.InterviewPair(lang)
	if err != nil {
		return nil, err
	}
	if err := a.voices.EnsureAvailable(sarah, leo); err != nil {
		return nil, err
	}

	// Canonical rate is whatever the first segment comes back at; later
	// segments at other rates get resampled to it.
	var (
		segments []audio.Segment
		rate     int
		mismatch bool
	)
	for i, line := range lines {
		voice := sarah
		if line.Speaker == models.SpeakerLeo {
			voice = leo
		}

		seg, err := a.synth.Synthesize(ctx, line.Text, voice)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, line.Speaker, err)
		}

		if rate == 0 {
			rate = seg.SampleRate
		} else if seg.SampleRate != rate {
			mismatch = true
			fmt.Fprintf(logw, "[%s] line %d at %d Hz, resampling to %d Hz\n",
				lang.TrackName(), i, seg.SampleRate, rate)
			seg = seg.ResampleTo(rate)
		}
		segments = append(segments, seg)
	}

	// Every line is followed by the same pause, including the last one.
	pause := audio.Silence(a.silence, rate)
	parts := make([]audio.Segment, 0, 2*len(segments))
	for _, seg := range segments {
		parts = append(parts, seg, pause)
	}
	track := audio.Concat(rate, parts...)
	fmt.Fprintf(logw, "[%s] track: %v at %d Hz\n", lang.TrackName(), track.Duration().Round(time.Millisecond), rate)

	audioPath, transcriptPath, err := a.persist(lang, track, lines)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(logw, "[%s] wrote %s\n", lang.TrackName(), audioPath)

	res := &Result{
		Language:       lang,
		AudioPath:      audioPath,
		TranscriptPath: transcriptPath,
		Lines:          lines,
		SampleRate:     rate,
		RateMismatch:   mismatch,
	}

	if a.conversations != nil {
		id, err := a.conversations.Save(ctx, CollectionConversations, dialogue.Render(lines))
		if err != nil {
			// The track is already on disk; losing the archive copy is
			// worth a warning, not a failed run.
			fmt.Fprintf(logw, "[%s] conversation archive failed: %v\n", lang.TrackName(), err)
		} else {
			res.ConversationID = id
			fmt.Fprintf(logw, "[%s] conversation %s\n", lang.TrackName(), id)
		}
	}

	return res, nil
}

// Run generates every requested language. Languages run in parallel and do
// not cancel each other; the first failure is reported after all finish.
func (a *Assembler) Run(ctx context.Context, source DialogueSource, langs []models.Language, selectedTopic string, logw io.Writer) ([]*Result, error) {
	safe := &syncWriter{w: logw}
	results := make([]*Result, len(langs))

	var g errgroup.Group
	for i, lang := range langs {
		i, lang := i, lang
		g.Go(func() error {
			res, err := a.Generate(ctx, source, lang, selectedTopic, safe)
			if err != nil {
				fmt.Fprintf(safe, "[%s] failed: %v\n", lang.TrackName(), err)
				return err
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	done := results[:0]
	for _, r := range results {
		if r != nil {
			done = append(done, r)
		}
	}
	return done, err
}

// persist writes the track and its transcript sidecar under the first free
// versioned name. On any failure nothing is left behind.
func (a *Assembler) persist(lang models.Language, track audio.Segment, lines []models.DialogueLine) (audioPath, transcriptPath string, err error) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w: %v", models.ErrPersistence, err)
	}
	audioPath, transcriptPath = a.versionedPaths("interview_" + lang.TrackName())

	if err := audio.EncodeFile(audioPath, track); err != nil {
		return "", "", fmt.Errorf("write track: %w: %v", models.ErrPersistence, err)
	}
	if err := audio.CheckTrack(audioPath); err != nil {
		os.Remove(audioPath)
		return "", "", fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	if err := a.writeTranscript(transcriptPath, lines); err != nil {
		os.Remove(audioPath)
		return "", "", fmt.Errorf("write transcript: %w: %v", models.ErrPersistence, err)
	}
	return audioPath, transcriptPath, nil
}

// versionedPaths picks the first free version for a base name: base.flac,
// then base_v2.flac, base_v3.flac and so on. The transcript always shares
// the track's base name.
func (a *Assembler) versionedPaths(base string) (audioPath, transcriptPath string) {
	for v := 1; ; v++ {
		name := base
		if v > 1 {
			name = fmt.Sprintf("%s_v%d", base, v)
		}
		audioPath = filepath.Join(a.outputDir, name+".flac")
		if _, err := os.Stat(audioPath); os.IsNotExist(err) {
			return audioPath, filepath.Join(a.outputDir, name+".json")
		}
	}
}

func (a *Assembler) writeTranscript(path string, lines []models.DialogueLine) error {
	data, err := json.MarshalIndent(models.Transcript{Lines: lines}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// syncWriter serializes writes from the per-language goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
