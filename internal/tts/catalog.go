// Package tts maps interview speakers to piper voice models and drives the
// piper binary to synthesize single lines of dialogue.
package tts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ljmonteiro/interviewcast/internal/models"
)

// VoiceProfile points at one piper voice: the onnx model plus its parquet
// config sidecar.
type VoiceProfile struct {
	Name       string // e.g. "en_US-lessac-medium"
	ModelPath  string
	ConfigPath string
	Speaker    models.Speaker
}

// Catalog resolves voices under a models directory. The interview pair per
// language is fixed; the wider catalog backs voice listing.
type Catalog struct {
	modelsDir string
}

func NewCatalog(modelsDir string) *Catalog {
	return &Catalog{modelsDir: modelsDir}
}

// interviewVoices maps each language to its (Sarah, Leo) voice names.
var interviewVoices = map[models.Language][2]string{
	models.LanguageEnglish: {"en_US-lessac-medium", "en_US-ryan-medium"},
	models.LanguageSpanish: {"es_AR-daniela-high", "es_ES-davefx-medium"},
}

// catalogVoices lists every known voice per language, interview pair first.
var catalogVoices = map[models.Language][]string{
	models.LanguageEnglish: {"en_US-lessac-medium", "en_US-ryan-medium"},
	models.LanguageSpanish: {"es_AR-daniela-high", "es_ES-davefx-medium", "pt_BR-faber-medium"},
}

func (c *Catalog) profile(name string, speaker models.Speaker) VoiceProfile {
	model := filepath.Join(c.modelsDir, name+".onnx")
	return VoiceProfile{
		Name:       name,
		ModelPath:  model,
		ConfigPath: model + ".parquet",
		Speaker:    speaker,
	}
}

// InterviewPair returns the Sarah and Leo voices for a language.
func (c *Catalog) InterviewPair(lang models.Language) (sarah, leo VoiceProfile, err error) {
	pair, ok := interviewVoices[lang]
	if !ok {
		return VoiceProfile{}, VoiceProfile{}, fmt.Errorf("no interview voices for language %q: %w", lang, models.ErrConfiguration)
	}
	return c.profile(pair[0], models.SpeakerSarah), c.profile(pair[1], models.SpeakerLeo), nil
}

// Voices lists the catalog for a language (used by the CLI).
func (c *Catalog) Voices(lang models.Language) []VoiceProfile {
	names := catalogVoices[lang]
	out := make([]VoiceProfile, 0, len(names))
	for _, n := range names {
		out = append(out, c.profile(n, ""))
	}
	return out
}

// EnsureAvailable verifies the model and config files exist on disk for
// every given profile, so a run fails before any synthesis starts.
func (c *Catalog) EnsureAvailable(profiles ...VoiceProfile) error {
	for _, p := range profiles {
		for _, path := range []string{p.ModelPath, p.ConfigPath} {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("voice %s unavailable (%s): %w", p.Name, path, models.ErrConfiguration)
			}
		}
	}
	return nil
}
