package dialogue

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/ljmonteiro/interviewcast/internal/models"
)

const (
	draftMaxTokens   = 1000
	draftTemperature = 0.7

	correctionTemperature = 0.3
	topicsTemperature     = 0.4

	maxSuggestedTopics = 5

	// CollectionGenerated holds the raw draft when a specialist pass runs,
	// CollectionCorrected the rewritten dialogue.
	CollectionGenerated = "generated"
	CollectionCorrected = "corrected"
)

// Completer produces a chat completion from a system and user prompt.
// Implemented by services.ChatClient.
type Completer interface {
	Complete(ctx context.Context, tier models.ModelTier, system, user string, maxTokens int, temperature float32) (string, error)
}

// AuditStore persists a text snapshot into a named collection and returns
// the point ID. Implemented by audit.Recorder.
type AuditStore interface {
	Save(ctx context.Context, collection, text string) (string, error)
}

// Config selects the backend tier and the optional rewrite pass for one
// generator instance.
type Config struct {
	Tier       models.ModelTier
	Specialist models.Specialist
}

// Generator drives dialogue drafting, the optional specialist rewrite with
// audit snapshots, and topic suggestion.
type Generator struct {
	llm   Completer
	audit AuditStore // nil when no vector store is configured
	cfg   Config
}

func NewGenerator(llm Completer, audit AuditStore, cfg Config) *Generator {
	return &Generator{llm: llm, audit: audit, cfg: cfg}
}

// correctedArtifact matches the "Corrected dialogue:" preamble some models
// prepend to the rewrite despite being told not to.
var correctedArtifact = regexp.MustCompile(`(?i)^\s*corrected dialogue:\s*\n?`)

// Generate produces the normalized interview script for one language. An
// empty result is returned as an empty slice without error; the caller
// decides whether that is terminal. When a specialist is configured, the
// draft and the rewrite are both persisted to the audit store.
func (g *Generator) Generate(ctx context.Context, lang models.Language, selectedTopic string) ([]models.DialogueLine, error) {
	if g.cfg.Specialist != models.SpecialistNone && g.audit == nil {
		return nil, fmt.Errorf("specialist %q requires an audit store (set DATABASE_URL): %w",
			g.cfg.Specialist, models.ErrConfiguration)
	}

	draft, err := g.llm.Complete(ctx, g.cfg.Tier, draftSystemPrompt(lang), draftUserPrompt(selectedTopic),
		draftMaxTokens, draftTemperature)
	if err != nil {
		return nil, fmt.Errorf("draft completion: %w: %v", models.ErrGeneration, err)
	}
	log.Printf("[Dialogue] draft for %s: %d chars", lang.TrackName(), len(draft))

	text := strings.TrimSpace(draft)
	if g.cfg.Specialist != models.SpecialistNone {
		if _, err := g.audit.Save(ctx, CollectionGenerated, text); err != nil {
			return nil, fmt.Errorf("persist draft: %w: %v", models.ErrPersistence, err)
		}

		corrected, err := g.llm.Complete(ctx, g.cfg.Tier, correctionSystemPrompt(g.cfg.Specialist, lang), text,
			draftMaxTokens, correctionTemperature)
		if err != nil {
			return nil, fmt.Errorf("%s rewrite: %w: %v", g.cfg.Specialist, models.ErrGeneration, err)
		}
		corrected = correctedArtifact.ReplaceAllString(strings.TrimSpace(corrected), "")

		if _, err := g.audit.Save(ctx, CollectionCorrected, corrected); err != nil {
			return nil, fmt.Errorf("persist corrected: %w: %v", models.ErrPersistence, err)
		}
		log.Printf("[Dialogue] %s rewrite for %s: %d chars", g.cfg.Specialist, lang.TrackName(), len(corrected))
		text = corrected
	}

	lines := Normalize(text)
	log.Printf("[Dialogue] normalized %d lines for %s", len(lines), lang.TrackName())
	return lines, nil
}

// enumerationMarker strips "1.", "2)", "-" style prefixes from topic lines.
var enumerationMarker = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|-\s*)`)

// SuggestTopics asks the backend for up to five short interview topics about
// a subject. The target language only steers the eventual dialogue; topics
// themselves come back in the language the model chooses for the subject.
func (g *Generator) SuggestTopics(ctx context.Context, lang models.Language, subject string) ([]string, error) {
	raw, err := g.llm.Complete(ctx, g.cfg.Tier, topicsSystemPrompt(lang), topicsUserPrompt(subject),
		draftMaxTokens, topicsTemperature)
	if err != nil {
		return nil, fmt.Errorf("suggest topics: %w: %v", models.ErrGeneration, err)
	}

	var topics []string
	for _, l := range strings.Split(raw, "\n") {
		l = enumerationMarker.ReplaceAllString(strings.TrimSpace(l), "")
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		topics = append(topics, l)
		if len(topics) == maxSuggestedTopics {
			break
		}
	}
	log.Printf("[Dialogue] suggested %d topics for subject %q", len(topics), subject)
	return topics, nil
}

func draftSystemPrompt(lang models.Language) string {
	base := "You are a technical recruiter named Sarah interviewing a software engineering candidate named Leo. " +
		"Write a realistic spoken interview as alternating lines, each prefixed with 'Sarah:' or 'Leo:'. " +
		"Sarah always speaks first. Produce at least 12 lines. Do not add narration, headings or stage directions."
	if lang == models.LanguageSpanish {
		return base + " Write the whole dialogue in Spanish, keeping the names Sarah and Leo."
	}
	return base
}

func draftUserPrompt(selectedTopic string) string {
	if selectedTopic != "" {
		return fmt.Sprintf("Generate the interview dialogue focused on: %s", selectedTopic)
	}
	return "Generate the interview dialogue covering REST APIs, SQL, Docker and debugging."
}

func correctionSystemPrompt(s models.Specialist, lang models.Language) string {
	var style string
	switch s {
	case models.SpecialistGrammar:
		style = "Fix grammar, punctuation and word choice so every line reads as polished, formal speech."
	case models.SpecialistDaily:
		style = "Rewrite every line into relaxed, everyday conversational speech while keeping the meaning."
	}
	out := "You rewrite interview dialogues. " + style +
		" Keep the same number of lines and the same 'Sarah:'/'Leo:' prefixes." +
		" Return only the rewritten dialogue, with no preamble."
	if lang == models.LanguageSpanish {
		out += " The dialogue is in Spanish; answer in Spanish."
	}
	return out
}

func topicsSystemPrompt(lang models.Language) string {
	return fmt.Sprintf("You help prepare mock interviews held in %s. "+
		"Reply with exactly %d short topic titles, one per line, no numbering and no commentary.",
		lang.TrackName(), maxSuggestedTopics)
}

func topicsUserPrompt(subject string) string {
	return fmt.Sprintf("Suggest interview topics about: %s", subject)
}
