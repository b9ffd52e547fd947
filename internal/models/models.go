package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Enums

// Language identifies a synthesis target. The wire value is the short code
// ("en", "es"); TrackName gives the long form used in output file names.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// ParseLanguage accepts both the short code and the long name.
func ParseLanguage(s string) (Language, error) {
	switch s {
	case "en", "english":
		return LanguageEnglish, nil
	case "es", "spanish":
		return LanguageSpanish, nil
	}
	return "", errors.New("unknown language: " + s)
}

// TrackName returns the long-form name used in output file names,
// e.g. "english" for interview_english.flac.
func (l Language) TrackName() string {
	switch l {
	case LanguageEnglish:
		return "english"
	case LanguageSpanish:
		return "spanish"
	}
	return string(l)
}

type Speaker string

const (
	SpeakerSarah Speaker = "Sarah" // interviewer, even lines
	SpeakerLeo   Speaker = "Leo"   // candidate, odd lines
)

// SpeakerForIndex returns the speaker that owns line i under strict
// alternation: Sarah opens and holds every even index.
func SpeakerForIndex(i int) Speaker {
	if i%2 == 0 {
		return SpeakerSarah
	}
	return SpeakerLeo
}

// ModelTier selects which configured backend model serves a request.
type ModelTier string

const (
	TierFast      ModelTier = "fast"
	TierReasoning ModelTier = "reasoning"
)

func ParseModelTier(s string) (ModelTier, error) {
	switch ModelTier(s) {
	case TierFast, TierReasoning:
		return ModelTier(s), nil
	}
	return "", errors.New("unknown model tier: " + s + " (allowed: fast, reasoning)")
}

// Specialist selects the optional rewrite pass applied to the draft dialogue.
type Specialist string

const (
	SpecialistNone    Specialist = ""
	SpecialistGrammar Specialist = "grammar"
	SpecialistDaily   Specialist = "daily"
)

func ParseSpecialist(s string) (Specialist, error) {
	switch Specialist(s) {
	case SpecialistNone, SpecialistGrammar, SpecialistDaily:
		return Specialist(s), nil
	}
	return "", errors.New("unknown specialist: " + s + " (allowed: grammar, daily)")
}

// Core types

// DialogueLine is a single normalized interview line.
type DialogueLine struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Transcript is the JSON sidecar written next to every audio track.
type Transcript struct {
	Lines []DialogueLine `json:"lines"`
}

// RunRecord is one pipeline execution as stored in the run history.
type RunRecord struct {
	ID         uuid.UUID `json:"id"`
	Status     string    `json:"status"` // "success" or "failed"
	Model      ModelTier `json:"model"`
	Specialist string    `json:"specialist,omitempty"`
	Languages  []string  `json:"languages"`
	Topic      string    `json:"topic,omitempty"`
	Output     string    `json:"output"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Error kinds. Pipeline errors wrap one of these so callers can classify
// failures with errors.Is without string matching.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrGeneration    = errors.New("generation error")
	ErrSynthesis     = errors.New("synthesis error")
	ErrPersistence   = errors.New("persistence error")
	ErrNotFound      = errors.New("not found")
)

// DTOs for API requests/responses

type RunTTSRequest struct {
	Model         string   `json:"model"`
	Specialist    string   `json:"specialist,omitempty"`
	Langs         []string `json:"langs,omitempty"` // default: en, es
	SelectedTopic string   `json:"selected_topic,omitempty"`
	TopicSubject  string   `json:"topic_subject,omitempty"` // accepted but unused; runs key off selected_topic
}

type RunTTSResponse struct {
	Status string `json:"status"`
	Output string `json:"output"`
}

type SuggestTopicsRequest struct {
	Model      string `json:"model"`
	Specialist string `json:"specialist,omitempty"` // accepted for symmetry with run-tts; suggestions ignore it
	Lang       string `json:"lang"`
	Subject    string `json:"subject"`
}

type SuggestTopicsResponse struct {
	Topics []string `json:"topics"`
}

type QueryRequest struct {
	QueryText string `json:"query_text"`
}

type QueryResponse struct {
	Status string `json:"status"`
	Data   string `json:"data"`
}

type GetConversationRequest struct {
	ConversationUUID string `json:"conversation_uuid"`
}

type GetConversationResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
}

type LatestTTSResponse struct {
	AudioURL   string     `json:"audio_url"`
	Transcript Transcript `json:"transcript"`
}
