package models

import (
	"encoding/json"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"en", LanguageEnglish, false},
		{"english", LanguageEnglish, false},
		{"es", LanguageSpanish, false},
		{"spanish", LanguageSpanish, false},
		{"fr", "", true},
		{"", "", true},
	}

	for _, c := range cases {
		got, err := ParseLanguage(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseLanguage(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLanguage(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseLanguage(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTrackName(t *testing.T) {
	if got := LanguageEnglish.TrackName(); got != "english" {
		t.Errorf("expected english, got %s", got)
	}
	if got := LanguageSpanish.TrackName(); got != "spanish" {
		t.Errorf("expected spanish, got %s", got)
	}
}

func TestSpeakerForIndex(t *testing.T) {
	for i := 0; i < 10; i++ {
		want := SpeakerSarah
		if i%2 == 1 {
			want = SpeakerLeo
		}
		if got := SpeakerForIndex(i); got != want {
			t.Errorf("SpeakerForIndex(%d) = %s, want %s", i, got, want)
		}
	}
}

func TestParseModelTier(t *testing.T) {
	if _, err := ParseModelTier("fast"); err != nil {
		t.Errorf("fast should be valid: %v", err)
	}
	if _, err := ParseModelTier("reasoning"); err != nil {
		t.Errorf("reasoning should be valid: %v", err)
	}
	if _, err := ParseModelTier("gpt-4"); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestParseSpecialist(t *testing.T) {
	if s, err := ParseSpecialist(""); err != nil || s != SpecialistNone {
		t.Errorf("empty specialist should be valid, got %v / %v", s, err)
	}
	if _, err := ParseSpecialist("grammar"); err != nil {
		t.Errorf("grammar should be valid: %v", err)
	}
	if _, err := ParseSpecialist("daily"); err != nil {
		t.Errorf("daily should be valid: %v", err)
	}
	if _, err := ParseSpecialist("pirate"); err == nil {
		t.Error("expected error for unknown specialist")
	}
}

func TestRunTTSRequestJSON(t *testing.T) {
	body := `{"model":"fast","specialist":"grammar","langs":["en"],"selected_topic":"ordering coffee","topic_subject":"daily life"}`

	var req RunTTSRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}

	if req.Model != "fast" || req.Specialist != "grammar" {
		t.Errorf("unexpected model/specialist: %s / %s", req.Model, req.Specialist)
	}
	if req.SelectedTopic != "ordering coffee" {
		t.Errorf("unexpected topic: %s", req.SelectedTopic)
	}
	if req.TopicSubject != "daily life" {
		t.Errorf("topic_subject not decoded, got %q", req.TopicSubject)
	}
}

func TestTranscriptJSON(t *testing.T) {
	tr := Transcript{Lines: []DialogueLine{
		{Speaker: SpeakerSarah, Text: "Tell me about REST APIs."},
		{Speaker: SpeakerLeo, Text: "Sure, they expose resources over HTTP."},
	}}

	data, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}

	var back Transcript
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal transcript: %v", err)
	}

	if len(back.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(back.Lines))
	}
	if back.Lines[0].Speaker != SpeakerSarah {
		t.Errorf("expected Sarah on line 0, got %s", back.Lines[0].Speaker)
	}
}
