package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ljmonteiro/interviewcast/internal/models"
)

func TestParseRunRequestDefaults(t *testing.T) {
	p, err := parseRunRequest(models.RunTTSRequest{Model: "fast"})
	if err != nil {
		t.Fatalf("parseRunRequest: %v", err)
	}
	if p.tier != models.TierFast {
		t.Errorf("tier = %v", p.tier)
	}
	if p.specialist != models.SpecialistNone {
		t.Errorf("specialist = %v", p.specialist)
	}
	if len(p.langs) != 2 || p.langs[0] != models.LanguageEnglish || p.langs[1] != models.LanguageSpanish {
		t.Errorf("default langs = %v", p.langs)
	}
}

func TestParseRunRequestRejectsBadInput(t *testing.T) {
	cases := []models.RunTTSRequest{
		{Model: "gpt-5"},
		{Model: "fast", Specialist: "pirate"},
		{Model: "fast", Langs: []string{"de"}},
	}
	for _, req := range cases {
		if _, err := parseRunRequest(req); err == nil {
			t.Errorf("expected error for %+v", req)
		}
	}
}

func TestLatestTTSNotFound(t *testing.T) {
	h := &Handler{outputDir: t.TempDir()}

	rr := httptest.NewRecorder()
	h.LatestTTS(rr, httptest.NewRequest(http.MethodGet, "/api/v1/latest-tts?lang=en", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestLatestTTSBadLang(t *testing.T) {
	h := &Handler{outputDir: t.TempDir()}

	rr := httptest.NewRecorder()
	h.LatestTTS(rr, httptest.NewRequest(http.MethodGet, "/api/v1/latest-tts?lang=fr", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLatestTTSPicksNewestVersion(t *testing.T) {
	dir := t.TempDir()
	h := &Handler{outputDir: dir}

	write := func(name string, mtime time.Time) {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Now()
	write("interview_english.flac", now.Add(-2*time.Hour))
	write("interview_english_v2.flac", now)
	write("interview_spanish.flac", now.Add(time.Hour))

	transcript := models.Transcript{Lines: []models.DialogueLine{
		{Speaker: models.SpeakerSarah, Text: "Hi."},
	}}
	data, _ := json.Marshal(transcript)
	if err := os.WriteFile(filepath.Join(dir, "interview_english_v2.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.LatestTTS(rr, httptest.NewRequest(http.MethodGet, "/api/v1/latest-tts?lang=en", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.LatestTTSResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.AudioURL != "/outputs/interview_english_v2.flac" {
		t.Errorf("audio_url = %s", resp.AudioURL)
	}
	if len(resp.Transcript.Lines) != 1 || resp.Transcript.Lines[0].Text != "Hi." {
		t.Errorf("transcript not attached: %+v", resp.Transcript)
	}
}

func TestQueryQdrantWithoutStore(t *testing.T) {
	h := &Handler{}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query-qdrant", nil)
	h.QueryQdrant(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestRunsWithoutHistory(t *testing.T) {
	h := &Handler{}

	rr := httptest.NewRecorder()
	h.Runs(rr, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var records []models.RunRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history, got %d records", len(records))
	}
}

func TestAPIKeyAuth(t *testing.T) {
	mw := APIKeyAuth("secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong", func(r *http.Request) { r.Header.Set("X-API-Key", "nope") }, http.StatusForbidden},
		{"header", func(r *http.Request) { r.Header.Set("X-API-Key", "secret") }, http.StatusOK},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret") }, http.StatusOK},
	}

	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
		c.setup(req)
		rr := httptest.NewRecorder()
		mw(next).ServeHTTP(rr, req)
		if rr.Code != c.status {
			t.Errorf("%s: expected %d, got %d", c.name, c.status, rr.Code)
		}
	}
}
