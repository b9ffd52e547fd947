package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ljmonteiro/interviewcast/internal/audit"
	"github.com/ljmonteiro/interviewcast/internal/dialogue"
	"github.com/ljmonteiro/interviewcast/internal/history"
	"github.com/ljmonteiro/interviewcast/internal/interview"
	"github.com/ljmonteiro/interviewcast/internal/models"
	"github.com/ljmonteiro/interviewcast/internal/vectorstore"
)

type Handler struct {
	llm       dialogue.Completer
	recorder  dialogue.AuditStore // nil when no vector store is configured
	assembler *interview.Assembler
	comparer  *audit.Comparer    // nil when no vector store is configured
	store     *vectorstore.Store // nil when no vector store is configured
	history   *history.Store     // nil when no redis is configured
	outputDir string
}

func NewHandler(llm dialogue.Completer, recorder dialogue.AuditStore, assembler *interview.Assembler,
	comparer *audit.Comparer, store *vectorstore.Store, hist *history.Store, outputDir string) *Handler {
	return &Handler{
		llm:       llm,
		recorder:  recorder,
		assembler: assembler,
		comparer:  comparer,
		store:     store,
		history:   hist,
		outputDir: outputDir,
	}
}

// runParams is a RunTTSRequest after validation.
type runParams struct {
	tier       models.ModelTier
	specialist models.Specialist
	langs      []models.Language
	topic      string
}

func parseRunRequest(req models.RunTTSRequest) (runParams, error) {
	var p runParams
	var err error

	if p.tier, err = models.ParseModelTier(req.Model); err != nil {
		return p, err
	}
	if p.specialist, err = models.ParseSpecialist(req.Specialist); err != nil {
		return p, err
	}

	if len(req.Langs) == 0 {
		p.langs = []models.Language{models.LanguageEnglish, models.LanguageSpanish}
	} else {
		for _, l := range req.Langs {
			lang, err := models.ParseLanguage(l)
			if err != nil {
				return p, err
			}
			p.langs = append(p.langs, lang)
		}
	}

	p.topic = strings.TrimSpace(req.SelectedTopic)
	return p, nil
}

// RunTTS handles POST /api/v1/run-tts
func (h *Handler) RunTTS(w http.ResponseWriter, r *http.Request) {
	var req models.RunTTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params, err := parseRunRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gen := dialogue.NewGenerator(h.llm, h.recorder, dialogue.Config{
		Tier:       params.tier,
		Specialist: params.specialist,
	})

	started := time.Now()
	var buf bytes.Buffer
	_, runErr := h.assembler.Run(r.Context(), gen, params.langs, params.topic, &buf)

	h.recordRun(r, params, buf.String(), started, runErr)

	if runErr != nil {
		respondError(w, http.StatusInternalServerError, runErr.Error())
		return
	}
	respondJSON(w, http.StatusOK, models.RunTTSResponse{
		Status: "success",
		Output: buf.String(),
	})
}

func (h *Handler) recordRun(r *http.Request, params runParams, output string, started time.Time, runErr error) {
	if h.history == nil {
		return
	}

	rec := models.RunRecord{
		ID:         uuid.New(),
		Status:     "success",
		Model:      params.tier,
		Specialist: string(params.specialist),
		Topic:      params.topic,
		Output:     output,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	for _, l := range params.langs {
		rec.Languages = append(rec.Languages, string(l))
	}
	if runErr != nil {
		rec.Status = "failed"
		rec.Error = runErr.Error()
	}

	// History is diagnostics; a dead redis must not fail the response.
	_ = h.history.Record(r.Context(), rec)
}

// SuggestTopics handles POST /api/v1/suggest-topics
func (h *Handler) SuggestTopics(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestTopicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tier, err := models.ParseModelTier(req.Model)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := models.ParseSpecialist(req.Specialist); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang, err := models.ParseLanguage(req.Lang)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		respondError(w, http.StatusBadRequest, "Subject is required")
		return
	}

	gen := dialogue.NewGenerator(h.llm, h.recorder, dialogue.Config{Tier: tier})
	topics, err := gen.SuggestTopics(r.Context(), lang, req.Subject)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.SuggestTopicsResponse{Topics: topics})
}

// QueryQdrant handles POST /api/v1/query-qdrant
func (h *Handler) QueryQdrant(w http.ResponseWriter, r *http.Request) {
	if h.comparer == nil {
		respondError(w, http.StatusServiceUnavailable, "Audit store is not configured (set DATABASE_URL)")
		return
	}

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.QueryText) == "" {
		respondError(w, http.StatusBadRequest, "query_text is required")
		return
	}

	report, err := h.comparer.QueryAndCompare(r.Context(), req.QueryText)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.QueryResponse{Status: "success", Data: report})
}

// GetConversation handles POST /api/v1/get-conversation
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Audit store is not configured (set DATABASE_URL)")
		return
	}

	var req models.GetConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := uuid.Parse(req.ConversationUUID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid conversation UUID")
		return
	}

	point, err := h.store.Retrieve(r.Context(), interview.CollectionConversations, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	respondJSON(w, http.StatusOK, models.GetConversationResponse{Status: "success", Text: point.Text})
}

// LatestTTS handles GET /api/v1/latest-tts?lang=en|es
func (h *Handler) LatestTTS(w http.ResponseWriter, r *http.Request) {
	lang, err := models.ParseLanguage(r.URL.Query().Get("lang"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, ok := h.latestTrack(lang)
	if !ok {
		respondError(w, http.StatusNotFound, "No track found for "+lang.TrackName())
		return
	}

	resp := models.LatestTTSResponse{AudioURL: "/outputs/" + name}

	base := strings.TrimSuffix(name, ".flac")
	if data, err := os.ReadFile(filepath.Join(h.outputDir, base+".json")); err == nil {
		_ = json.Unmarshal(data, &resp.Transcript)
	}

	respondJSON(w, http.StatusOK, resp)
}

// latestTrack returns the newest track file name for a language, by
// modification time across all versions.
func (h *Handler) latestTrack(lang models.Language) (string, bool) {
	entries, err := os.ReadDir(h.outputDir)
	if err != nil {
		return "", false
	}

	prefix := "interview_" + lang.TrackName()
	var (
		best     string
		bestTime time.Time
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".flac") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = name
			bestTime = info.ModTime()
		}
	}
	return best, best != ""
}

// Runs handles GET /api/v1/runs
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondJSON(w, http.StatusOK, []models.RunRecord{})
		return
	}

	records, err := h.history.Recent(r.Context(), 20)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read run history")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}
