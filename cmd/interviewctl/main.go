// interviewctl runs the interview pipeline and inspects its stores from
// the command line, sharing configuration with the API server.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ljmonteiro/interviewcast/internal/audit"
	"github.com/ljmonteiro/interviewcast/internal/config"
	"github.com/ljmonteiro/interviewcast/internal/dialogue"
	"github.com/ljmonteiro/interviewcast/internal/interview"
	"github.com/ljmonteiro/interviewcast/internal/models"
	"github.com/ljmonteiro/interviewcast/internal/services"
	"github.com/ljmonteiro/interviewcast/internal/tts"
	"github.com/ljmonteiro/interviewcast/internal/vectorstore"
)

var (
	flagModel      string
	flagSpecialist string
	flagLangs      string
	flagTopic      string
	flagLang       string
	flagSubject    string
	flagCollection string
	flagLimit      int
)

func main() {
	root := &cobra.Command{
		Use:           "interviewctl",
		Short:         "Generate and inspect synthesized interview tracks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write the audio tracks",
		RunE:  runPipeline,
	}
	runCmd.Flags().StringVar(&flagModel, "model", "fast", "model tier (fast|reasoning)")
	runCmd.Flags().StringVar(&flagSpecialist, "specialist", "", "rewrite pass (grammar|daily)")
	runCmd.Flags().StringVar(&flagLangs, "langs", "en,es", "comma-separated languages")
	runCmd.Flags().StringVar(&flagTopic, "topic", "", "focus topic for the interview")

	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest interview topics for a subject",
		RunE:  runSuggest,
	}
	suggestCmd.Flags().StringVar(&flagModel, "model", "fast", "model tier (fast|reasoning)")
	suggestCmd.Flags().StringVar(&flagLang, "lang", "en", "target interview language")
	suggestCmd.Flags().StringVar(&flagSubject, "subject", "", "subject to suggest topics for")
	suggestCmd.MarkFlagRequired("subject")

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "List the configured piper voices",
		RunE:  runVoices,
	}
	voicesCmd.Flags().StringVar(&flagLang, "lang", "en", "language to list voices for")

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the generated/corrected audit collections",
	}

	auditQueryCmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Diff the closest generated and corrected snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  runAuditQuery,
	}

	auditListCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent points in a collection",
		RunE:  runAuditList,
	}
	auditListCmd.Flags().StringVar(&flagCollection, "collection", dialogue.CollectionGenerated, "collection name")
	auditListCmd.Flags().IntVar(&flagLimit, "limit", 10, "max points to list")

	auditCmd.AddCommand(auditQueryCmd, auditListCmd)

	getConvCmd := &cobra.Command{
		Use:   "get-conversation <uuid>",
		Short: "Print a stored conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE:  runGetConversation,
	}

	root.AddCommand(runCmd, suggestCmd, voicesCmd, auditCmd, getConvCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tier, err := models.ParseModelTier(flagModel)
	if err != nil {
		return err
	}
	specialist, err := models.ParseSpecialist(flagSpecialist)
	if err != nil {
		return err
	}

	var langs []models.Language
	for _, l := range strings.Split(flagLangs, ",") {
		lang, err := models.ParseLanguage(strings.TrimSpace(l))
		if err != nil {
			return err
		}
		langs = append(langs, lang)
	}

	llm := services.NewChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMFastModel, cfg.LLMReasoningModel)

	var (
		recorder dialogue.AuditStore
		archive  interview.ConversationStore
	)
	if cfg.DatabaseURL != "" {
		store, err := vectorstore.New(cfg.DatabaseURL, cfg.EmbeddingDimensions)
		if err != nil {
			return err
		}
		defer store.Close()
		embedder := services.NewEmbeddingsClient(cfg.EmbeddingsBaseURL, cfg.LLMAPIKey, cfg.EmbeddingsModel, cfg.EmbeddingDimensions)
		rec := audit.NewRecorder(store, embedder)
		recorder = rec
		archive = rec
	}

	synth := tts.NewPiperSynthesizer(cfg.PiperBin)
	defer synth.Close()

	assembler := interview.NewAssembler(synth, tts.NewCatalog(cfg.ModelsDir), archive,
		cfg.OutputDir, time.Duration(cfg.SilenceMs)*time.Millisecond)
	gen := dialogue.NewGenerator(llm, recorder, dialogue.Config{Tier: tier, Specialist: specialist})

	results, err := assembler.Run(cmd.Context(), gen, langs, flagTopic, os.Stdout)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s: %s\n", r.Language.TrackName(), r.AudioPath)
	}
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	tier, err := models.ParseModelTier(flagModel)
	if err != nil {
		return err
	}
	lang, err := models.ParseLanguage(flagLang)
	if err != nil {
		return err
	}

	llm := services.NewChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMFastModel, cfg.LLMReasoningModel)
	gen := dialogue.NewGenerator(llm, nil, dialogue.Config{Tier: tier})

	topics, err := gen.SuggestTopics(cmd.Context(), lang, flagSubject)
	if err != nil {
		return err
	}
	for _, t := range topics {
		fmt.Println(t)
	}
	return nil
}

func runVoices(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lang, err := models.ParseLanguage(flagLang)
	if err != nil {
		return err
	}

	catalog := tts.NewCatalog(cfg.ModelsDir)
	for _, v := range catalog.Voices(lang) {
		status := "ok"
		if err := catalog.EnsureAvailable(v); err != nil {
			status = "missing"
		}
		fmt.Printf("%-24s %-8s %s\n", v.Name, status, v.ModelPath)
	}
	return nil
}

func openStore(cfg *config.Config) (*vectorstore.Store, *services.EmbeddingsClient, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for audit commands")
	}
	store, err := vectorstore.New(cfg.DatabaseURL, cfg.EmbeddingDimensions)
	if err != nil {
		return nil, nil, err
	}
	embedder := services.NewEmbeddingsClient(cfg.EmbeddingsBaseURL, cfg.LLMAPIKey, cfg.EmbeddingsModel, cfg.EmbeddingDimensions)
	return store, embedder, nil
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, embedder, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := audit.NewComparer(store, embedder).QueryAndCompare(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	points, err := store.Scroll(cmd.Context(), flagCollection, flagLimit)
	if err != nil {
		return err
	}
	for _, p := range points {
		text := p.Text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i] + " ..."
		}
		fmt.Printf("%s  %s\n", p.ID, text)
	}
	return nil
}

func runGetConversation(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid conversation uuid: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	point, err := store.Retrieve(cmd.Context(), interview.CollectionConversations, id)
	if err != nil {
		return err
	}
	fmt.Println(point.Text)
	return nil
}
