// cmd/podium/main.go
// Front-end for the debate core: collects the resolved configuration, runs
// one debate, prints the result, and hands the final snapshot to the report
// and storage sinks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"podium/internal/agents"
	"podium/internal/config"
	"podium/internal/controller"
	"podium/internal/db"
	"podium/internal/export"
	"podium/internal/judge"
	"podium/internal/llm"
	"podium/internal/memory"
	"podium/internal/state"
	"podium/internal/validator"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	winnerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00"))
	speakerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

var (
	flagConfig  string
	flagTopic   string
	flagAgents  []string
	flagRounds  int
	flagPolicy  string
	flagNoSave  bool
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "podium",
		Short: "Multi-agent debate orchestrator",
		Long: `Podium runs multi-round debates between persona agents backed by a
language model, validates every argument before it enters the transcript,
and has a judge deliver the final verdict.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default "+config.ConfigPath()+")")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a debate to completion",
		RunE:  runDebate,
	}
	runCmd.Flags().StringVarP(&flagTopic, "topic", "t", "", "debate topic (required)")
	runCmd.Flags().StringSliceVarP(&flagAgents, "agents", "a", nil, "participant personas, in speaking order")
	runCmd.Flags().IntVarP(&flagRounds, "rounds", "r", 0, "number of rounds")
	runCmd.Flags().StringVar(&flagPolicy, "on-failure", "", "turn failure policy: skip or abort")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "skip the report and database sinks")
	runCmd.MarkFlagRequired("topic")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored debates",
		RunE:  listDebates,
	}

	personasCmd := &cobra.Command{
		Use:   "personas",
		Short: "List available personas",
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range agents.BuiltinIDs() {
				p, _ := agents.Builtin(id)
				fmt.Printf("%s  %s\n", speakerStyle.Render(fmt.Sprintf("%-12s", id)), p.Description)
			}
		},
	}

	root.AddCommand(runCmd, listCmd, personasCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runDebate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if len(flagAgents) > 0 {
		cfg.Debate.Participants = flagAgents
	}
	if flagRounds > 0 {
		cfg.Debate.MaxRounds = flagRounds
	}
	if flagPolicy != "" {
		cfg.Debate.FailurePolicy = flagPolicy
	}

	policy, err := controller.ParsePolicy(cfg.Debate.FailurePolicy)
	if err != nil {
		return err
	}

	debate, err := state.New(flagTopic, cfg.Debate.Participants, cfg.Debate.MaxRounds)
	if err != nil {
		return err
	}

	debaterLLM := llm.NewClient(llm.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	judgeLLM := llm.NewClient(llm.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.JudgeModel,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})

	registry, err := agents.NewRegistry(cfg.Debate.Participants, debaterLLM,
		cfg.Debate.GenerationRetries, cfg.LLM.Temperature)
	if err != nil {
		return err
	}

	ctrl, err := controller.New(controller.Params{
		Debate:   debate,
		Registry: registry,
		Validator: validator.New(flagTopic, validator.Options{
			MinWords:      cfg.Validator.MinWords,
			MinChars:      cfg.Validator.MinChars,
			MaxSimilarity: cfg.Validator.MaxSimilarity,
			NoveltyWindow: cfg.Validator.NoveltyWindow,
		}),
		Store:       memory.NewStore(flagTopic, cfg.Debate.Participants),
		Manager:     memory.NewManager(cfg.Memory.Window, cfg.Memory.RelevanceFloor),
		Judge:       judge.New(judgeLLM, cfg.Debate.JudgeRetries, cfg.LLM.JudgeTemperature),
		Policy:      policy,
		RejectLimit: cfg.Debate.RejectLimit,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	// Ctrl-C cancels at the next turn boundary
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(titleStyle.Render("Podium: " + flagTopic))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%s · %d rounds · %s on failure",
		strings.Join(cfg.Debate.Participants, " vs "), cfg.Debate.MaxRounds, policy)))
	fmt.Println()

	snap, runErr := ctrl.Run(ctx)

	printResult(snap)

	if !flagNoSave && snap.Verdict != nil {
		if err := persist(snap, logger); err != nil {
			logger.Error("failed to persist debate", "error", err)
		}
	}

	return runErr
}

func printResult(snap state.Snapshot) {
	for _, t := range snap.Turns {
		fmt.Printf("%s %s\n", speakerStyle.Render(fmt.Sprintf("[round %d] %s:", t.Round+1, t.AgentID)), t.Argument)
		fmt.Println()
	}

	v := snap.Verdict
	if v == nil {
		fmt.Println(errorStyle.Render("No verdict recorded"))
		return
	}

	fmt.Println(titleStyle.Render("Verdict"))
	switch v.Outcome {
	case state.OutcomeDecided:
		fmt.Println(winnerStyle.Render("Winner: " + v.Winner))
	case state.OutcomeAborted:
		fmt.Println(errorStyle.Render("Debate aborted"))
	case state.OutcomeInconclusive:
		fmt.Println(errorStyle.Render("Inconclusive"))
	}

	if len(v.Scores) > 0 {
		ids := make([]string, 0, len(v.Scores))
		for id := range v.Scores {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("  %s: %.1f\n", id, v.Scores[id])
		}
	}
	if v.Rationale != "" {
		fmt.Println()
		fmt.Println(v.Rationale)
	}
	fmt.Println()
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d turns accepted, %d candidates rejected",
		len(snap.Turns), len(snap.Rejections))))
}

func persist(snap state.Snapshot, logger *slog.Logger) error {
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}

	store, err := db.Open(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveSnapshot(snap); err != nil {
		return err
	}

	path, err := export.WriteReport(snap, dataDir)
	if err != nil {
		return err
	}

	logger.Info("debate saved", "id", snap.ID, "report", path)
	fmt.Println(dimStyle.Render("Report: " + path))
	return nil
}

func listDebates(cmd *cobra.Command, args []string) error {
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	store, err := db.Open(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	debates, err := store.ListDebates()
	if err != nil {
		return err
	}
	if len(debates) == 0 {
		fmt.Println(dimStyle.Render("No stored debates"))
		return nil
	}
	for _, d := range debates {
		line := fmt.Sprintf("%s  %-40s  %s", d.EndedAt.Format("2006-01-02"), truncate(d.Topic, 40), d.Outcome)
		if d.Winner != "" {
			line += "  " + winnerStyle.Render(d.Winner)
		}
		fmt.Println(line)
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
