package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/reviewcrew/internal/config"
	"github.com/ShayCichocki/reviewcrew/internal/crew"
	"github.com/ShayCichocki/reviewcrew/internal/engine"
	"github.com/ShayCichocki/reviewcrew/internal/inference"
	"github.com/ShayCichocki/reviewcrew/internal/worker"
)

var (
	reviewCrewFile     string
	reviewModel        string
	reviewMaxInFlight  int64
	reviewCallTimeout  time.Duration
	reviewMaxAttempts  int
	reviewBedrock      bool
	reviewQuiet        bool
	reviewShowFindings bool
)

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Run the review crew over a file (or stdin)",
	Long: `Run the review crew over the given file and print the final decision.

With no file argument (or with "-"), the code is read from stdin:

  reviewcrew review mymodule.php
  git diff | reviewcrew review

The four specialist reviews run in parallel; the technical lead's decision
is printed when they all complete. Press Ctrl-C to cancel a running review.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewCrewFile, "crew", "", "Custom crew definition (YAML file)")
	reviewCmd.Flags().StringVar(&reviewModel, "model", "", "Model to use (overrides config)")
	reviewCmd.Flags().Int64Var(&reviewMaxInFlight, "max-in-flight", -1, "Max concurrent agent calls (0 = unbounded)")
	reviewCmd.Flags().DurationVar(&reviewCallTimeout, "timeout", 0, "Per-call timeout (overrides config)")
	reviewCmd.Flags().IntVar(&reviewMaxAttempts, "attempts", 0, "Attempt budget per task (overrides config)")
	reviewCmd.Flags().BoolVar(&reviewBedrock, "bedrock", false, "Route calls through Amazon Bedrock")
	reviewCmd.Flags().BoolVarP(&reviewQuiet, "quiet", "q", false, "Only print the final decision")
	reviewCmd.Flags().BoolVar(&reviewShowFindings, "findings", false, "Print each specialist's findings before the decision")
}

func runReview(cmd *cobra.Command, args []string) error {
	// Pick up ANTHROPIC_API_KEY from a local .env, if present.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyReviewFlags(cfg)

	artifact, err := readArtifact(args)
	if err != nil {
		return err
	}

	c := crew.Default()
	if reviewCrewFile != "" {
		c, err = crew.LoadFile(reviewCrewFile)
		if err != nil {
			return err
		}
	}

	apiKey := ""
	if !cfg.Anthropic.UseAWSBedrock {
		key, _, err := config.GetAPIKey(cfg)
		if err != nil {
			return fmt.Errorf("%w\n\nSet ANTHROPIC_API_KEY, add it to a .env file, or run:\n  reviewcrew config anthropic.api_key <key>", err)
		}
		apiKey = key
	}

	client, err := inference.NewClient(inference.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		MaxTokens:     cfg.Anthropic.MaxTokens,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return fmt.Errorf("creating inference client: %w", err)
	}

	exec := worker.NewExecutor(client, worker.Config{
		CallTimeout: cfg.Worker.CallTimeout,
		MaxAttempts: cfg.Worker.MaxAttempts,
		BackoffBase: cfg.Worker.BackoffBase,
	})

	reviewer, err := crew.NewReviewer(c, exec, crew.ReviewerOptions{
		MaxInFlight: cfg.Engine.MaxInFlight,
		OnEvent:     progressPrinter(),
		Tracker:     client.Tracker(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !reviewQuiet {
		fmt.Printf("Running crew %s (%d agents, %d tasks) with %s\n\n",
			color.CyanString(c.Name), len(c.Workers), len(c.Tasks), cfg.Anthropic.Model)
	}

	result, err := reviewer.Review(ctx, artifact)
	switch {
	case errors.Is(err, engine.ErrRunCancelled):
		fmt.Fprintf(os.Stderr, "\n%s review cancelled\n", color.YellowString("✗"))
		printUsage(result)
		os.Exit(130)
	case err != nil:
		fmt.Fprintf(os.Stderr, "\n%s %v\n", color.RedString("✗"), err)
		printUsage(result)
		os.Exit(1)
	}

	if reviewShowFindings {
		printFindings(c, result)
	}

	fmt.Println()
	fmt.Println(result.Decision)
	printUsage(result)
	return nil
}

// applyReviewFlags layers command-line overrides on top of loaded config.
func applyReviewFlags(cfg *config.Config) {
	if reviewModel != "" {
		cfg.Anthropic.Model = reviewModel
	}
	if reviewMaxInFlight >= 0 {
		cfg.Engine.MaxInFlight = reviewMaxInFlight
	}
	if reviewCallTimeout > 0 {
		cfg.Worker.CallTimeout = reviewCallTimeout
	}
	if reviewMaxAttempts > 0 {
		cfg.Worker.MaxAttempts = reviewMaxAttempts
	}
	if reviewBedrock {
		cfg.Anthropic.UseAWSBedrock = true
	}
}

// readArtifact reads the code under review from the file argument or stdin.
func readArtifact(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		if len(data) == 0 {
			return "", fmt.Errorf("nothing to review: provide a file or pipe code to stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

// progressPrinter returns an event sink that prints per-task progress.
func progressPrinter() func(engine.Event) {
	if reviewQuiet {
		return nil
	}
	return func(ev engine.Event) {
		switch ev.Type {
		case engine.EventTaskStarted:
			fmt.Printf("%s %s reviewing...\n", color.CyanString("▶"), ev.Worker)
		case engine.EventTaskCompleted:
			fmt.Printf("%s %s done\n", color.GreenString("✓"), ev.Worker)
		case engine.EventTaskFailed:
			fmt.Printf("%s %s: %s\n", color.RedString("✗"), ev.Worker, ev.Message)
		}
	}
}

// printFindings prints each non-terminal task's result in task order.
func printFindings(c *crew.Crew, result *crew.ReviewResult) {
	for _, task := range c.Tasks {
		if task.ID == c.TerminalID {
			continue
		}
		findings, ok := result.Results[task.ID]
		if !ok {
			continue
		}
		fmt.Printf("\n%s\n%s\n", color.New(color.Bold).Sprintf("── %s (%s)", task.Worker, task.ID), findings)
	}
}

// printUsage prints token totals and estimated cost.
func printUsage(result *crew.ReviewResult) {
	if reviewQuiet || result == nil || result.Usage == nil || result.Usage.Calls == 0 {
		return
	}
	u := result.Usage
	fmt.Printf("\n%s %d calls, %d in / %d out tokens, ~$%.4f\n",
		color.New(color.Faint).Sprint("usage:"), u.Calls, u.InputTokens, u.OutputTokens, u.Cost)
}
