// Package main provides the CLI entry point for the agent core runtime.
//
// agentcore drives one Agent Loop run (§4.1) from stdin against a
// configured LLM provider, printing lifecycle events to stderr and the
// model's final text to stdout.
//
// # Basic Usage
//
//	agentcore run --config agentcore.yaml
//
// # Environment Variables
//
//   - ANTHROPIC_API_KEY: Anthropic API key for Claude models
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/agentcore/runtime/internal/agent"
	agentctx "github.com/agentcore/runtime/internal/agent/context"
	"github.com/agentcore/runtime/internal/agent/providers"
	"github.com/agentcore/runtime/internal/config"
	"github.com/agentcore/runtime/internal/sessionstore"
	"github.com/agentcore/runtime/pkg/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "agentcore",
		Short:        "agentcore - stateful event-driven agent loop runtime",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(buildRunCmd())
	return rootCmd
}

// buildRunCmd wires a provider, tool registry, and JSONL session store into
// a Runtime and drives one ProcessStream run from stdin, printing lifecycle
// events to stderr as they arrive and the final assistant text to stdout.
func buildRunCmd() *cobra.Command {
	var (
		configPath string
		sessionID  string
		message    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one agent turn against stdin or --message",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			text := strings.TrimSpace(message)
			if text == "" {
				scanner := bufio.NewScanner(os.Stdin)
				scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
				var sb strings.Builder
				for scanner.Scan() {
					sb.WriteString(scanner.Text())
					sb.WriteByte('\n')
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = strings.TrimSpace(sb.String())
			}
			if text == "" {
				return fmt.Errorf("no input: pass --message or pipe text on stdin")
			}

			provider, err := buildProvider(cfg)
			if err != nil {
				return fmt.Errorf("build provider: %w", err)
			}

			store, err := sessionstore.New(expandHome(cfg.Session.Directory))
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			workingDir, _ := os.Getwd()
			adapter := sessionstore.NewAdapter(store, workingDir)

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			session := &models.Session{
				ID:        sessionID,
				Channel:   models.ChannelTelegram,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}

			rt := agent.NewRuntime(provider, adapter)
			rt.SetDefaultModel(cfg.LLM.DefaultModel)

			pruneSettings := agentctx.DefaultContextPruningSettings()
			rt.SetContextPruning(&pruneSettings)

			summaryCfg := agentctx.DefaultSummarizationConfig()
			rt.SetSummarizationConfig(&summaryCfg)

			msg := &models.Message{
				ID:        uuid.NewString(),
				SessionID: session.ID,
				Role:      models.RoleUser,
				Content:   text,
				CreatedAt: time.Now(),
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			queue := agent.NewSteeringQueue()
			queue.SetSteeringMode(agent.SteeringMode(cfg.Steering.SteeringMode))
			queue.SetFollowUpMode(agent.FollowUpMode(cfg.Steering.FollowUpMode))
			ctx = agent.WithSteeringQueue(ctx, queue)

			events, err := rt.ProcessStream(ctx, session, msg)
			if err != nil {
				return fmt.Errorf("start run: %w", err)
			}

			for event := range events {
				printEvent(cmd.OutOrStdout(), cmd.ErrOrStderr(), event)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agentcore.yaml", "Path to YAML configuration file")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to continue (new session if omitted)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text (reads stdin if omitted)")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildProvider(cfg *config.Config) (agent.LLMProvider, error) {
	switch cfg.LLM.DefaultProvider {
	case "anthropic", "":
		providerCfg := cfg.LLM.Providers["anthropic"]
		apiKeyEnv := providerCfg.APIKeyEnv
		if apiKeyEnv == "" {
			apiKeyEnv = "ANTHROPIC_API_KEY"
		}
		return providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:  os.Getenv(apiKeyEnv),
			BaseURL: providerCfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.LLM.DefaultProvider)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + strings.TrimPrefix(path, "~")
}

func printEvent(out, w io.Writer, event models.AgentEvent) {
	switch event.Type {
	case models.AgentEventModelDelta:
		if event.Stream != nil {
			fmt.Fprint(out, event.Stream.Delta)
		}
	case models.AgentEventToolStarted:
		if event.Tool != nil {
			fmt.Fprintf(w, "[tool] %s started\n", event.Tool.Name)
		}
	case models.AgentEventToolFinished:
		if event.Tool != nil {
			fmt.Fprintf(w, "[tool] %s finished\n", event.Tool.Name)
		}
	case models.AgentEventSteeringInjected:
		if event.Steering != nil {
			fmt.Fprintf(w, "[steering] injected, skipped %d tool(s)\n", len(event.Steering.SkippedTools))
		}
	case models.AgentEventContextPacked:
		if event.Context != nil {
			fmt.Fprintf(w, "[context] packed %d/%d messages (%d/%d chars)\n",
				event.Context.Included, event.Context.Candidates, event.Context.UsedChars, event.Context.BudgetChars)
		}
	case models.AgentEventRunError:
		if event.Error != nil {
			fmt.Fprintf(w, "[error] %s\n", event.Error.Message)
		}
	}
}
