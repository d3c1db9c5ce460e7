package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/corpus"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/engine"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/history"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/llm"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/server"
)

const shutdownTimeout = 10 * time.Second

// newEngine bootstraps shared resources and the completion provider.
func newEngine(ctx context.Context) (*engine.Engine, error) {
	res, err := engine.Bootstrap(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return engine.New(res, provider, cfg), nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// SERVE
// ═══════════════════════════════════════════════════════════════════════════════

func newServeCmd() *cobra.Command {
	var addr string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng, err := newEngine(ctx)
			if err != nil {
				return err
			}

			var store server.HistoryStore
			if !noHistory {
				s, err := history.Open(ctx, cfg.History.DBPath)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer s.Close()
				store = s
			}

			if addr != "" {
				cfg.Server.Addr = addr
			}
			srv := server.New(cfg.Server, cfg.History.Limit, eng, store)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not persist conversations")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// ASK
// ═══════════════════════════════════════════════════════════════════════════════

func newAskCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := newEngine(ctx)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			req := engine.Request{Query: query, UserID: userID}

			var store *history.Store
			if userID != "" {
				store, err = history.Open(ctx, cfg.History.DBPath)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer store.Close()
				if req.History, err = store.Recent(ctx, userID, cfg.History.Limit); err != nil {
					return err
				}
			}

			resp := eng.Generate(ctx, req)

			if store != nil {
				if _, err := store.Save(ctx, userID, query, resp); err != nil {
					log.Warn().Err(err).Msg("save message failed")
				}
			}

			fmt.Println(emotionBadge(resp.EmotionalState, resp.Confidence))
			fmt.Println()
			fmt.Println(renderMarkdown(resp.Text))
			if resp.Error != "" {
				fmt.Println(errorStyle.Render(resp.Error))
			}
			fmt.Println(dimStyle.Render(fmt.Sprintf("%.2fs", resp.ProcessingTime.Seconds())))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id; loads and stores conversation history")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// EMOTION
// ═══════════════════════════════════════════════════════════════════════════════

func newEmotionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emotion [message]",
		Short: "Classify the emotional state of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := engine.Bootstrap(ctx, cfg)
			if err != nil {
				return err
			}

			r := res.Classifier.Classify(ctx, strings.Join(args, " "))
			fmt.Println(emotionBadge(r.Label, r.Confidence) + dimStyle.Render(" via "+string(r.Method)))
			fmt.Println(r.Label.Description())
			fmt.Println()
			for _, rec := range r.Label.Recommendations() {
				fmt.Println("  • " + rec)
			}
			return nil
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// STATUS
// ═══════════════════════════════════════════════════════════════════════════════

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report which resources are loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			st := eng.Status()

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			fmt.Println(titleStyle.Render("WARDA " + version))
			fmt.Println()
			check := func(name string, ok bool, detail string) {
				mark := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render("✓")
				if !ok {
					mark = errorStyle.Render("✗")
				}
				fmt.Printf("%s %-18s %s\n", mark, name, dimStyle.Render(detail))
			}
			check("emotion model", st.ModelLoaded, st.EmbeddingModel)
			check("embeddings", st.EmbeddingsLoaded, "")
			check("corpus", st.DataLoaded, fmt.Sprintf("%d entries", st.CorpusEntries))
			check("sessions", st.SessionsLoaded, fmt.Sprintf("%d sessions", st.Sessions))
			check("api key", st.APIKeyAvailable, st.Provider+" "+st.Model)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// CORPUS
// ═══════════════════════════════════════════════════════════════════════════════

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the reference corpus",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import [embeddings.json] [corpus.db]",
		Short: "Convert a JSON embeddings export into a SQLite corpus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := corpus.LoadJSON(args[0])
			if err != nil {
				return err
			}
			if err := corpus.WriteSQLite(cmd.Context(), c, args[1]); err != nil {
				return err
			}
			fmt.Printf("imported %d entries (dim %d) into %s\n", c.Len(), c.Dimension(), args[1])
			return nil
		},
	})
	return cmd
}

// emotionBadge renders a label in its display color.
func emotionBadge(l emotion.Label, confidence float64) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(l.Color()))
	return style.Render(strings.ToUpper(l.String())) + dimStyle.Render(fmt.Sprintf(" (%.0f%%)", confidence*100))
}

// renderMarkdown falls back to plain text when glamour cannot render.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
