// File: cmd/engage.go
package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/ai"
	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/observability"
	"github.com/xkilldash9x/feedpilot/internal/orchestrator"
)

var engageCmd = &cobra.Command{
	Use:   "engage",
	Short: "Run the feed engagement stream.",
	Long: `Signs in, scrolls the feed and likes or comments on posts until the
action budget is spent or the feed runs out. Ctrl-C stops the stream
cleanly and prints the summary of what was done so far.`,
	RunE: runEngage,
}

func init() {
	f := engageCmd.Flags()
	f.String("mode", "", "engagement mode: like, comment or both")
	f.String("comment", "", "static comment text")
	f.Int("max-actions", 0, "stop after this many actions")
	f.Bool("include-promoted", false, "engage promoted posts too")
	f.Duration("delay-min", 0, "minimum pause between actions")
	f.Duration("delay-max", 0, "maximum pause between actions")
	f.Bool("mention-author", false, "mention the post author in comments")
	f.String("mention-position", "", "where the author mention lands: append or prepend")
	f.Bool("infinite", false, "ignore the action budget and run until interrupted")
	f.Bool("ai", false, "generate comments with the configured model")
	f.StringSlice("perspectives", nil, "allowed AI comment perspectives")

	v := viper.GetViper()
	v.BindPFlag("engage.mode", f.Lookup("mode"))
	v.BindPFlag("engage.comment_text", f.Lookup("comment"))
	v.BindPFlag("engage.max_actions", f.Lookup("max-actions"))
	v.BindPFlag("engage.include_promoted", f.Lookup("include-promoted"))
	v.BindPFlag("pacing.action_delay_min", f.Lookup("delay-min"))
	v.BindPFlag("pacing.action_delay_max", f.Lookup("delay-max"))
	v.BindPFlag("engage.mention_author", f.Lookup("mention-author"))
	v.BindPFlag("engage.mention_position", f.Lookup("mention-position"))
	v.BindPFlag("engage.infinite", f.Lookup("infinite"))
	v.BindPFlag("ai.enabled", f.Lookup("ai"))
	v.BindPFlag("ai.perspectives", f.Lookup("perspectives"))

	rootCmd.AddCommand(engageCmd)
}

func runEngage(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := browser.NewSession(ctx, cfg.Browser, logger)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer session.Close()

	generator, err := buildGenerator(logger)
	if err != nil {
		return err
	}

	orch := orchestrator.New(session.Page(), cfg, generator, nil, logger)
	sum, err := orch.EngageStream(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"likes=%d comments=%d skips=%d errors=%d scrolls=%d cancelled=%v\n",
		sum.Likes, sum.Comments, sum.Skips, sum.Errors, sum.Scrolls, sum.Cancelled)
	return nil
}

// buildGenerator returns the comment/post generator for the run: the Gemini
// client when AI is enabled, otherwise the template source.
func buildGenerator(logger *zap.Logger) (ai.Generator, error) {
	if cfg.AI.Enabled {
		client, err := ai.NewGeminiClient(cfg.AI, logger)
		if err != nil {
			return nil, fmt.Errorf("configure generator: %w", err)
		}
		return client, nil
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ai.NewTemplateSource(cfg.AI.TemplateFile, rng, logger), nil
}
