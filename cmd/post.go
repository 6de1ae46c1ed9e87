// File: cmd/post.go
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/observability"
	"github.com/xkilldash9x/feedpilot/internal/orchestrator"
)

var postOpts struct {
	topic string
	style string
	text  string
	media []string
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Compose and publish a post.",
	Long: `Publishes a post to the feed. Text can be given directly with --text
(supporting @{Name} mention placeholders) or generated from --topic.
Images are attached with repeated --media flags.`,
	RunE: runPost,
}

func init() {
	f := postCmd.Flags()
	f.StringVar(&postOpts.topic, "topic", "", "topic to generate the post from")
	f.StringVar(&postOpts.style, "style", "", "writing style for generated posts")
	f.StringVar(&postOpts.text, "text", "", "post text, may contain @{Name} mentions")
	f.StringSliceVar(&postOpts.media, "media", nil, "image files to attach")

	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	if postOpts.text == "" && postOpts.topic == "" {
		return fmt.Errorf("either --text or --topic is required")
	}

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
	if err := orch.ComposePost(ctx, orchestrator.ComposeOptions{
		Topic:      postOpts.topic,
		Style:      postOpts.style,
		Text:       postOpts.text,
		MediaPaths: postOpts.media,
	}); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "posted")
	return nil
}
