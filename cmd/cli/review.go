package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/review-gateway/internal/client"
)

var (
	raw     bool
	verbose bool
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [file|-]",
	Short: "Request an AI code review for a file",
	Long: `Request an AI code review for a file.

The review command reads the given file (or stdin when the argument is "-"),
posts it to the gateway's /ai/generate endpoint and prints the review.

Examples:
  review-cli review main.go
  cat handler.js | review-cli review -
  review-cli review --server http://review.internal:8080 --raw main.go`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&raw, "raw", false, "Print the review as plain text instead of rendered markdown")
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print timing information")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	code, err := readSource(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("nothing to review: %s is empty", args[0])
	}

	target := viper.GetString("SERVER")
	if verbose {
		titleColor.Println("Code review")
		dimColor.Printf("   Gateway: %s\n   Source:  %s (%d bytes)\n\n", target, args[0], len(code))
	}

	start := time.Now()
	text, err := client.New(target, nil).Review(context.Background(), code)
	if err != nil {
		return fmt.Errorf("review failed: %w\n\nTip: check that the gateway is running at %s", err, target)
	}
	if verbose {
		successColor.Printf("   ✓ Done (%s)\n\n", time.Since(start).Round(time.Millisecond))
	}

	out, err := renderReview(text, raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func readSource(arg string, stdin io.Reader) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return string(data), nil
}

// renderReview formats the markdown review for the terminal.
func renderReview(text string, plain bool) (string, error) {
	if plain {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render review: %w", err)
	}
	return out, nil
}
