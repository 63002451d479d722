package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"Lamia/internal/activitypub/webfinger"
	"Lamia/internal/version"
)

// discovererFunc builds the discoverer a lookup runs against
type discovererFunc func(config webfinger.Config) webfinger.Discoverer

func defaultDiscoverer(config webfinger.Config) webfinger.Discoverer {
	return webfinger.NewClient(config)
}

type fingerOptions struct {
	normalizeOnly bool
	allowPort     bool
	timeout       time.Duration
	userAgent     string
	allowPrivate  bool
	debug         bool
}

// newRootCommand creates the finger command
func newRootCommand(newDiscoverer discovererFunc) *cobra.Command {
	var opts fingerOptions

	cmd := &cobra.Command{
		Use:   "finger <identifier>",
		Short: "Look up an ActivityPub actor with WebFinger",
		Long: `finger normalizes an actor identifier (acct:alice@example.com, alice@example.com,
https://example.com/users/alice, example.com/@alice) and queries the authority's
/.well-known/webfinger endpoint, printing the returned document.`,
		Args:          cobra.ExactArgs(1),
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := args[0]

			if opts.normalizeOnly {
				ref := webfinger.Normalize(identifier, opts.allowPort)
				return writeJSON(cmd, map[string]string{
					"resource":  ref.Resource,
					"authority": ref.Authority,
					"url":       ref.URL(),
				})
			}

			config := webfinger.DefaultConfig()
			config.Timeout = opts.timeout
			config.AllowPrivate = opts.allowPrivate
			if opts.userAgent != "" {
				config.UserAgent = opts.userAgent
			}

			doc, err := newDiscoverer(config).Discover(cmd.Context(), identifier)
			if err != nil {
				return err
			}
			return writeJSON(cmd, doc)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.normalizeOnly, "normalize-only", false, "Print the normalized resource and authority without a network call")
	flags.BoolVar(&opts.allowPort, "allow-port", false, "Keep an explicit port when normalizing (only with --normalize-only)")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Bound the whole lookup (0 disables)")
	flags.StringVar(&opts.userAgent, "user-agent", "", "User-Agent to send (default "+version.UserAgent()+")")
	flags.BoolVar(&opts.allowPrivate, "allow-private", false, "Allow lookups against loopback and private networks")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
