package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/config"
	"github.com/charmbracelet/carousel/internal/feed"
	"github.com/charmbracelet/carousel/internal/log"
	"github.com/charmbracelet/carousel/internal/notification"
	"github.com/charmbracelet/carousel/internal/telemetry"
	"github.com/charmbracelet/carousel/internal/tui"
	"github.com/charmbracelet/carousel/internal/version"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().IntP("index", "i", 0, "Entry to open the feed on")
	rootCmd.Flags().BoolP("follow", "f", false, "Keep reading entries appended to the feed")
	rootCmd.Flags().IntP("window", "w", 0, "Number of entries mounted at once")
	rootCmd.Flags().Bool("render-all", false, "Mount every entry")
	rootCmd.Flags().Bool("uuid", false, "Give entries without an id a random one")
	rootCmd.Flags().BoolP("markdown", "m", false, "Render entry bodies as markdown")
	rootCmd.Flags().String("find", "", "Open on the entry whose title best matches")
}

var rootCmd = &cobra.Command{
	Use:   "carousel [feed]",
	Short: "Page through a feed one entry at a time",
	Long: heredoc.Doc(`
		Carousel pages through a feed file one entry at a time. Only a window
		of entries around the one on screen is laid out, so feeds of any
		length open instantly.

		Each line of the feed is an entry: a title, or an id, title and body
		separated by tabs.
	`),
	Example: heredoc.Doc(`
		# Page through a feed
		carousel notes.txt

		# Open on the tenth entry
		carousel notes.txt --index 9

		# Open on the entry titled closest to "agenda"
		carousel notes.txt --find agenda

		# Follow a feed that is being written to
		carousel build.log --follow

		# Print a single entry when piped
		carousel notes.txt --index 3 | less
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)

		var feedOpts []feed.Option
		if uuids, _ := cmd.Flags().GetBool("uuid"); uuids {
			feedOpts = append(feedOpts, feed.WithUUIDs())
		}
		if cfg.Options.Markdown {
			feedOpts = append(feedOpts, feed.WithMarkdown())
		}
		f, err := feed.Load(args[0], feedOpts...)
		if err != nil {
			return err
		}
		index := resolveIndex(cmd, cfg, f)

		if !term.IsTerminal(os.Stdout.Fd()) {
			return printEntry(cmd.OutOrStdout(), f, index)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		store := openStore(ctx, cfg)
		if store != nil {
			defer store.Close()
		}

		var follower *feed.Follower
		if follow, _ := cmd.Flags().GetBool("follow"); follow {
			follower, err = f.Follow(ctx)
			if err != nil {
				return err
			}
			defer follower.Stop()
		}

		notifier := notification.New(cfg.Options.Notify)
		defer notifier.Wait()

		sink := telemetry.NewSink(store)
		defer sink.Close()

		model := tui.New(tui.Options{
			Config:   cfg,
			Feed:     f,
			Follower: follower,
			Reporter: sink,
			Notifier: notifier,
			Index:    index,
		})
		return run(ctx, model)
	},
}

func run(ctx context.Context, model tea.Model) error {
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("carousel crashed: %w", err)
	}
	return nil
}

// setup resolves the working directory, loads the configuration and starts
// logging.
func setup(cmd *cobra.Command) (*config.Config, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	cwd, err := resolveCwd(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Init(cwd, debug)
	if err != nil {
		return nil, err
	}
	log.Setup(filepath.Join(cfg.DataDir(), "logs", "carousel.log"), cfg.Options.Debug)
	slog.Debug("Starting carousel", "version", version.Version, "cwd", cwd)
	return cfg, nil
}

func resolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		if err := os.Chdir(cwd); err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if window, _ := cmd.Flags().GetInt("window"); window > 0 {
		cfg.WindowLength = window
	}
	if cmd.Flags().Changed("render-all") {
		cfg.RenderAll, _ = cmd.Flags().GetBool("render-all")
	}
	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		cfg.Options.Markdown = true
	}
}

// printEntry writes the plain text of one entry, for when the output is not
// a terminal.
func printEntry(w io.Writer, f *feed.Feed, index int) error {
	entries := f.Entries()
	if len(entries) == 0 {
		return nil
	}
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("index %d out of range, the feed has %d entries", index, len(entries))
	}
	_, err := fmt.Fprintln(w, entries[index].Text())
	return err
}

// openStore opens the report store. Failures are logged and the
// application runs without persisting reports.
func openStore(ctx context.Context, cfg *config.Config) *telemetry.Store {
	store, err := telemetry.Open(ctx, cfg.DataDir())
	if err != nil {
		slog.Warn("Failed to open report store", "error", err)
		return nil
	}
	return store
}

// resolveIndex picks the entry to open on: the --index flag, then the best
// --find match, then the saved position when resuming, then the first entry.
func resolveIndex(cmd *cobra.Command, cfg *config.Config, f *feed.Feed) int {
	if cmd.Flags().Changed("index") {
		index, _ := cmd.Flags().GetInt("index")
		return index
	}
	if query, _ := cmd.Flags().GetString("find"); query != "" {
		if index, ok := f.Find(query); ok {
			return index
		}
		slog.Info("No entry matches", "query", query)
	}
	if !cfg.Options.Resume {
		return 0
	}
	pos, ok, err := config.LoadPosition(cfg, f.Path())
	if err != nil {
		slog.Warn("Failed to load position", "path", f.Path(), "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	entries := f.Entries()
	if i := slices.IndexFunc(entries, func(e *feed.Entry) bool { return e.ID() == pos.ID }); i >= 0 {
		return i
	}
	return max(0, min(pos.Index, len(entries)-1))
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
	); err != nil {
		os.Exit(1)
	}
}
