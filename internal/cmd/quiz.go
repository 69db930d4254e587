package cmd

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/carousel/internal/feed"
	"github.com/charmbracelet/carousel/internal/tui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.Flags().Bool("show-all", false, "Reveal every question up front")
}

var quizCmd = &cobra.Command{
	Use:   "quiz <feed>",
	Short: "Reveal the entries of a feed one question at a time",
	Long: heredoc.Doc(`
		Quiz shows the first entry of a feed and reveals the next one when
		asked to. Revealed entries can be paged back to, and the quiz can be
		restarted from any of them.
	`),
	Example: heredoc.Doc(`
		# Start a quiz
		carousel quiz questions.txt

		# Show every question at once
		carousel quiz questions.txt --show-all
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		f, err := feed.Load(args[0])
		if err != nil {
			return err
		}
		showAll, _ := cmd.Flags().GetBool("show-all")
		return run(cmd.Context(), tui.NewQuiz(tui.QuizOptions{
			Config:  cfg,
			Feed:    f,
			ShowAll: showAll,
		}))
	},
}
