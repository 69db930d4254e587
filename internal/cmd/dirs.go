package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/carousel/internal/config"
	"github.com/spf13/cobra"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Print directories used by carousel",
	Long: `Print the directories where carousel stores its configuration and data files.
The data directory holds the report database, saved positions and logs.`,
	Example: heredoc.Doc(`
		# Print all directories
		carousel dirs

		# Print only the config directory
		carousel dirs --config

		# Print only the data directory
		carousel dirs --data
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		configOnly, _ := cmd.Flags().GetBool("config")
		dataOnly, _ := cmd.Flags().GetBool("data")

		if configOnly && dataOnly {
			return fmt.Errorf("cannot specify both --config and --data flags")
		}

		cwd, err := resolveCwd(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Init(cwd, false)
		if err != nil {
			return err
		}

		configDir := filepath.Dir(config.GlobalConfig())
		dataDir := cfg.DataDir()
		out := cmd.OutOrStdout()

		if configOnly {
			fmt.Fprintln(out, configDir)
			return nil
		}

		if dataOnly {
			fmt.Fprintln(out, dataDir)
			return nil
		}

		// Print both by default
		fmt.Fprintf(out, "Config directory: %s\n", configDir)
		fmt.Fprintf(out, "Data directory:   %s\n", dataDir)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dirsCmd)
	dirsCmd.Flags().Bool("config", false, "Print only the config directory")
	dirsCmd.Flags().Bool("data", false, "Print only the data directory")
}
