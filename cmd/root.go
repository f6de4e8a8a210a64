package cmd

import (
	"fmt"
	"os"

	"github.com/ninelmnts/assetscan/config"
	"github.com/ninelmnts/assetscan/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootDependencies is what every subcommand needs after configuration is loaded.
type RootDependencies struct {
	Config *config.Config
	Cwd    string
	Logger zerolog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "assetscan",
	Short: "Inventory the files of one or more project roots.",
	Long: `assetscan walks project roots, records per-file metadata and writes a structured
document, a CSV ready for manual curation and a console digest of what was found.
Roots come from arguments, repeated --root flags, the ASSETSCAN_ROOTS variable or the
roots list of assetscan-config.yml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return &RootDependencies{
		Config: cfg,
		Cwd:    cwd,
		Logger: logger,
	}, nil
}
