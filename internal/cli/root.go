package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reactcs/create-react-cs/internal/branding"
	"github.com/reactcs/create-react-cs/internal/config"
	"github.com/reactcs/create-react-cs/internal/registry"
	"github.com/reactcs/create-react-cs/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configPath     string
	verbose        bool
	scriptsVersion string
	templateName   string
	showInfo       bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Print additional logs")
	rootCmd.Flags().StringVar(&scriptsVersion, "scripts-version", "", "Use a specific template version (never older than latest)")
	rootCmd.Flags().StringVar(&templateName, "template", "", "Template package to bootstrap with")
	rootCmd.Flags().BoolVar(&showInfo, "info", false, "Print environment debug info")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " <project-directory>",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates a new React project from a template published on the npm
registry, writes its package.json and installs its dependencies.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configPath); err != nil {
			return err
		}

		// Config management and version output stay quiet.
		if cmd != cmd.Root() {
			return nil
		}
		client := newRegistryClient(config.Current())
		u := updater.New(buildVersion, branding.PackageName(), client)
		u.CheckAndPrintNotice(cmd.Context(), cmd.ErrOrStderr(), config.Dir())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showInfo {
			return runInfo(cmd)
		}
		projectDir := ""
		if len(args) == 1 {
			projectDir = args[0]
		}
		return runCreate(cmd, projectDir)
	},
}

// newRegistryClient builds the registry client for settings. NPM_TOKEN, when
// set, authenticates against private registries.
func newRegistryClient(settings config.Settings) *registry.Client {
	return registry.New(
		registry.WithBaseURL(settings.Registry),
		registry.WithUserAgent(branding.CLIName()+"/"+buildVersion),
		registry.WithToken(os.Getenv("NPM_TOKEN")),
	)
}

// Execute runs the root command with build info injected via ldflags.
// Errors are printed here; the caller only maps them to an exit code.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signalContext()
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}
