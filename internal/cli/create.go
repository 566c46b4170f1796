package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/reactcs/create-react-cs/internal/archive"
	"github.com/reactcs/create-react-cs/internal/config"
	"github.com/reactcs/create-react-cs/internal/doctor"
	"github.com/reactcs/create-react-cs/internal/installer"
	"github.com/reactcs/create-react-cs/internal/scaffold"
)

func runCreate(cmd *cobra.Command, projectDir string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	p := newPipeline(config.Current(), cmd, cwd)
	_, err = p.Run(cmd.Context(), scaffold.Request{
		ProjectDir:     projectDir,
		Template:       templateName,
		ScriptsVersion: scriptsVersion,
		Verbose:        verbose,
	})
	return err
}

// newPipeline wires the production collaborators for settings.
func newPipeline(settings config.Settings, cmd *cobra.Command, cwd string) *scaffold.Pipeline {
	pm := installer.New(settings.PackageManager)
	pm.Stdout = cmd.OutOrStdout()
	pm.Stderr = cmd.ErrOrStderr()

	return &scaffold.Pipeline{
		Settings:  settings,
		Registry:  newRegistryClient(settings),
		Extractor: archive.New(),
		Installer: pm,
		Env:       doctor.NewChecker(settings.PackageManager),
		Out:       cmd.OutOrStdout(),
		Err:       cmd.ErrOrStderr(),
		Cwd:       cwd,
	}
}

func runInfo(cmd *cobra.Command) error {
	settings := config.Current()
	c := doctor.NewChecker(settings.PackageManager)
	c.Report(cmd.Context(), cmd.OutOrStdout(), cmd.Root().Name(), buildVersion)
	return nil
}

// signalContext is cancelled on interrupt so a running install is stopped
// and the pipeline can roll back.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
