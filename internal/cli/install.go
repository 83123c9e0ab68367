package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modoboa/installer/internal/config"
	"github.com/modoboa/installer/internal/database"
	"github.com/modoboa/installer/internal/installer"
	"github.com/modoboa/installer/internal/resolve"
)

// InstallOptions holds options for the install command
type InstallOptions struct {
	Force  bool
	DryRun bool
}

// newInstallCmd creates the install command
func newInstallCmd() *cobra.Command {
	opts := &InstallOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a Modoboa instance",
		Long: `Install a Modoboa instance on this host.

This command:
1. Resolves the extension packages compatible with the requested release
2. Provisions a dedicated virtualenv and installs the packages into it
3. Deploys the instance through modoboa-admin.py
4. Writes the post-deployment settings into the instance database

Re-deploying over an existing instance removes it; without --force the
operator is asked to confirm first. An unattended run must pass --force
or it will block on that prompt.

Example:
  modoboa-installer install
  modoboa-installer install --force
  modoboa-installer install --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return runInstall(ctx, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "replace an existing instance without confirmation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "resolve and display the install plan without changing anything")

	return cmd
}

func runInstall(ctx context.Context, opts *InstallOptions) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	backend, err := database.New(cfg.Database.Engine, database.Params{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		AdminUser:     cfg.Database.AdminUser,
		AdminPassword: cfg.Database.AdminPassword,
	})
	if err != nil {
		return err
	}

	m := installer.New(cfg, backend, opts.Force)

	plan, err := m.Plan()
	if err != nil {
		return err
	}

	if opts.DryRun {
		return displayPlan(cfg, m, plan)
	}

	Info("Installing Modoboa %s on %s", cfg.Modoboa.Version, cfg.General.Hostname)
	Debug("Final extensions: %v", plan.Final)

	// The steps below mirror installer.PostRun, interleaved with
	// progress output. Keep the order in step with it.

	if err := m.SetupDatabase(ctx); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " Installing Python packages..."
	sp.Start()
	err = m.Provision(ctx)
	sp.Stop()
	if err != nil {
		return err
	}
	Success("Virtualenv ready at %s", cfg.Modoboa.VenvPath)

	deployed, err := m.Deploy(ctx)
	if err != nil {
		return err
	}
	if !deployed {
		Warn("Deployment cancelled by operator, settings left untouched")
		return nil
	}
	Success("Instance deployed at %s", cfg.Modoboa.InstancePath)

	sp.Suffix = " Applying settings..."
	sp.Start()
	err = m.ApplySettings(ctx)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("settings injection failed: %w", err)
	}
	Success("Settings applied")
	Warn("A fresh secret key was generated; sessions opened against a previous deployment are no longer valid")

	if err := m.WriteConfigFiles(); err != nil {
		return err
	}
	Success("Config files written")

	return nil
}

// displayPlan prints what an install run would do, without doing it.
func displayPlan(cfg *config.Config, m *installer.Modoboa, plan *resolve.Plan) error {
	fmt.Fprintln(colorOutput)
	Info("Dry run, nothing will be changed")
	fmt.Fprintf(colorOutput, "  Version:    %s\n", plan.AppVersion)
	fmt.Fprintf(colorOutput, "  Hostname:   %s\n", cfg.General.Hostname)
	fmt.Fprintf(colorOutput, "  Engine:     %s\n", cfg.Database.Engine)
	fmt.Fprintf(colorOutput, "  Extensions: %v\n", plan.Final)
	fmt.Fprintln(colorOutput)

	tw := NewTableWriter(colorOutput, "PACKAGE", "REQUIREMENT")
	for _, spec := range plan.Packages {
		tw.AddRow(spec.Name, spec.String())
	}
	if err := tw.Write(); err != nil {
		return err
	}

	fmt.Fprintln(colorOutput)
	fmt.Fprintf(colorOutput, "System packages: %v\n", m.SystemPackages())
	return nil
}
