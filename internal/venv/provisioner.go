// Package venv provisions the dedicated Python virtualenv a Modoboa
// instance runs in and installs the resolved package plan into it.
package venv

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/modoboa/installer/internal/resolve"
	"github.com/modoboa/installer/internal/system"
)

// devPackages are extra developer tooling installed in dev mode only.
var devPackages = []string{"django-bower", "django-debug-toolbar"}

// Provisioner creates and fills one virtualenv.
type Provisioner struct {
	Path   string
	runner system.Runner
}

// NewProvisioner returns a provisioner for the virtualenv at path,
// running pip through the given runner.
func NewProvisioner(path string, runner system.Runner) *Provisioner {
	return &Provisioner{Path: path, runner: runner}
}

// Create sets up the virtualenv directory. An existing virtualenv is
// reused as is, so re-running the installer is safe.
func (p *Provisioner) Create(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(p.Path, "bin", "activate")); err == nil {
		return nil
	}
	out, err := p.runner.RunWithOutput(ctx, "virtualenv", p.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to create virtualenv at %s: %s", p.Path, out)
	}
	return nil
}

// Install pip-installs the given package specs into the virtualenv.
// Constraints reach pip as plain arguments, so no shell escaping is
// involved. A failed install aborts the whole run.
func (p *Provisioner) Install(ctx context.Context, specs []resolve.PackageSpec) error {
	args := []string{"install", "--upgrade"}
	for _, spec := range specs {
		args = append(args, spec.String())
	}
	pip := filepath.Join(p.Path, "bin", "pip")
	out, err := p.runner.RunWithOutput(ctx, pip, args...)
	if err != nil {
		return errors.Wrapf(err, "package installation failed: %s", out)
	}
	return nil
}

// Provision creates the virtualenv and installs the plan's packages,
// the rrdtool binding the stats dashboard always needs, and the dev
// tooling when dev mode is on.
func (p *Provisioner) Provision(ctx context.Context, plan *resolve.Plan, devMode bool) error {
	if err := p.Create(ctx); err != nil {
		return err
	}
	specs := append([]resolve.PackageSpec{}, plan.Packages...)
	specs = append(specs, resolve.PackageSpec{Name: "rrdtool"})
	if err := p.Install(ctx, specs); err != nil {
		return err
	}
	if devMode {
		dev := make([]resolve.PackageSpec, 0, len(devPackages))
		for _, name := range devPackages {
			dev = append(dev, resolve.PackageSpec{Name: name})
		}
		return p.Install(ctx, dev)
	}
	return nil
}
