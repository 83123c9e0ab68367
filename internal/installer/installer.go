// Package installer drives one full Modoboa installation run: resolve
// the package plan, provision the virtualenv, deploy the instance and
// inject its settings, strictly in that order.
package installer

import (
	"context"
	"regexp"
	"strconv"

	"github.com/modoboa/installer/internal/config"
	"github.com/modoboa/installer/internal/database"
	"github.com/modoboa/installer/internal/deploy"
	"github.com/modoboa/installer/internal/resolve"
	"github.com/modoboa/installer/internal/scaffold"
	"github.com/modoboa/installer/internal/settings"
	"github.com/modoboa/installer/internal/system"
	"github.com/modoboa/installer/internal/venv"
)

// Modoboa owns the collaborators of one installation run.
type Modoboa struct {
	cfg     *config.Config
	backend database.Backend
	runner  system.Runner

	provisioner  *venv.Provisioner
	orchestrator *deploy.Orchestrator
	injector     *settings.Injector
	scaffolder   *scaffold.Scaffolder

	runtime resolve.Runtime
	format  resolve.Format

	// amavisEnabled is true when the extension is requested and its
	// backing service is not administratively disabled.
	amavisEnabled bool
	extensions    []string
	plan          *resolve.Plan
}

// New wires an installation run from its configuration. force controls
// the destructive-redeploy confirmation.
func New(cfg *config.Config, backend database.Backend, force bool) *Modoboa {
	runner := system.NewRunner(
		system.WithSudoUser(cfg.Modoboa.User),
		system.WithDir(cfg.Modoboa.HomeDir),
	)

	extensions := resolve.StripAmavis(cfg.Modoboa.Extensions, cfg.Amavis.Enabled)
	amavisEnabled := cfg.Amavis.Enabled && contains(extensions, "modoboa-amavis")

	format := DetectFormat()
	sudoUser := cfg.Modoboa.User
	if format == resolve.FormatRpm {
		sudoUser = "uwsgi"
	}
	radicalePrefix := "#"
	if contains(extensions, "modoboa-radicale") {
		radicalePrefix = ""
	}
	scaffolder := scaffold.NewScaffolder("/etc", scaffold.Context{
		User:           cfg.Modoboa.User,
		VenvPath:       cfg.Modoboa.VenvPath,
		InstancePath:   cfg.Modoboa.InstancePath,
		SudoUser:       sudoUser,
		RadicalePrefix: radicalePrefix,
	})

	return &Modoboa{
		cfg:           cfg,
		backend:       backend,
		runner:        runner,
		provisioner:   venv.NewProvisioner(cfg.Modoboa.VenvPath, runner),
		orchestrator:  deploy.NewOrchestrator(cfg.Modoboa.VenvPath, cfg.Modoboa.HomeDir, force, runner),
		injector:      settings.NewInjector(backend, cfg.Modoboa.User, cfg.Modoboa.HomeDir, cfg.Modoboa.InstancePath),
		scaffolder:    scaffolder,
		runtime:       DetectRuntime(context.Background(), system.NewRunner()),
		format:        format,
		amavisEnabled: amavisEnabled,
		extensions:    extensions,
	}
}

// Plan resolves the package plan for this run. The plan is computed
// once and reused by the later steps.
func (m *Modoboa) Plan() (*resolve.Plan, error) {
	if m.plan != nil {
		return m.plan, nil
	}
	plan, err := resolve.Resolve(
		m.cfg.Modoboa.Version,
		m.extensions,
		resolve.Engine(m.cfg.Database.Engine),
		m.runtime,
	)
	if err != nil {
		return nil, err
	}
	m.plan = plan
	return plan, nil
}

// SetupDatabase performs the database grants: the instance's own
// database first, then amavis when that feature is active.
func (m *Modoboa) SetupDatabase(ctx context.Context) error {
	if err := m.backend.GrantAccess(ctx, m.cfg.Modoboa.DBName, m.cfg.Modoboa.DBUser); err != nil {
		return err
	}
	if !m.amavisEnabled {
		return nil
	}
	return m.backend.GrantAccess(ctx, m.cfg.Amavis.DBName, m.cfg.Modoboa.DBUser)
}

// Provision creates the virtualenv and installs the resolved packages.
func (m *Modoboa) Provision(ctx context.Context) error {
	plan, err := m.Plan()
	if err != nil {
		return err
	}
	return m.provisioner.Provision(ctx, plan, m.cfg.Modoboa.DevMode)
}

// Deploy materializes the instance. It returns false when the operator
// declined to replace an existing instance.
func (m *Modoboa) Deploy(ctx context.Context) (bool, error) {
	plan, err := m.Plan()
	if err != nil {
		return false, err
	}
	return m.orchestrator.Deploy(ctx, m.deployRequest(plan))
}

// ApplySettings injects the post-deployment settings into the instance
// database.
func (m *Modoboa) ApplySettings(ctx context.Context) error {
	return m.injector.Apply(ctx,
		m.cfg.Modoboa.DBName, m.cfg.Modoboa.DBUser, m.cfg.Modoboa.DBPassword)
}

// WriteConfigFiles renders the host-level cron and sudoers files.
func (m *Modoboa) WriteConfigFiles() error {
	return m.scaffolder.WriteConfigFiles()
}

// PostRun is the post-provisioning hook: virtualenv, deployment,
// settings, config files. The first failure unwinds the whole run.
// When the operator declines to overwrite an existing instance, the
// whole post-deployment phase is skipped and the run ends cleanly.
//
// PostRun is the headless entry point. The install command runs the
// same steps one by one so it can report progress in between; its
// sequence must match this one.
func (m *Modoboa) PostRun(ctx context.Context) error {
	if err := m.Provision(ctx); err != nil {
		return err
	}
	deployed, err := m.Deploy(ctx)
	if err != nil {
		return err
	}
	if !deployed {
		return nil
	}
	if err := m.ApplySettings(ctx); err != nil {
		return err
	}
	return m.WriteConfigFiles()
}

// SystemPackages lists the system packages this run needs.
func (m *Modoboa) SystemPackages() []string {
	return resolve.SystemPackages(m.format, m.runtime)
}

func (m *Modoboa) deployRequest(plan *resolve.Plan) deploy.Request {
	req := deploy.Request{
		InstancePath: m.cfg.Modoboa.InstancePath,
		Timezone:     m.cfg.Modoboa.Timezone,
		Hostname:     m.cfg.General.Hostname,
		Extensions:   plan.Final,
		DevMode:      m.cfg.Modoboa.DevMode,
		DefaultDB: deploy.DatabaseURL{
			Scheme:   m.cfg.Database.Engine,
			User:     m.cfg.Modoboa.DBUser,
			Password: m.cfg.Modoboa.DBPassword,
			Host:     m.cfg.Database.Host,
			Name:     m.cfg.Modoboa.DBName,
		},
	}
	if m.amavisEnabled {
		req.AmavisDB = &deploy.DatabaseURL{
			Scheme:   m.cfg.Database.Engine,
			User:     m.cfg.Amavis.DBUser,
			Password: m.cfg.Amavis.DBPassword,
			Host:     m.cfg.Database.Host,
			Name:     m.cfg.Amavis.DBName,
		}
	}
	return req
}

func contains(list []string, item string) bool {
	for _, entry := range list {
		if entry == item {
			return true
		}
	}
	return false
}

var pythonVersionRe = regexp.MustCompile(`Python (\d+)\.(\d+)\.(\d+)`)

// DetectRuntime probes the system Python interpreter the virtualenv
// will be built on. Probing failures assume a current interpreter.
func DetectRuntime(ctx context.Context, runner system.Runner) resolve.Runtime {
	out, err := runner.RunWithOutput(ctx, "python3", "--version")
	if err != nil {
		out, err = runner.RunWithOutput(ctx, "python", "--version")
		if err != nil {
			return resolve.Runtime{Major: 3, Micro: 9}
		}
	}
	return ParseRuntime(out)
}

// ParseRuntime extracts the interpreter version from `python --version`
// output.
func ParseRuntime(output string) resolve.Runtime {
	match := pythonVersionRe.FindStringSubmatch(output)
	if match == nil {
		return resolve.Runtime{Major: 3, Micro: 9}
	}
	major, _ := strconv.Atoi(match[1])
	micro, _ := strconv.Atoi(match[3])
	return resolve.Runtime{Major: major, Micro: micro}
}

// DetectFormat reports the host's system package format.
func DetectFormat() resolve.Format {
	if _, found := system.FirstExisting("/etc/debian_version"); found {
		return resolve.FormatDeb
	}
	if _, found := system.FirstExisting("/etc/redhat-release"); found {
		return resolve.FormatRpm
	}
	return resolve.FormatDeb
}
