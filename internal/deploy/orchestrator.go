// Package deploy drives the external modoboa-admin.py scaffolding tool
// that materializes an application instance on disk.
package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"

	"github.com/modoboa/installer/internal/system"
)

// DatabaseURL describes one database connection handed to the
// scaffolding tool.
type DatabaseURL struct {
	Scheme   string
	User     string
	Password string
	Host     string
	Name     string
}

func (u DatabaseURL) String() string {
	return fmt.Sprintf("%s://%s:%s@%s/%s", u.Scheme, u.User, u.Password, u.Host, u.Name)
}

// Request carries everything one deployment invocation needs.
type Request struct {
	InstancePath string
	Timezone     string
	Hostname     string
	Extensions   []string
	DevMode      bool
	DefaultDB    DatabaseURL
	// AmavisDB is set only when the amavis sub-feature is active.
	AmavisDB *DatabaseURL
}

// DeploymentError is returned when the scaffolding tool exits non-zero.
// Output holds the tool's combined stdout and stderr so the operator
// can diagnose without re-running.
type DeploymentError struct {
	Output string
	Err    error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment failed: %v\n%s", e.Err, e.Output)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// Prompter asks the operator a free-form question. Tests inject
// canned answers.
type Prompter interface {
	Ask(message string) (string, error)
}

// surveyPrompter is the interactive default.
type surveyPrompter struct{}

func (surveyPrompter) Ask(message string) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Orchestrator deploys an instance into the owning user's home
// directory, replacing a previous deployment only with the operator's
// consent unless Force is set.
type Orchestrator struct {
	VenvPath string
	HomeDir  string
	Force    bool

	runner   system.Runner
	prompter Prompter
}

// NewOrchestrator builds an orchestrator. The runner is expected to
// already be demoted to the owning user.
func NewOrchestrator(venvPath, homeDir string, force bool, runner system.Runner) *Orchestrator {
	return &Orchestrator{
		VenvPath: venvPath,
		HomeDir:  homeDir,
		Force:    force,
		runner:   runner,
		prompter: surveyPrompter{},
	}
}

// SetPrompter replaces the interactive prompter.
func (o *Orchestrator) SetPrompter(p Prompter) {
	o.prompter = p
}

// Deploy materializes the instance described by req. It returns false
// when the operator declined to overwrite an existing instance; the
// caller must then skip the whole post-deployment phase, settings
// injection included.
func (o *Orchestrator) Deploy(ctx context.Context, req Request) (bool, error) {
	if _, err := os.Stat(req.InstancePath); err == nil {
		if !o.Force {
			answer, err := o.prompter.Ask(fmt.Sprintf(
				"Target directory for Modoboa deployment (%s) already exists. "+
					"If you choose to continue, it will be removed. Do you confirm? (Y/n)",
				req.InstancePath))
			if err != nil {
				return false, err
			}
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "n") {
				return false, nil
			}
		}
		if err := os.RemoveAll(req.InstancePath); err != nil {
			return false, errors.Wrapf(err, "failed to remove %s", req.InstancePath)
		}
	}

	script := fmt.Sprintf(". %s; modoboa-admin.py deploy %s %s",
		filepath.Join(o.VenvPath, "bin", "activate"),
		req.InstancePath,
		strings.Join(o.arguments(req), " "))
	output, err := o.runner.RunShell(ctx, script)
	if err != nil {
		return false, &DeploymentError{Output: output, Err: err}
	}
	return true, nil
}

// arguments builds the scaffolding tool's argument list. Extensions are
// never installed by the tool itself, the provisioner already put them
// in the virtualenv.
func (o *Orchestrator) arguments(req Request) []string {
	args := []string{
		"--collectstatic",
		"--timezone", req.Timezone,
		"--domain", req.Hostname,
		"--extensions", fmt.Sprintf("%q", strings.Join(req.Extensions, " ")),
		"--dont-install-extensions",
		"--dburl", fmt.Sprintf("'default:%s'", req.DefaultDB),
	}
	if req.DevMode {
		args = append([]string{"--devel"}, args...)
	}
	if req.AmavisDB != nil {
		args = append(args, fmt.Sprintf("'amavis:%s'", req.AmavisDB))
	}
	return args
}
