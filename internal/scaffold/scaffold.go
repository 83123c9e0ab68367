// Package scaffold generates the host-level config files a Modoboa
// instance needs, from embedded templates.
package scaffold

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Context carries the values the templates render with.
type Context struct {
	User         string
	VenvPath     string
	InstancePath string
	// SudoUser is the account the web server workers run as; on rpm
	// hosts that is uwsgi, not the application user.
	SudoUser string
	// RadicalePrefix comments calendar cron entries out ("#") when the
	// radicale extension is not installed.
	RadicalePrefix string
}

// Scaffolder renders config files below EtcDir.
type Scaffolder struct {
	EtcDir  string
	context Context
}

// NewScaffolder creates a scaffolder writing under etcDir (normally
// /etc).
func NewScaffolder(etcDir string, context Context) *Scaffolder {
	return &Scaffolder{EtcDir: etcDir, context: context}
}

// configFiles maps each template to its target path below EtcDir.
var configFiles = map[string]string{
	"crontab.tmpl": "cron.d/modoboa",
	"sudoers.tmpl": "sudoers.d/modoboa",
}

// WriteConfigFiles renders every config file. Existing files are
// overwritten, a rerun regenerates them from the current configuration.
func (s *Scaffolder) WriteConfigFiles() error {
	for name, target := range configFiles {
		if err := s.writeOne(name, filepath.Join(s.EtcDir, target)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scaffolder) writeOne(templateName, target string) error {
	tmpl, err := template.ParseFS(templatesFS, "templates/"+templateName)
	if err != nil {
		return errors.Wrapf(err, "failed to parse template %s", templateName)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s.context); err != nil {
		return errors.Wrapf(err, "failed to render %s", templateName)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(target))
	}
	if err := os.WriteFile(target, buf.Bytes(), 0440); err != nil {
		return errors.Wrapf(err, "failed to write %s", target)
	}
	return nil
}
