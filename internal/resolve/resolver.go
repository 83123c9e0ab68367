// Package resolve turns a requested Modoboa version and extension list
// into the concrete set of Python packages to install.
package resolve

import (
	"github.com/pkg/errors"

	"github.com/modoboa/installer/internal/compat"
)

// Engine identifies the database backend the instance will use.
type Engine string

const (
	EnginePostgres Engine = "postgres"
	EngineMySQL    Engine = "mysql"
)

// Format identifies the system package format of the host distribution.
type Format string

const (
	FormatDeb Format = "deb"
	FormatRpm Format = "rpm"
)

// Runtime describes the Python interpreter the virtualenv will run on.
// Legacy 2.x interpreters older than 2.7.9 lack SNI support and need an
// extra TLS shim.
type Runtime struct {
	Major int
	Micro int
}

func (r Runtime) needsTLSFix() bool {
	return r.Major == 2 && r.Micro < 9
}

// ErrUnknownEngine is returned when the configured database engine
// matches no supported driver.
var ErrUnknownEngine = errors.New("unknown database engine")

// PackageSpec is one entry of the pip install list. Exactly one of Pin
// and Constraint is set for versioned entries; both empty means the
// index picks the version.
type PackageSpec struct {
	Name       string
	Pin        string
	Constraint *compat.Constraint
}

// String renders the spec in pip requirement syntax. Shell quoting is
// the caller's business.
func (s PackageSpec) String() string {
	switch {
	case s.Pin != "":
		return s.Name + "==" + s.Pin
	case s.Constraint != nil:
		return s.Name + s.Constraint.String()
	default:
		return s.Name
	}
}

// Plan is the resolved install plan for one installer run.
type Plan struct {
	AppVersion string
	Requested  []string
	Final      []string
	Packages   []PackageSpec
}

// StripAmavis drops the amavis extension from a requested extension list
// when the amavis service is administratively disabled. It never mutates
// its input. Callers must apply it before Resolve.
func StripAmavis(extensions []string, amavisEnabled bool) []string {
	if amavisEnabled {
		return append([]string(nil), extensions...)
	}
	kept := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if ext == "modoboa-amavis" {
			continue
		}
		kept = append(kept, ext)
	}
	return kept
}

// Resolve computes the package list for the requested version and
// extensions. Extensions too new for the requested release are silently
// dropped rather than failing the run. The returned plan always ends
// with exactly one database driver, plus a TLS shim on legacy runtimes.
func Resolve(appVersion string, extensions []string, engine Engine, rt Runtime) (*Plan, error) {
	plan := &Plan{
		AppVersion: appVersion,
		Requested:  append([]string(nil), extensions...),
	}

	if appVersion == "latest" {
		plan.Final = append([]string(nil), extensions...)
		plan.Packages = append(plan.Packages, PackageSpec{Name: "modoboa"})
		for _, ext := range extensions {
			plan.Packages = append(plan.Packages, PackageSpec{Name: ext})
		}
	} else {
		constraints := compat.ConstraintsFor(appVersion)
		plan.Packages = append(plan.Packages, PackageSpec{Name: "modoboa", Pin: appVersion})
		for _, ext := range extensions {
			ok, err := compat.ExtensionOKForVersion(ext, appVersion)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			plan.Final = append(plan.Final, ext)
			if c, found := constraints[ext]; found {
				c := c
				plan.Packages = append(plan.Packages, PackageSpec{Name: ext, Constraint: &c})
			} else {
				plan.Packages = append(plan.Packages, PackageSpec{Name: ext})
			}
		}
	}

	driver, err := driverPackage(engine)
	if err != nil {
		return nil, err
	}
	plan.Packages = append(plan.Packages, PackageSpec{Name: driver})

	if rt.needsTLSFix() {
		plan.Packages = append(plan.Packages, PackageSpec{Name: "pyOpenSSL"})
	}
	return plan, nil
}

func driverPackage(engine Engine) (string, error) {
	switch engine {
	case EnginePostgres:
		return "psycopg2", nil
	case EngineMySQL:
		return "mysqlclient", nil
	default:
		return "", errors.Wrapf(ErrUnknownEngine, "%q", engine)
	}
}
