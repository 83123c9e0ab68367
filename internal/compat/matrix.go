package compat

// Constraint restricts the version of an extension package that can be
// installed alongside a given Modoboa release. It is kept structured so
// the pip collaborator decides how to render and quote it.
type Constraint struct {
	Op      string // one of "<", "<=", ">", ">="
	Version string
}

func (c Constraint) String() string {
	return c.Op + c.Version
}

// ExtensionsAvailability maps an extension to the first Modoboa release
// it works with. Extensions missing from this table have no minimum.
var ExtensionsAvailability = map[string]string{
	"modoboa-contacts":       "1.8.1",
	"modoboa-dmarc":          "1.7.0",
	"modoboa-imap-migration": "1.3.3",
	"modoboa-radicale":       "1.6.2",
}

// Matrix records, per Modoboa release, the extension version constraints
// that release requires. Hand maintained, mirrored from upstream release
// notes. Releases missing from this table have no known constraints.
var Matrix = map[string]map[string]Constraint{
	"1.7.5": {
		"modoboa-stats":   {Op: "<=", Version: "1.1.0"},
		"modoboa-webmail": {Op: "<", Version: "1.1.0"},
	},
	"1.8.0": {
		"modoboa-webmail": {Op: "<=", Version: "1.1.2"},
	},
	"1.8.5": {
		"modoboa-sievefilters": {Op: "<=", Version: "1.1.2"},
		"modoboa-webmail":      {Op: "<=", Version: "1.1.6"},
	},
	"1.9.0": {
		"modoboa-amavis": {Op: ">=", Version: "1.2.0"},
	},
}

// ExtensionOKForVersion reports whether an extension is available for
// the given Modoboa release. Extensions without a recorded minimum are
// always available.
func ExtensionOKForVersion(extension, version string) (bool, error) {
	minVersion, found := ExtensionsAvailability[extension]
	if !found {
		return true, nil
	}
	older, err := OlderThan(version, minVersion)
	if err != nil {
		return false, err
	}
	return !older, nil
}

// ConstraintsFor returns the extension constraints recorded for a
// release, or nil when the release is not listed.
func ConstraintsFor(version string) map[string]Constraint {
	return Matrix[version]
}
