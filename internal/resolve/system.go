package resolve

// debPackages and rpmPackages list the build dependencies the Python
// packages need to compile their native extensions.
var (
	debPackages = []string{
		"build-essential", "python-dev", "libxml2-dev", "libxslt-dev",
		"libjpeg-dev", "librrd-dev", "rrdtool", "libffi-dev", "cron",
	}
	rpmPackages = []string{
		"gcc", "gcc-c++", "python-devel", "libxml2-devel", "libxslt-devel",
		"libjpeg-turbo-devel", "rrdtool-devel", "rrdtool", "libffi-devel",
	}
)

// SystemPackages returns the system package list for the host's package
// format. RPM hosts on a legacy interpreter additionally need
// openssl-devel so the TLS shim can build.
func SystemPackages(format Format, rt Runtime) []string {
	var packages []string
	switch format {
	case FormatRpm:
		packages = append(packages, rpmPackages...)
		if rt.needsTLSFix() {
			packages = append(packages, "openssl-devel")
		}
	default:
		packages = append(packages, debPackages...)
	}
	return packages
}
