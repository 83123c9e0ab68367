package system

import (
	"os"
	"os/user"
	"strconv"

	"github.com/pkg/errors"
)

// MkdirOwned creates a directory owned by the named system user with
// the given mode. An already existing directory is reused, not an
// error; ownership and mode are enforced either way.
func MkdirOwned(path string, mode os.FileMode, owner string) error {
	if err := os.MkdirAll(path, mode); err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	// MkdirAll masks the mode with umask, set it explicitly.
	if err := os.Chmod(path, mode); err != nil {
		return errors.Wrapf(err, "failed to chmod %s", path)
	}
	uid, gid, err := LookupUser(owner)
	if err != nil {
		return err
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return errors.Wrapf(err, "failed to chown %s to %s", path, owner)
	}
	return nil
}

// LookupUser resolves a system user name to its numeric uid and gid.
func LookupUser(name string) (uid, gid int, err error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "unknown system user %q", name)
	}
	uid, err = strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "non-numeric uid for %q", name)
	}
	gid, err = strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "non-numeric gid for %q", name)
	}
	return uid, gid, nil
}

// FirstExisting returns the first of the candidate paths that exists on
// the filesystem.
func FirstExisting(paths ...string) (string, bool) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
