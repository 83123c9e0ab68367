// Package settings writes the post-deployment configuration of a
// Modoboa instance straight into its database.
package settings

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/modoboa/installer/internal/database"
	"github.com/modoboa/installer/internal/system"
)

// mailLogCandidates are probed in order; the first existing one becomes
// the stats log file.
var mailLogCandidates = []string{"/var/log/maillog", "/var/log/mail.log"}

// secretKeyChars is the Django secret key alphabet.
const secretKeyChars = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"

// secretKeyLength matches what django-admin generates.
const secretKeyLength = 50

// Document is the settings blob written into the instance's
// core_localconfig row. Its schema belongs to Modoboa, not to the
// installer.
type Document struct {
	Admin struct {
		HandleMailboxes    bool `json:"handle_mailboxes"`
		AccountAutoRemoval bool `json:"account_auto_removal"`
	} `json:"admin"`
	Core struct {
		SecretKey string `json:"secret_key"`
	} `json:"core"`
	Amavis struct {
		AmPdpMode string `json:"am_pdp_mode"`
	} `json:"modoboa_amavis"`
	Stats struct {
		RRDRootDir string `json:"rrd_rootdir"`
		Logfile    string `json:"logfile,omitempty"`
	} `json:"modoboa_stats"`
	PDFCredentials struct {
		StorageDir string `json:"storage_dir"`
	} `json:"modoboa_pdfcredentials"`
}

// Injector applies post-deployment settings to one instance.
type Injector struct {
	Backend      database.Backend
	User         string
	HomeDir      string
	InstancePath string

	// mkdirOwned and firstExisting are swapped out by tests.
	mkdirOwned    func(path string, mode os.FileMode, owner string) error
	firstExisting func(paths ...string) (string, bool)
}

// NewInjector returns an injector writing through the given backend.
func NewInjector(backend database.Backend, user, homeDir, instancePath string) *Injector {
	return &Injector{
		Backend:       backend,
		User:          user,
		HomeDir:       homeDir,
		InstancePath:  instancePath,
		mkdirOwned:    system.MkdirOwned,
		firstExisting: system.FirstExisting,
	}
}

// Apply prepares the storage directories and overwrites the instance's
// local configuration row with a freshly built settings document.
//
// The secret key is regenerated on every call. Reapplying settings to a
// live instance therefore invalidates every open session; that is the
// documented behavior, not an accident.
func (i *Injector) Apply(ctx context.Context, dbName, dbUser, dbPassword string) error {
	rrdRootDir := filepath.Join(i.HomeDir, "rrdfiles")
	pdfStorageDir := filepath.Join(i.HomeDir, "pdfcredentials")
	webmailMediaDir := filepath.Join(i.InstancePath, "media", "webmail")
	for _, dir := range []string{rrdRootDir, pdfStorageDir, webmailMediaDir} {
		if err := i.mkdirOwned(dir, 0770, i.User); err != nil {
			return err
		}
	}

	doc := Document{}
	doc.Admin.HandleMailboxes = true
	doc.Admin.AccountAutoRemoval = true
	doc.Core.SecretKey = RandomKey(secretKeyLength)
	doc.Amavis.AmPdpMode = "inet"
	doc.Stats.RRDRootDir = rrdRootDir
	doc.PDFCredentials.StorageDir = pdfStorageDir
	if logfile, found := i.firstExisting(mailLogCandidates...); found {
		doc.Stats.Logfile = logfile
	}

	blob, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to serialize settings")
	}

	// Full overwrite of the single configuration row, never a merge.
	return i.Backend.ExecRawQuery(ctx, dbName, dbUser, dbPassword,
		"UPDATE core_localconfig SET _parameters = ?", string(blob))
}

// RandomKey generates a random secret key of n characters.
func RandomKey(n int) string {
	max := big.NewInt(int64(len(secretKeyChars)))
	key := make([]byte, n)
	for i := range key {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is
			// broken, at which point nothing sane can be generated.
			panic(err)
		}
		key[i] = secretKeyChars[idx.Int64()]
	}
	return string(key)
}
