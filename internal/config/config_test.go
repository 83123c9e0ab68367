package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `[general]
hostname = mail.example.com

[database]
engine = postgres
host = db.example.com
admin_user = postgres
admin_password = adminpw

[modoboa]
venv_path = /srv/modoboa/env
instance_path = /srv/modoboa/instance
version = 1.9.0
extensions = modoboa-amavis modoboa-webmail
devmode = true
dbpassword = secret

[amavis]
enabled = true
dbpassword = amavispw
`

func loadSample(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "installer.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	require.NoError(t, v.ReadInConfig())
	return Load(v)
}

func TestLoad(t *testing.T) {
	cfg, err := loadSample(t, sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", cfg.General.Hostname)
	assert.Equal(t, "postgres", cfg.Database.Engine)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "1.9.0", cfg.Modoboa.Version)
	assert.Equal(t, []string{"modoboa-amavis", "modoboa-webmail"}, cfg.Modoboa.Extensions)
	assert.True(t, cfg.Modoboa.DevMode)
	assert.True(t, cfg.Amavis.Enabled)
	assert.Equal(t, "amavis", cfg.Amavis.DBUser)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadSample(t, "[general]\nhostname = mail.example.com\n")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Engine)
	assert.Equal(t, "latest", cfg.Modoboa.Version)
	assert.Equal(t, "/srv/modoboa", cfg.Modoboa.HomeDir)
	// Derived paths fall back under the home directory.
	assert.Equal(t, "/srv/modoboa/env", cfg.Modoboa.VenvPath)
	assert.Equal(t, "/srv/modoboa/instance", cfg.Modoboa.InstancePath)
	assert.Empty(t, cfg.Modoboa.Extensions)
}

func TestLoadDefaultPortFollowsEngine(t *testing.T) {
	cfg, err := loadSample(t, "[general]\nhostname = x\n\n[database]\nengine = mysql\n")
	require.NoError(t, err)
	assert.Equal(t, 3306, cfg.Database.Port)

	cfg, err = loadSample(t, "[general]\nhostname = x\n")
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)

	// An explicit port always wins.
	cfg, err = loadSample(t, "[general]\nhostname = x\n\n[database]\nengine = mysql\nport = 13306\n")
	require.NoError(t, err)
	assert.Equal(t, 13306, cfg.Database.Port)
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	_, err := loadSample(t, "[general]\nhostname = x\n\n[database]\nengine = oracle\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database engine")
}

func TestLoadRequiresHostname(t *testing.T) {
	_, err := loadSample(t, "[database]\nengine = mysql\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hostname")
}
