package venv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modoboa/installer/internal/resolve"
)

// fakeRunner records every invocation instead of executing it.
type fakeRunner struct {
	calls []string
	fail  bool
	out   string
}

func (f *fakeRunner) record(name string, args ...string) (string, error) {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	if f.fail {
		return f.out, assert.AnError
	}
	return f.out, nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	_, err := f.record(name, args...)
	return err
}

func (f *fakeRunner) RunWithOutput(_ context.Context, name string, args ...string) (string, error) {
	return f.record(name, args...)
}

func (f *fakeRunner) RunShell(_ context.Context, script string) (string, error) {
	return f.record("bash", "-c", script)
}

func TestCreateSkipsExistingVirtualenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "activate"), []byte("#"), 0644))

	runner := &fakeRunner{}
	p := NewProvisioner(dir, runner)
	require.NoError(t, p.Create(context.Background()))
	assert.Empty(t, runner.calls)
}

func TestCreateRunsVirtualenv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "venv")
	runner := &fakeRunner{}
	p := NewProvisioner(dir, runner)

	require.NoError(t, p.Create(context.Background()))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "virtualenv "+dir, runner.calls[0])
}

func TestProvisionInstallsPlanAndRRDTool(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "activate"), []byte("#"), 0644))

	runner := &fakeRunner{}
	p := NewProvisioner(dir, runner)

	plan, err := resolve.Resolve("1.9.0", []string{"modoboa-radicale"}, resolve.EnginePostgres, resolve.Runtime{Major: 3, Micro: 10})
	require.NoError(t, err)

	require.NoError(t, p.Provision(context.Background(), plan, false))
	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Contains(t, call, filepath.Join(dir, "bin", "pip")+" install --upgrade")
	assert.Contains(t, call, "modoboa==1.9.0")
	assert.Contains(t, call, "rrdtool")
	assert.NotContains(t, call, "django-debug-toolbar")
}

func TestProvisionDevModeExtras(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "activate"), []byte("#"), 0644))

	runner := &fakeRunner{}
	p := NewProvisioner(dir, runner)

	plan, err := resolve.Resolve("latest", nil, resolve.EnginePostgres, resolve.Runtime{Major: 3, Micro: 10})
	require.NoError(t, err)

	require.NoError(t, p.Provision(context.Background(), plan, true))
	require.Len(t, runner.calls, 2)
	assert.Contains(t, runner.calls[1], "django-bower")
	assert.Contains(t, runner.calls[1], "django-debug-toolbar")
}

func TestInstallFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{fail: true, out: "pip blew up"}
	p := NewProvisioner(t.TempDir(), runner)

	err := p.Install(context.Background(), []resolve.PackageSpec{{Name: "modoboa"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pip blew up")
}
