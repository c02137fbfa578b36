package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/steering/ecs/entity"
	"github.com/milk9111/steering/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRunDumpsSnapshot(t *testing.T) {
	t.Chdir(t.TempDir())

	out, logs, err := execute(t, "run", "--ticks", "5", "--dump", "-", "--log-format", "json")
	require.NoError(t, err)

	var snap entity.Snapshot
	require.NoError(t, yaml.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "crossing", snap.Scene)
	assert.Equal(t, uint64(5), snap.Frame)
	require.Len(t, snap.Agents, 4)
	assert.Len(t, snap.Agents[0].Gradient, 16)
	assert.Contains(t, logs, `"msg":"run complete"`)
}

func TestRunWritesDumpFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "out.yaml")

	_, _, err := execute(t, "run", "-n", "2", "--dump", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "frame: 2")
}

func TestRunUsesConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "steering.yaml"), []byte("sim:\n  ticks: 3\n  dump: \"-\"\n"), 0o644))

	out, _, err := execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "frame: 3")

	t.Setenv("STEERING_SIM_TICKS", "4")
	out, _, err = execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "frame: 4")

	// flags win over env
	out, _, err = execute(t, "run", "--ticks", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "frame: 1")
}

func TestRunDiskPrefabOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "prefabs"), 0o755))
	scene := "name: tiny\nwidth: 100\nheight: 100\nentities:\n  - name: solo\n    prefab: agent.yaml\n    x: 50\n    y: 50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefabs", "scene.yaml"), []byte(scene), 0o644))

	out, _, err := execute(t, "run", "-n", "1", "--dump", "-")
	require.NoError(t, err)

	var snap entity.Snapshot
	require.NoError(t, yaml.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "tiny", snap.Scene)
	require.Len(t, snap.Agents, 1)
	assert.Equal(t, "solo", snap.Agents[0].Name)
}

func TestRunErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "run", "--scene", "missing.yaml")
	require.Error(t, err)

	_, _, err = execute(t, "run", "--dt", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sim.dt")

	_, _, err = execute(t, "run", "--config", "nope.yaml")
	require.Error(t, err)
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Chdir(t.TempDir())
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "-n", "10"})
	err := root.ExecuteContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
