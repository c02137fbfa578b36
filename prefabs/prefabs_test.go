package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func useEmbedded(t *testing.T) {
	t.Helper()
	prev := Dir()
	SetDir("")
	t.Cleanup(func() { SetDir(prev) })
}

func TestLoadEmbeddedScene(t *testing.T) {
	useEmbedded(t)

	scene, err := LoadSceneSpec("scene.yaml")
	require.NoError(t, err)
	assert.Equal(t, "crossing", scene.Name)
	assert.Positive(t, scene.Width)
	assert.NotEmpty(t, scene.Entities)

	// the prefabs/ prefix is accepted too
	again, err := LoadSceneSpec("prefabs/scene.yaml")
	require.NoError(t, err)
	assert.Equal(t, scene, again)
}

func TestLoadMissing(t *testing.T) {
	useEmbedded(t)

	_, err := Load("nope.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = Load("")
	require.Error(t, err)
}

func TestDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	prev := Dir()
	SetDir(dir)
	t.Cleanup(func() { SetDir(prev) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "target.yaml"), []byte("name: override\n"), 0o644))
	spec, err := LoadEntityBuildSpec("target.yaml")
	require.NoError(t, err)
	assert.Equal(t, "override", spec.Name)

	// not on disk, falls back to the embedded copy
	spec, err = LoadEntityBuildSpec("hazard.yaml")
	require.NoError(t, err)
	assert.Equal(t, "hazard", spec.Name)
}

func TestLoadSceneRejectsEmptySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: flat\nwidth: 100\nheight: 0\n"), 0o644))

	_, err := LoadSceneSpec(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestResolveMergesPrefab(t *testing.T) {
	useEmbedded(t)

	es := EntitySpec{
		Name:   "fast",
		Prefab: "agent.yaml",
		X:      10,
		Y:      20,
		Components: map[string]any{
			"steering": map[string]any{"move_speed": 300},
			"target":   map[string]any{"weight": 0.5},
		},
	}
	spec, err := es.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "fast", spec.Name)
	assert.Equal(t, "fast", spec.Components["name"])

	st, err := DecodeComponentSpec[SteeringComponentSpec](spec.Components["steering"])
	require.NoError(t, err)
	assert.Equal(t, 300.0, st.MoveSpeed)
	assert.Equal(t, 16, st.Resolution, "untouched prefab keys survive")
	assert.InDelta(t, 0.45, st.Sigma, 1e-6)

	tr, err := DecodeComponentSpec[TransformComponentSpec](spec.Components["transform"])
	require.NoError(t, err)
	assert.Equal(t, TransformComponentSpec{X: 10, Y: 20}, tr)

	tg, err := DecodeComponentSpec[TargetComponentSpec](spec.Components["target"])
	require.NoError(t, err)
	require.NotNil(t, tg.Weight)
	assert.Equal(t, 0.5, *tg.Weight)
}

func TestResolveUnknownPrefab(t *testing.T) {
	useEmbedded(t)

	_, err := EntitySpec{Prefab: "ghost.yaml"}.Resolve()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeComponentSpecNil(t *testing.T) {
	spec, err := DecodeComponentSpec[HazardComponentSpec](nil)
	require.NoError(t, err)
	assert.Nil(t, spec.Weight)
	assert.Zero(t, spec.Radius)
}

func TestLoadScript(t *testing.T) {
	useEmbedded(t)

	for _, name := range []string{"wander", "wander.tengo", "scripts/wander.tengo", "prefabs/scripts/wander.tengo"} {
		src, err := LoadScript(name)
		require.NoError(t, err, name)
		assert.Contains(t, string(src), "update := func(engine)")
	}
	_, err := LoadScript("missing")
	require.Error(t, err)
}

func TestWatcherReportsChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scripts"), 0o755))

	w, err := NewWatcher(10*time.Millisecond, dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: a\n"), 0o644))

	select {
	case ch := <-w.Events:
		assert.Equal(t, SpecChange, ch.Kind)
		assert.Equal(t, "a.yaml", filepath.Base(ch.Path))
	case <-time.After(2 * time.Second):
		t.Fatal("no spec change reported")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "b.tengo"), []byte("x := 1"), 0o644))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ch := <-w.Events:
			if ch.Kind != ScriptChange {
				continue
			}
			assert.Equal(t, "b.tengo", filepath.Base(ch.Path))
			require.NoError(t, w.Close())
			require.NoError(t, w.Close())
			return
		case <-deadline:
			t.Fatal("no script change reported")
		}
	}
}
