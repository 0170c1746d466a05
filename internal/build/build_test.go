package build

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/e3spec/internal/fetch"
	"github.com/frederic-klein/e3spec/internal/prompt"
	"github.com/frederic-klein/e3spec/internal/spec"
)

func orderedDoc(modules ...spec.Module) *spec.Document {
	return &spec.Document{
		Config:  spec.Config{Base: "7.0.5", Require: "3.4.1"},
		Modules: modules,
		Meta:    spec.Meta{Ordered: true},
	}
}

func TestMaterialize(t *testing.T) {
	doc := orderedDoc(spec.Module{Name: "asyn", Versions: spec.Versions{"4.32"}})

	plan, err := Materialize(doc, []string{"/epics/base"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/epics/base/base-7.0.5/require/3.4.1/asyn/4.32"}, plan.Paths())
	assert.Empty(t, plan.Warnings)
	assert.Equal(t, []Source{{Module: "asyn", URL: fetch.Placeholder}}, plan.Sources)
}

func TestMaterialize_Unordered(t *testing.T) {
	doc := orderedDoc(spec.Module{Name: "asyn", Versions: spec.Versions{"4.32"}})
	doc.Meta.Ordered = false

	plan, err := Materialize(doc, []string{"/epics/a", "/epics/b"})

	var oe *OrderingError
	require.ErrorAs(t, err, &oe)
	assert.Nil(t, plan)
}

func TestMaterialize_Invalid(t *testing.T) {
	doc := orderedDoc(spec.Module{Name: "asyn", Versions: spec.Versions{"4.32"}})
	doc.Config.Require = ""

	_, err := Materialize(doc, []string{"/epics"})
	assert.ErrorIs(t, err, spec.ErrValidation)
}

func TestMaterialize_SkipsModulesWithoutVersions(t *testing.T) {
	doc := orderedDoc(
		spec.Module{Name: "empty", Versions: spec.Versions{}},
		spec.Module{Name: "asyn", GitURL: "https://example.org/asyn.git", Versions: spec.Versions{"4.32", "4.37.0"}},
		spec.Module{Name: "old", Versions: spec.Versions{spec.Uninstalled}},
	)

	plan, err := Materialize(doc, []string{"/a", "/b"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/a/base-7.0.5/require/3.4.1/asyn/4.32",
		"/a/base-7.0.5/require/3.4.1/asyn/4.37.0",
		"/b/base-7.0.5/require/3.4.1/asyn/4.32",
		"/b/base-7.0.5/require/3.4.1/asyn/4.37.0",
	}, plan.Paths())

	require.Len(t, plan.Warnings, 4)
	assert.Equal(t, Warning{Root: "/a", Module: "empty", Reason: "has no defined versions, skipping"}, plan.Warnings[0])
	assert.Equal(t, "old", plan.Warnings[1].Module)
	assert.Equal(t, "/b", plan.Warnings[2].Root)

	assert.Equal(t, "https://example.org/asyn.git", plan.Sources[1].URL)
	assert.Equal(t, fetch.Placeholder, plan.Sources[2].URL)
}

func TestLinkage(t *testing.T) {
	assert.Equal(t, "EPICS_BASE:=/epics/base-7.0.5\nE3_REQUIRE_VERSION:=3.4.1\n", Linkage("/epics", "7.0.5", "3.4.1"))
	assert.Equal(t, "EPICS_BASE:=/epics/base-7.0.5\nE3_REQUIRE_VERSION:=3.4.1\n", Linkage("/epics/", "7.0.5", "3.4.1"))
}

func TestWriteLinkage(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "sub")
	require.NoError(t, os.Mkdir(dir, 0755))

	require.NoError(t, WriteLinkage(dir, Linkage("/epics", "7.0.5", "3.4.1")))

	data, err := os.ReadFile(filepath.Join(dir, LinkageFileName))
	require.NoError(t, err)
	assert.Equal(t, "EPICS_BASE:=/epics/base-7.0.5\nE3_REQUIRE_VERSION:=3.4.1\n", string(data))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type answer struct {
	ok    bool
	asked int
}

func (a *answer) Confirm(string) (bool, error) {
	a.asked++
	return a.ok, nil
}

func newTestBuilder(p prompt.Confirmer, out io.Writer, cloneDir string) *Builder {
	return NewBuilder(fetch.NewPlaceholderFetcher(), p, log.New(io.Discard), out, Options{
		CloneDir:    cloneDir,
		Clone:       true,
		CreateLocal: true,
	})
}

func TestBuilder_Build(t *testing.T) {
	cloneDir := filepath.Join(t.TempDir(), "modules")
	doc := orderedDoc(
		spec.Module{Name: "asyn", Versions: spec.Versions{"4.32"}},
		spec.Module{Name: "seq", Versions: spec.Versions{}},
	)
	doc.Config.Toolchain = "2.6"

	var out bytes.Buffer
	plan, err := newTestBuilder(prompt.Always{}, &out, cloneDir).Build(context.Background(), doc, []string{"/epics"})
	require.NoError(t, err)
	assert.Len(t, plan.Warnings, 1)

	got := out.String()
	assert.Contains(t, got, "7.0.5")
	assert.Contains(t, got, "2.6")
	assert.Contains(t, got, "/epics/base-7.0.5/require/3.4.1/asyn/4.32\n")

	data, err := os.ReadFile(filepath.Join(cloneDir, LinkageFileName))
	require.NoError(t, err)
	assert.Equal(t, "EPICS_BASE:=/epics/base-7.0.5\nE3_REQUIRE_VERSION:=3.4.1\n", string(data))

	// Placeholder cloning leaves module directories alone.
	_, err = os.Stat(filepath.Join(cloneDir, "asyn"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuilder_Declined(t *testing.T) {
	cloneDir := filepath.Join(t.TempDir(), "modules")
	confirm := &answer{ok: false}

	var out bytes.Buffer
	_, err := newTestBuilder(confirm, &out, cloneDir).Build(context.Background(),
		orderedDoc(spec.Module{Name: "asyn", Versions: spec.Versions{"4.32"}}), []string{"/epics"})

	assert.True(t, errors.Is(err, ErrAborted))
	assert.Equal(t, 1, confirm.asked)
	_, statErr := os.Stat(cloneDir)
	assert.True(t, os.IsNotExist(statErr), "clone dir created after decline")
	assert.False(t, strings.Contains(out.String(), "asyn/4.32"))
}

func TestBuilder_UnorderedNeverPrompts(t *testing.T) {
	confirm := &answer{ok: true}
	doc := orderedDoc(spec.Module{Name: "asyn", Versions: spec.Versions{"4.32"}})
	doc.Meta.Ordered = false

	var out bytes.Buffer
	_, err := newTestBuilder(confirm, &out, t.TempDir()).Build(context.Background(), doc, []string{"/epics"})

	var oe *OrderingError
	require.ErrorAs(t, err, &oe)
	assert.Zero(t, confirm.asked)
	assert.Empty(t, out.String())
}
