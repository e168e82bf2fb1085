package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pentagram/internal/testutil"
)

func TestRun_StatementsThenMain(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"main.penta": "'start' say,\ndef main fn 'hello' say end-fn,\n",
	})

	stdout, _, err := execute(t, "", "run", filepath.Join(dir, "main.penta"))
	require.NoError(t, err)
	assert.Equal(t, "start\nhello\n", stdout)
}

func TestRun_RuntimeErrorIsRendered(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"main.penta": "def main fn 1 2 eq assert end-fn,\n",
	})
	path := filepath.Join(dir, "main.penta")

	stdout, stderr, err := execute(t, "", "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error in "+path+":1:20: Assertion failed\n"+
		"def main fn 1 2 eq assert end-fn,\n"+
		"                   ^\n")
}

func TestRun_ResolutionError(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"x.penta": "nope,\n",
	})

	_, stderr, err := execute(t, "", "run", filepath.Join(dir, "x.penta"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, ":1:1: Undefined reference: nope\n")
}

func TestRun_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "run", filepath.Join(t.TempDir(), "absent.penta"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestRun_CallDepthFromConfig(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"pt.cue":     "max_call_depth: 3\n",
		"deep.penta": "def a fn b end-fn, def b fn c end-fn, def c fn d end-fn, def d fn 1 end-fn, a say,\n",
	})

	_, _, err := execute(t, "", "run", filepath.Join(dir, "deep.penta"))
	require.NoError(t, err)

	_, stderr, err := execute(t, "", "--config", filepath.Join(dir, "pt.cue"), "run", filepath.Join(dir, "deep.penta"))
	require.Error(t, err)
	assert.Contains(t, stderr, "Call depth exceeded: d")
}

func TestRun_RequiresOneArgument(t *testing.T) {
	_, _, err := execute(t, "", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
