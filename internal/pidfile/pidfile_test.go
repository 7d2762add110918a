package pidfile

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPID(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(string(data))
	require.NoError(t, err)
	return pid
}

func TestClaimWritesCurrentPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokie.pid")

	require.NoError(t, Claim(path, time.Second))
	assert.Equal(t, os.Getpid(), readPID(t, path))

	// Claiming again from the same process is a no-op replacement
	require.NoError(t, Claim(path, time.Second))
	assert.Equal(t, os.Getpid(), readPID(t, path))
}

func TestClaimIgnoresStaleRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokie.pid")

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(cmd.Process.Pid)), 0644))

	require.NoError(t, Claim(path, time.Second))
	assert.Equal(t, os.Getpid(), readPID(t, path))
}

func TestClaimWaitsForPreviousInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokie.pid")

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(cmd.Process.Pid)), 0644))

	require.NoError(t, Claim(path, 2*time.Second))

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("previous instance still running after Claim")
	}
	assert.Equal(t, os.Getpid(), readPID(t, path))
}

func TestReleaseLeavesOtherInstanceRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokie.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid()+1)), 0644))

	require.NoError(t, Release(path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestReleaseRemovesOwnRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokie.pid")
	require.NoError(t, Claim(path, time.Second))

	require.NoError(t, Release(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
