// Package pidfile keeps a single shell instance running per pid file.
package pidfile

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const pollInterval = 50 * time.Millisecond

var ErrStillRunning = errors.New("previous instance did not exit")

// Claim replaces the instance recorded in path, if it is still running, and
// records the current process. The previous instance gets SIGTERM and
// grace to exit, then SIGKILL. Claim only writes path once the previous
// process is gone, so its own cleanup cannot remove the new record.
func Claim(path string, grace time.Duration) error {
	if pid, ok := read(path); ok && pid != os.Getpid() && alive(pid) {
		log.Printf("[PID] Replacing running instance %d", pid)
		if err := stop(pid, grace); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// Release removes path if it still names the current process
func Release(path string) error {
	pid, ok := read(path)
	if !ok || pid != os.Getpid() {
		log.Printf("[PID] %s belongs to another instance, leaving it", path)
		return nil
	}
	return os.Remove(path)
}

func read(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func stop(pid int, grace time.Duration) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}

	process.Signal(syscall.SIGTERM)
	if waitExit(pid, grace) {
		return nil
	}

	log.Printf("[PID] Instance %d ignored SIGTERM, killing it", pid)
	process.Kill()
	if waitExit(pid, grace) {
		return nil
	}
	return fmt.Errorf("%w: pid %d", ErrStillRunning, pid)
}

func waitExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !alive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}
