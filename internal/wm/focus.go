// Package wm brings the shell window forward in the running window manager.
package wm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/joshuarubin/go-sway"
)

var ErrNotSway = errors.New("not running under sway")

// Focuser focuses windows by app_id through sway IPC
type Focuser struct {
	appID   string
	enabled bool
}

func NewFocuser(appID string, enabled bool) *Focuser {
	return &Focuser{appID: appID, enabled: enabled}
}

// FocusCommand returns the sway command that focuses windows with appID
func FocusCommand(appID string) string {
	escaped := strings.ReplaceAll(appID, `"`, `\"`)
	return fmt.Sprintf(`[app_id="%s"] focus`, escaped)
}

// Focus asks sway to focus the shell window. It is a no-op when disabled.
func (f *Focuser) Focus(ctx context.Context) error {
	if !f.enabled || f.appID == "" {
		return nil
	}
	if os.Getenv("SWAYSOCK") == "" {
		return ErrNotSway
	}

	command := FocusCommand(f.appID)

	// Try using go-sway library first
	client, err := sway.New(ctx)
	if err == nil {
		replies, err := client.RunCommand(ctx, command)
		if err == nil {
			return replyError(replies)
		}
		log.Printf("[WM] sway IPC failed, falling back to swaymsg: %v", err)
	}

	// Fallback to swaymsg command
	cmd := exec.CommandContext(ctx, "swaymsg", command)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("swaymsg %q: %w (%s)", command, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func replyError(replies []sway.RunCommandReply) error {
	for _, r := range replies {
		if !r.Success {
			return fmt.Errorf("sway: %s", r.Error)
		}
	}
	return nil
}
