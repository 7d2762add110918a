package wm

import (
	"context"
	"testing"

	"github.com/joshuarubin/go-sway"
	"github.com/stretchr/testify/assert"
)

func TestFocusCommand(t *testing.T) {
	assert.Equal(t, `[app_id="com.github.chess10kp.tokie"] focus`, FocusCommand("com.github.chess10kp.tokie"))
	assert.Equal(t, `[app_id="a\"b"] focus`, FocusCommand(`a"b`))
}

func TestFocusDisabledIsNoop(t *testing.T) {
	f := NewFocuser("com.github.chess10kp.tokie", false)
	assert.NoError(t, f.Focus(context.Background()))
}

func TestFocusOutsideSway(t *testing.T) {
	t.Setenv("SWAYSOCK", "")
	f := NewFocuser("com.github.chess10kp.tokie", true)
	assert.ErrorIs(t, f.Focus(context.Background()), ErrNotSway)
}

func TestReplyError(t *testing.T) {
	assert.NoError(t, replyError([]sway.RunCommandReply{{Success: true}}))
	assert.EqualError(t,
		replyError([]sway.RunCommandReply{{Success: true}, {Success: false, Error: "No matching node"}}),
		"sway: No matching node")
}
