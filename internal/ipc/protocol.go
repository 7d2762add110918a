package ipc

import (
	"errors"
	"fmt"
	"strings"
)

// Command names understood by the shell
type Command string

const (
	CmdOpen      Command = "open"
	CmdHide      Command = "hide"
	CmdExclusive Command = "exclusive"
	CmdList      Command = "list"
	CmdServices  Command = "services"
	CmdPing      Command = "ping"
	CmdLibrary   Command = "library"
)

var (
	ErrEmptyRequest   = errors.New("empty request")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingService = errors.New("missing service name")
	ErrMalformedReply = errors.New("malformed reply")
)

// Request is one line sent by a client:
//
//	open <service> [url]
//	hide <service>
//	exclusive <service>
//	list | services | ping
//	library [path]
//
// A library path runs to the end of the line and may contain spaces.
type Request struct {
	Command Command
	Service string
	URL     string
	Path    string
}

func (r Request) String() string {
	parts := []string{string(r.Command)}
	if r.Service != "" {
		parts = append(parts, r.Service)
	}
	if r.URL != "" {
		parts = append(parts, r.URL)
	}
	if r.Path != "" {
		parts = append(parts, r.Path)
	}
	return strings.Join(parts, " ")
}

// ParseRequest parses a request line
func ParseRequest(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, ErrEmptyRequest
	}

	req := Request{Command: Command(strings.ToLower(fields[0]))}
	args := fields[1:]

	switch req.Command {
	case CmdOpen:
		if len(args) == 0 {
			return Request{}, fmt.Errorf("%s: %w", req.Command, ErrMissingService)
		}
		if len(args) > 2 {
			return Request{}, fmt.Errorf("%s: too many arguments", req.Command)
		}
		req.Service = args[0]
		if len(args) == 2 {
			req.URL = args[1]
		}
	case CmdHide, CmdExclusive:
		if len(args) != 1 {
			return Request{}, fmt.Errorf("%s: %w", req.Command, ErrMissingService)
		}
		req.Service = args[0]
	case CmdLibrary:
		rest := strings.TrimSpace(line)
		req.Path = strings.TrimSpace(rest[len(fields[0]):])
	case CmdList, CmdServices, CmdPing:
		if len(args) != 0 {
			return Request{}, fmt.Errorf("%s takes no arguments", req.Command)
		}
	default:
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}

	return req, nil
}

// noLabel stands in for the label field of replies not tied to a view
const noLabel = "-"

// Reply is the server's answer. The first line is
//
//	ok|error <label|-> [message]
//
// followed by zero or more detail lines.
type Reply struct {
	OK      bool
	Label   string
	Message string
	Lines   []string
}

func okReply(label, message string, lines ...string) Reply {
	return Reply{OK: true, Label: label, Message: message, Lines: lines}
}

func errorReply(label string, err error) Reply {
	return Reply{OK: false, Label: label, Message: err.Error()}
}

func (r Reply) String() string {
	var b strings.Builder
	if r.OK {
		b.WriteString("ok ")
	} else {
		b.WriteString("error ")
	}
	label := r.Label
	if label == "" {
		label = noLabel
	}
	b.WriteString(label)
	if r.Message != "" {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(r.Message, "\n", " "))
	}
	b.WriteString("\n")
	for _, line := range r.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// ParseReply parses the text written by Reply.String
func ParseReply(text string) (Reply, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	header := strings.SplitN(lines[0], " ", 3)
	if len(header) < 2 {
		return Reply{}, fmt.Errorf("%w: %q", ErrMalformedReply, lines[0])
	}

	var r Reply
	switch header[0] {
	case "ok":
		r.OK = true
	case "error":
	default:
		return Reply{}, fmt.Errorf("%w: status %q", ErrMalformedReply, header[0])
	}

	if header[1] != noLabel {
		r.Label = header[1]
	}
	if len(header) == 3 {
		r.Message = header[2]
	}
	if len(lines) > 1 {
		r.Lines = lines[1:]
	}
	return r, nil
}
