package ipc

import (
	"fmt"
	"io"
	"net"
	"time"
)

// Send delivers one request to the shell at socketPath and returns its reply
func Send(socketPath string, req Request, timeout time.Duration) (Reply, error) {
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to connect to tokie socket: %w", err)
	}
	defer conn.Close()

	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
	}

	if _, err := io.WriteString(conn, req.String()+"\n"); err != nil {
		return Reply{}, fmt.Errorf("failed to send message: %w", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to read reply: %w", err)
	}
	return ParseReply(string(data))
}
