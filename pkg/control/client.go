package control

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Client is one connection to a running dashboard.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial connects to the control socket at socketPath.
func Dial(socketPath string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn), timeout: timeout}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends msg and waits for the reply. An empty ID is filled in. An error
// reply is returned as an error.
func (c *Client) Do(msg Message) (Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return Message{}, err
	}
	if c.timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.timeout))
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return Message{}, fmt.Errorf("send: %w", err)
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return Message{}, fmt.Errorf("read reply: %w", err)
	}
	var reply Message
	if err := json.Unmarshal(line, &reply); err != nil {
		return Message{}, fmt.Errorf("decode reply: %w", err)
	}
	if reply.Type == MsgError {
		return reply, errors.New(reply.Error)
	}
	return reply, nil
}

// Ping checks the dashboard is answering.
func (c *Client) Ping() error {
	_, err := c.Do(Message{Type: MsgPing})
	return err
}

// Action requests a named action.
func (c *Client) Action(name string, args ...string) error {
	_, err := c.Do(Message{Type: MsgAction, Name: name, Args: args})
	return err
}

// State fetches a snapshot of the dashboard.
func (c *Client) State() (Snapshot, error) {
	reply, err := c.Do(Message{Type: MsgState})
	if err != nil {
		return Snapshot{}, err
	}
	if reply.Payload == nil {
		return Snapshot{}, errors.New("empty state reply")
	}
	return *reply.Payload, nil
}
