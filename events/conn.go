package events

import (
	"fmt"
	"time"

	zmq "github.com/pebbe/zmq4"
)

// Conn is a message-oriented connection to the validator's component endpoint.
type Conn interface {
	Send(msg []byte) error
	// Recv waits up to timeout for the next message and returns nil data on timeout.
	Recv(timeout time.Duration) ([]byte, error)
	Close() error
}

type zmqConn struct {
	socket *zmq.Socket
	poller *zmq.Poller
}

// DialZMQ opens a DEALER socket to the validator at url.
func DialZMQ(url string) (Conn, error) {
	socket, err := zmq.NewSocket(zmq.DEALER)
	if err != nil {
		return nil, fmt.Errorf("create socket: %w", err)
	}
	if err := socket.SetLinger(0); err != nil {
		_ = socket.Close()
		return nil, err
	}
	if err := socket.Connect(url); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}

	poller := zmq.NewPoller()
	poller.Add(socket, zmq.POLLIN)
	return &zmqConn{socket: socket, poller: poller}, nil
}

func (c *zmqConn) Send(msg []byte) error {
	_, err := c.socket.SendBytes(msg, 0)
	return err
}

func (c *zmqConn) Recv(timeout time.Duration) ([]byte, error) {
	polled, err := c.poller.Poll(timeout)
	if err != nil {
		return nil, err
	}
	if len(polled) == 0 {
		return nil, nil
	}
	parts, err := c.socket.RecvMessageBytes(0)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}
	// the payload is the last frame; a DEALER may see routing frames first
	return parts[len(parts)-1], nil
}

func (c *zmqConn) Close() error {
	return c.socket.Close()
}
