package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
)

const (
	// Delim separates the ASCII decimal length from the payload bytes.
	Delim = ':'

	// readChunkSize bounds how much is pulled off the socket per read while
	// assembling a frame.
	readChunkSize = 100
)

var (
	ErrMalformedFrame    = errors.New("frame: malformed length field")
	ErrIncompleteMessage = errors.New("frame: connection closed mid-frame")
)

// Conn frames discrete messages over a stream connection. Bytes already
// pulled off the socket but not yet handed out accumulate in rbuf; bytes
// consumed from the front are never re-read. A Conn is owned by a single
// goroutine and is not safe for concurrent use.
type Conn struct {
	conn net.Conn
	rbuf []byte
}

func New(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Send writes one frame: the payload length in ASCII decimal, the
// delimiter, then the payload. Partial writes are retried until the whole
// frame is flushed. The empty payload is legal and travels as "0:".
func (c *Conn) Send(payload []byte) error {
	msg := strconv.AppendInt(nil, int64(len(payload)), 10)
	msg = append(msg, Delim)
	msg = append(msg, payload...)
	for len(msg) > 0 {
		n, err := c.conn.Write(msg)
		if err != nil {
			return fmt.Errorf("frame send: %w", err)
		}
		msg = msg[n:]
	}
	return nil
}

// Receive blocks until one whole frame has been assembled and returns its
// payload. Frame boundaries are independent of how the bytes arrived off
// the socket. A clean peer close between frames yields io.EOF; a close
// that strands a partially assembled frame yields ErrIncompleteMessage and
// the partial bytes are lost.
func (c *Conn) Receive() ([]byte, error) {
	msgLen := -1
	for {
		if msgLen < 0 {
			if i := bytes.IndexByte(c.rbuf, Delim); i >= 0 {
				n, err := strconv.Atoi(string(c.rbuf[:i]))
				if err != nil || n < 0 {
					return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, c.rbuf[:i])
				}
				c.rbuf = c.rbuf[i+1:]
				msgLen = n
			}
		}
		if msgLen >= 0 && len(c.rbuf) >= msgLen {
			payload := make([]byte, msgLen)
			copy(payload, c.rbuf)
			c.rbuf = c.rbuf[msgLen:]
			return payload, nil
		}

		chunk := make([]byte, readChunkSize)
		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.rbuf = append(c.rbuf, chunk[:n]...)
			continue
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			if msgLen < 0 && len(c.rbuf) == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: wanted %d bytes, %d buffered", ErrIncompleteMessage, msgLen, len(c.rbuf))
		}
		return nil, fmt.Errorf("frame receive: %w", err)
	}
}

// CloseWrite half-closes the write side so the peer observes EOF after the
// last frame while the read side stays open for the acknowledgement.
func (c *Conn) CloseWrite() error {
	type closeWriter interface {
		CloseWrite() error
	}
	if cw, ok := c.conn.(closeWriter); ok {
		return cw.CloseWrite()
	}
	return nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
