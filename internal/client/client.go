package client

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"arcsend/internal/archive"
	"arcsend/internal/frame"
	"arcsend/pkg/logger"
)

// dataChunkSize is how much of the archive travels in one data frame.
const dataChunkSize = 4096

// Client archives local files and ships the archive to one remote receiver
// per Send call.
type Client struct {
	serverAddr string
}

func New(serverAddr string) *Client {
	return &Client{serverAddr: serverAddr}
}

// Send builds an archive from files in a temporary location, streams it to
// the receiver as one header frame followed by fixed-size data frames,
// half-closes the connection, and blocks for the single acknowledgement
// frame. The temporary archive is removed afterwards. Any failure aborts
// the whole transfer.
func (c *Client) Send(files []string) (string, error) {
	tmp, err := os.CreateTemp("", "archive_*.tar")
	if err != nil {
		return "", fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := archive.Create(tmpPath, files); err != nil {
		return "", err
	}
	info, err := os.Stat(tmpPath)
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}
	logger.Log.Info("archive built", "path", tmpPath, "size", info.Size(), "files", len(files))

	conn, err := net.Dial("tcp", c.serverAddr)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", c.serverAddr, err)
	}
	fc := frame.New(conn)
	defer fc.Close()

	name := filepath.Base(tmpPath)
	header := name + "\n" + strconv.FormatInt(info.Size(), 10) + "\n"
	if err := fc.Send([]byte(header)); err != nil {
		return "", err
	}
	if err := streamArchive(fc, tmpPath); err != nil {
		return "", err
	}
	if err := fc.CloseWrite(); err != nil {
		return "", fmt.Errorf("half-close: %w", err)
	}

	payload, err := fc.Receive()
	if err != nil {
		return "", fmt.Errorf("wait for acknowledgement: %w", err)
	}
	ack := strings.TrimSpace(string(payload))
	logger.Log.Info("transfer acknowledged", "archive", name, "ack", ack)
	return ack, nil
}

func streamArchive(fc *frame.Conn, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer in.Close()

	buf := make([]byte, dataChunkSize)
	var sent int64
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if err := fc.Send(buf[:n]); err != nil {
				return err
			}
			sent += int64(n)
			logger.Log.Debug("sent data frame", "bytes", n, "total", sent)
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read archive: %w", rerr)
		}
	}
}
