package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"arcsend/internal/archive"
	"arcsend/pkg/logger"
)

// State tracks where a session is in the header-then-data hand-off.
type State int

const (
	StateHeader State = iota
	StateData
	StateDone
)

var (
	ErrMalformedHeader  = errors.New("transfer: malformed header frame")
	ErrOverlongTransfer = errors.New("transfer: received more bytes than declared")
)

// AckSender sends the completion acknowledgement frame back to the peer.
type AckSender interface {
	Send(payload []byte) error
}

// Extractor unpacks a completed archive into a destination directory.
type Extractor interface {
	Extract(archivePath, destDir string) error
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(archivePath, destDir string) error

func (f ExtractorFunc) Extract(archivePath, destDir string) error {
	return f(archivePath, destDir)
}

// Session reassembles one incoming transfer on one connection: first a
// textual header declaring the archive name and total size, then raw bytes
// streamed into the sink until the declared size is reached, at which point
// the archive is extracted and the peer acknowledged. A session is owned by
// a single handler goroutine and shares nothing with other sessions.
type Session struct {
	sender    AckSender
	extractor Extractor
	destDir   string

	state       State
	hdrBuf      []byte
	archiveName string
	declared    int64
	received    int64
	sink        *os.File
	sinkPath    string
}

func NewSession(sender AckSender, extractor Extractor, destDir string) *Session {
	return &Session{
		sender:    sender,
		extractor: extractor,
		destDir:   destDir,
		state:     StateHeader,
	}
}

// HandleFrame consumes one frame payload. A nil return with Done() still
// false means the session is waiting for more frames; a non-nil return
// aborts the session.
func (s *Session) HandleFrame(payload []byte) error {
	switch s.state {
	case StateHeader:
		return s.handleHeader(payload)
	case StateData:
		return s.handleData(payload)
	default:
		return fmt.Errorf("%w: frame after completed transfer", ErrOverlongTransfer)
	}
}

func (s *Session) handleHeader(payload []byte) error {
	s.hdrBuf = append(s.hdrBuf, payload...)
	parts := bytes.SplitN(s.hdrBuf, []byte{'\n'}, 3)
	if len(parts) < 3 {
		// Header lines not complete yet, wait for the next frame.
		return nil
	}
	name := strings.TrimSpace(string(parts[0]))
	size, err := strconv.ParseInt(strings.TrimSpace(string(parts[1])), 10, 64)
	if err != nil || size < 0 || name == "" {
		return fmt.Errorf("%w: name=%q size=%q", ErrMalformedHeader, parts[0], parts[1])
	}
	remainder := parts[2]
	s.archiveName = name
	s.declared = size
	s.hdrBuf = nil

	s.sinkPath = filepath.Join(s.destDir, archive.ExtractPrefix+filepath.Base(name))
	sink, err := os.OpenFile(s.sinkPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open sink %s: %w", s.sinkPath, err)
	}
	s.sink = sink
	s.state = StateData
	logger.Log.Info("transfer header parsed", "archive", name, "size", size)

	// The first data bytes often ride in the header frame.
	return s.handleData(remainder)
}

func (s *Session) handleData(payload []byte) error {
	if surplus := int64(len(payload)) - (s.declared - s.received); surplus > 0 {
		return fmt.Errorf("%w: declared %d, got %d surplus byte(s)", ErrOverlongTransfer, s.declared, surplus)
	}
	if len(payload) > 0 {
		n, err := s.sink.Write(payload)
		s.received += int64(n)
		if err != nil {
			return fmt.Errorf("write sink %s: %w", s.sinkPath, err)
		}
	}
	if s.received < s.declared {
		return nil
	}
	return s.complete()
}

func (s *Session) complete() error {
	if err := s.sink.Close(); err != nil {
		s.sink = nil
		return fmt.Errorf("close sink %s: %w", s.sinkPath, err)
	}
	s.sink = nil
	s.state = StateDone
	logger.Log.Info("archive received, extracting", "archive", s.archiveName, "bytes", s.received)
	if err := s.extractor.Extract(s.sinkPath, s.destDir); err != nil {
		return fmt.Errorf("extract %s: %w", s.sinkPath, err)
	}
	ack := fmt.Sprintf("Received and extracted %s\n", s.archiveName)
	if err := s.sender.Send([]byte(ack)); err != nil {
		return fmt.Errorf("send acknowledgement: %w", err)
	}
	return nil
}

// Done reports whether the transfer ran to completion.
func (s *Session) Done() bool {
	return s.state == StateDone
}

// Close releases the sink when the session ends before the transfer
// completes. The partial output file is left on disk.
func (s *Session) Close() {
	if s.sink != nil {
		s.sink.Close()
		s.sink = nil
	}
}
