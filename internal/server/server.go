package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"arcsend/internal/archive"
	"arcsend/internal/frame"
	"arcsend/internal/transfer"
	"arcsend/pkg/logger"
)

// Server owns the listening socket and runs one receiver session per
// accepted connection. Sessions share no state; a failing connection never
// affects its siblings. Socket reads carry no timeout, so a stalled peer
// parks its handler goroutine until the connection drops.
type Server struct {
	port    int
	destDir string

	ln net.Listener
	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func New(port int, destDir string) *Server {
	return &Server{port: port, destDir: destDir}
}

// Start binds the listening socket. Serve runs the accept loop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	s.ln = ln
	logger.Log.Info("listening for transfers", "addr", ln.Addr().String(), "dest", s.destDir)
	return nil
}

// Addr returns the bound address, useful when Start was given port 0.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until Stop closes the listener.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

// Stop closes the listener and waits for in-flight sessions to finish.
func (s *Server) Stop() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.ln != nil {
		s.ln.Close()
	}
	s.wg.Wait()
}

func (s *Server) handle(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	logger.Log.Info("new transfer connection", "remote", remote)

	fc := frame.New(conn)
	defer fc.Close()
	sess := transfer.NewSession(fc, transfer.ExtractorFunc(archive.Extract), s.destDir)
	defer sess.Close()

	for {
		payload, err := fc.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Log.Info("connection closed by peer", "remote", remote)
			} else {
				logger.Log.Error("receive failed, dropping connection", "remote", remote, "err", err)
			}
			return
		}
		if err := sess.HandleFrame(payload); err != nil {
			logger.Log.Error("session aborted", "remote", remote, "err", err)
			return
		}
		if sess.Done() {
			logger.Log.Info("transfer complete", "remote", remote)
			return
		}
	}
}
