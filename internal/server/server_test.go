package server

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arcsend/internal/client"
)

func startServer(t *testing.T, dest string) string {
	t.Helper()
	srv := New(0, dest)
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	go srv.Serve()
	t.Cleanup(srv.Stop)
	port := srv.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("127.0.0.1:%d", port)
}

func TestEndToEndTransfer(t *testing.T) {
	dest := t.TempDir()
	addr := startServer(t, dest)

	src := t.TempDir()
	a := filepath.Join(src, "a.txt")
	if err := os.WriteFile(a, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	b := filepath.Join(src, "b.txt")
	if err := os.WriteFile(b, nil, 0644); err != nil {
		t.Fatal(err)
	}
	big := filepath.Join(src, "big.bin")
	// Larger than one data frame so the archive travels in several frames.
	bigContent := bytes.Repeat([]byte("0123456789abcdef"), 1024)
	if err := os.WriteFile(big, bigContent, 0644); err != nil {
		t.Fatal(err)
	}

	ack, err := client.New(addr).Send([]string{a, b, big})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(ack, "Received and extracted archive_") {
		t.Errorf("unexpected ack %q", ack)
	}

	for name, want := range map[string][]byte{
		"new_a.txt":   []byte("abc"),
		"new_b.txt":   nil,
		"new_big.bin": bigContent,
	} {
		got, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Fatalf("extracted file %s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s: got %d bytes, want %d", name, len(got), len(want))
		}
	}

	// The received archive itself is persisted alongside the entries.
	archives, err := filepath.Glob(filepath.Join(dest, "new_archive_*.tar"))
	if err != nil || len(archives) != 1 {
		t.Errorf("expected one saved archive, got %v (%v)", archives, err)
	}
}

func TestIndependentConnections(t *testing.T) {
	dest := t.TempDir()
	addr := startServer(t, dest)

	// A connection that dies mid-protocol must not affect the next one.
	bad, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bad.Write([]byte("not-a-frame")); err != nil {
		t.Fatal(err)
	}
	bad.Close()

	src := t.TempDir()
	f := filepath.Join(src, "ok.txt")
	if err := os.WriteFile(f, []byte("still works"), 0644); err != nil {
		t.Fatal(err)
	}
	ack, err := client.New(addr).Send([]string{f})
	if err != nil {
		t.Fatalf("transfer after bad connection: %v", err)
	}
	if !strings.HasPrefix(ack, "Received and extracted") {
		t.Errorf("unexpected ack %q", ack)
	}
	got, err := os.ReadFile(filepath.Join(dest, "new_ok.txt"))
	if err != nil || string(got) != "still works" {
		t.Errorf("extracted content %q, err %v", got, err)
	}
}
