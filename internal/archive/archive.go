package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"arcsend/pkg/logger"
)

const (
	// Each numeric header field is a zero-padded decimal of this width,
	// which caps entry sizes and name lengths at 99,999,999.
	fieldWidth    = 8
	maxFieldValue = 99_999_999

	copyChunkSize = 4096
)

// ExtractPrefix is prepended to every extracted name so an entry can never
// overwrite the file it was archived from.
const ExtractPrefix = "new_"

var (
	ErrNotFound       = errors.New("archive: source file does not exist")
	ErrFieldOverflow  = errors.New("archive: value exceeds 8-digit field")
	ErrCorruptArchive = errors.New("archive: corrupt entry header")
	ErrTruncatedEntry = errors.New("archive: entry content truncated")
)

// Create archives the given files into a single container at outputPath,
// in the order given. Each entry is a header of three fields (content size
// and name length as 8-digit zero-padded decimals, then the raw base name)
// followed immediately by the content bytes. The operation is not
// transactional: a failure part way through leaves the partial output behind.
func Create(outputPath string, files []string) error {
	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open output %s: %w", outputPath, err)
	}
	defer out.Close()

	for _, file := range files {
		if err := appendEntry(out, file); err != nil {
			return err
		}
	}
	return nil
}

func appendEntry(out *os.File, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	name := filepath.Base(path)
	if info.Size() > maxFieldValue || len(name) > maxFieldValue {
		return fmt.Errorf("%w: %s (size %d, name length %d)", ErrFieldOverflow, path, info.Size(), len(name))
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	header := fmt.Sprintf("%08d%08d%s", info.Size(), len(name), name)
	if _, err := out.WriteString(header); err != nil {
		return fmt.Errorf("write header for %s: %w", path, err)
	}
	buf := make([]byte, copyChunkSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return fmt.Errorf("write content of %s: %w", path, err)
	}
	logger.Log.Debug("archived entry", "name", name, "size", info.Size())
	return nil
}

// Extract decodes every entry of the archive at archivePath into destDir,
// preserving archive order. There is no entry count or terminator record:
// zero bytes available at an entry boundary is the clean end of the archive,
// while a short read anywhere inside an entry is fatal. A failure on one
// entry aborts all entries after it.
func Extract(archivePath, destDir string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer in.Close()
	return decode(in, destDir)
}

func decode(r io.Reader, destDir string) error {
	buf := make([]byte, copyChunkSize)
	for {
		size, err := readField(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		nameLen, err := readField(r)
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: missing name length field", ErrCorruptArchive)
		}
		if err != nil {
			return err
		}
		if nameLen == 0 {
			return fmt.Errorf("%w: empty entry name", ErrCorruptArchive)
		}

		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return fmt.Errorf("%w: short entry name", ErrCorruptArchive)
		}

		outPath := filepath.Join(destDir, ExtractPrefix+filepath.Base(string(name)))
		if err := writeEntry(r, outPath, size, buf); err != nil {
			return err
		}
		logger.Log.Info("extracted entry", "name", string(name), "size", size, "path", outPath)
	}
}

// readField reads one fixed-width numeric header field. io.EOF is returned
// untouched when not a single byte was available, so the caller can tell a
// clean end of the archive from a truncated field.
func readField(r io.Reader) (int, error) {
	var field [fieldWidth]byte
	if _, err := io.ReadFull(r, field[:]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("%w: short numeric field", ErrCorruptArchive)
	}
	n, err := strconv.Atoi(string(field[:]))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad numeric field %q", ErrCorruptArchive, field[:])
	}
	return n, nil
}

func writeEntry(r io.Reader, path string, size int, buf []byte) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	n, err := io.CopyBuffer(out, io.LimitReader(r, int64(size)), buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if n < int64(size) {
		return fmt.Errorf("%w: %s: got %d of %d bytes", ErrTruncatedEntry, path, n, size)
	}
	return nil
}
