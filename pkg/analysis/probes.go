package analysis

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var binaryExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".ico": true, ".webp": true, ".tiff": true,
	".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true, ".webm": true, ".mkv": true, ".m4v": true,
	".mp3": true, ".wav": true, ".flac": true, ".aac": true, ".ogg": true, ".wma": true, ".m4a": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true, ".rar": true, ".7z": true, ".jar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true, ".app": true, ".deb": true, ".rpm": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".pyc": true, ".pyo": true, ".class": true, ".o": true, ".a": true, ".lib": true, ".wasm": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
}

const (
	binarySampleSize    = 8192
	printableSampleSize = 512
	nonPrintableRatio   = 0.3
)

// IsBinary reports whether the file at path looks binary: a known binary
// extension, a NUL byte in the first 8KiB, or more than 30% non-printable
// bytes in the first 512. Unreadable files are treated as text.
func IsBinary(path string) bool {
	if filepath.Base(path) == ".DS_Store" || binaryExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, binarySampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false
	}
	return looksBinary(buf[:n])
}

func looksBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	head := sample
	if len(head) > printableSampleSize {
		head = head[:printableSampleSize]
	}
	nonPrintable := 0
	for _, b := range head {
		if (b < 32 || b > 126) && b != '\t' && b != '\n' && b != '\r' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(head)) > nonPrintableRatio
}

// fileSize tries os.Stat, then git ls-tree at HEAD, then the remote sizer.
func (a *Analyzer) fileSize(ctx context.Context, rel string) (int64, error) {
	fi, err := os.Stat(a.localPath(rel))
	if err == nil && fi.Mode().IsRegular() {
		return fi.Size(), nil
	}
	if err != nil {
		a.log.Debug("stat failed", "path", rel, "error", err)
	}

	size, err := gitTreeSize(ctx, a.opts.Root, rel)
	if err == nil {
		return size, nil
	}
	a.log.Debug("git ls-tree failed", "path", rel, "error", err)

	if a.opts.Remote != nil {
		size, err := a.opts.Remote.ContentSize(ctx, rel)
		if err == nil {
			return size, nil
		}
		a.log.Debug("remote size failed", "path", rel, "error", err)
	}
	return 0, errors.New("failed to get file size using all strategies")
}

// gitTreeSize parses "<mode> <type> <object> <size>\t<path>".
func gitTreeSize(ctx context.Context, dir, rel string) (int64, error) {
	args := []string{"ls-tree", "-l", "HEAD", "--", rel}
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return 0, err
	}
	meta, _, ok := strings.Cut(strings.TrimSpace(string(out)), "\t")
	if !ok {
		return 0, fmt.Errorf("path not in HEAD tree")
	}
	fields := strings.Fields(meta)
	if len(fields) < 4 {
		return 0, fmt.Errorf("unexpected ls-tree output %q", meta)
	}
	return strconv.ParseInt(fields[3], 10, 64)
}

var wcPattern = regexp.MustCompile(`^\s*(\d+)`)

// CountLines counts lines with wc -l, falling back to a streaming count. A
// positive limit caps the result and stops the fallback early.
func CountLines(ctx context.Context, path string, limit int) (int, error) {
	if out, err := exec.CommandContext(ctx, "wc", "-l", path).Output(); err == nil {
		if m := wcPattern.FindSubmatch(out); m != nil {
			n, _ := strconv.Atoi(string(m[1]))
			if limit > 0 && n > limit {
				return limit, nil
			}
			return n, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}
	defer f.Close()
	return countLines(f, limit)
}

func countLines(r io.Reader, limit int) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if limit > 0 && n >= limit {
			return limit, nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}
	return n, nil
}
