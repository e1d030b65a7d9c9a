package ftclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	listingHeader = "---------- remote directory ----------"
	listingFooter = "--------------------------------------"

	// maxNameLen bounds a single listing entry.
	maxNameLen = 1 << 20
)

// transferExecutor drains the data channel into the sink for a request.
type transferExecutor struct {
	// out receives listings
	out io.Writer

	// destDir is where retrieved files are created
	destDir string

	progress func(bytesTransferred int64)
	logger   *slog.Logger
}

// execute serves req from src: a listing is rendered to out, a file is
// written to destDir.
func (x *transferExecutor) execute(ctx context.Context, req Request, src io.Reader) (*Result, error) {
	switch req.Action() {
	case ActionList:
		return x.list(ctx, src)
	case ActionGet:
		return x.get(ctx, req.Filename(), src)
	default:
		return nil, fmt.Errorf("unsupported action %d", req.Action())
	}
}

// list reads whitespace separated names until EOF and writes them one per
// line between the header and footer as they arrive. Tokens are reassembled
// across reads; a single name may be at most maxNameLen bytes.
func (x *transferExecutor) list(ctx context.Context, src io.Reader) (*Result, error) {
	res := &Result{Action: ActionList}
	failed := func(err error) (*Result, error) {
		return res, &TransferError{Action: ActionList, Written: res.Bytes, Err: err}
	}

	if _, err := io.WriteString(x.out, listingHeader+"\n"); err != nil {
		return failed(err)
	}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, bufferSize), maxNameLen)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return failed(err)
		}
		name := sc.Text()
		res.Entries = append(res.Entries, name)
		res.Bytes += int64(len(name))
		if _, err := io.WriteString(x.out, name+"\n"); err != nil {
			return failed(err)
		}
	}
	if err := sc.Err(); err != nil {
		return failed(err)
	}
	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	if _, err := io.WriteString(x.out, listingFooter+"\n"); err != nil {
		return failed(err)
	}

	x.logger.Debug("listing received", "entries", len(res.Entries))
	return res, nil
}

// get copies src into a new file in destDir. The file is created on the
// first non-empty chunk, so an empty response leaves nothing on disk. On
// failure the partial file is closed and kept.
func (x *transferExecutor) get(ctx context.Context, remote string, src io.Reader) (res *Result, err error) {
	res = &Result{Action: ActionGet}

	base := filepath.Base(filepath.FromSlash(remote))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return res, &ConfigError{Field: "filename", Value: remote, Reason: "does not name a file"}
	}

	info, err := os.Stat(x.destDir)
	if err != nil {
		return res, &TransferError{Action: ActionGet, Err: err}
	}
	if !info.IsDir() {
		return res, &ConfigError{Field: "destination directory", Value: x.destDir, Reason: "not a directory"}
	}

	// Only a successful stat counts as taken. Any other lookup failure stops
	// the search and fails the transfer.
	var lookupErr error
	name := ResolveNameConflict(base, func(candidate string) bool {
		_, statErr := os.Lstat(filepath.Join(x.destDir, candidate))
		if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
			lookupErr = statErr
		}
		return statErr == nil
	})
	if lookupErr != nil {
		return res, &TransferError{Action: ActionGet, Err: lookupErr}
	}
	if name != base {
		x.logger.Debug("destination exists, renaming", "file", base, "renamed", name)
	}

	dst := &lazyFile{path: filepath.Join(x.destDir, name)}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = &TransferError{Action: ActionGet, Path: dst.path, Written: res.Bytes, Err: closeErr}
		}
		if dst.created() {
			res.Path = dst.path
		}
	}()

	pw := &ProgressWriter{Writer: dst, Callback: x.progress}
	buf := make([]byte, bufferSize)
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, x.transferFailed(dst, pw.Total(), ctxErr)
		}

		chunk, readErr := readChunk(src, buf)
		if len(chunk) > 0 {
			if _, writeErr := pw.Write(chunk); writeErr != nil {
				res.Bytes = pw.Total()
				return res, x.transferFailed(dst, pw.Total(), writeErr)
			}
		}
		res.Bytes = pw.Total()

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return res, x.transferFailed(dst, pw.Total(), readErr)
		}
	}

	if !dst.created() {
		x.logger.Debug("empty response, no file written", "file", remote)
		return res, nil
	}
	x.logger.Debug("file received", "path", dst.path, "bytes", res.Bytes)
	return res, nil
}

func (x *transferExecutor) transferFailed(dst *lazyFile, written int64, err error) error {
	te := &TransferError{Action: ActionGet, Written: written, Err: err}
	if dst.created() {
		te.Path = dst.path
	}
	x.logger.Debug("transfer failed", "path", te.Path, "bytes", written, "error", err)
	return te
}

// lazyFile creates its file on the first non-empty Write. It refuses to
// replace a file that appeared after the name was chosen.
type lazyFile struct {
	path string
	f    *os.File
}

func (l *lazyFile) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if l.f == nil {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return 0, err
		}
		l.f = f
	}
	return l.f.Write(p)
}

func (l *lazyFile) created() bool {
	return l.f != nil
}

// Close closes the file if it was created.
func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}

// ResolveNameConflict returns name if it is free, otherwise the first of
// "stem-1.ext", "stem-2.ext", ... for which exists returns false. The name is
// split at its last dot; a name without one, or whose only dot is the leading
// one (".profile"), gets the suffix at the end.
func ResolveNameConflict(name string, exists func(name string) bool) string {
	if !exists(name) {
		return name
	}

	stem, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem, ext = name[:i], name[i:]
	}

	for n := 1; ; n++ {
		candidate := stem + "-" + strconv.Itoa(n) + ext
		if !exists(candidate) {
			return candidate
		}
	}
}
