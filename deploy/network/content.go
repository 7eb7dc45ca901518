package network

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
)

const defaultContentType = "application/octet-stream"

// objectBody is the request body of one upload with the headers derived from the file.
type objectBody struct {
	reader          io.ReadSeeker
	size            int64
	contentType     string
	contentEncoding string
	closer          io.Closer
}

func (b *objectBody) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func openBody(localPath string, opts ContentOptions) (*objectBody, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, fmt.Errorf("stat file: %w", err)
	}

	body := &objectBody{
		reader:      file,
		size:        info.Size(),
		contentType: detectContentType(localPath),
		closer:      file,
	}

	if opts.Gzip == nil || !opts.Gzip.MatchString(localPath) {
		return body, nil
	}

	// The file is compressed up front: the signer needs a seekable body with a known length.
	defer file.Close() //nolint:errcheck
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := io.Copy(zw, file); err != nil {
		return nil, fmt.Errorf("compress file: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress file: %w", err)
	}

	body.reader = bytes.NewReader(buf.Bytes())
	body.size = int64(buf.Len())
	body.contentEncoding = "gzip"
	body.closer = nil
	return body, nil
}

// detectContentType prefers the extension table since build outputs (js, css, svg)
// are text formats that content sniffing reports as plain text.
func detectContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil || mt == nil {
		return defaultContentType
	}
	return mt.String()
}
