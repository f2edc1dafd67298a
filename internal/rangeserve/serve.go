package rangeserve

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
)

// ServeFile writes path to w, honouring a single byte range. Responses are
// never cacheable because artifacts are addressed by query string.
func ServeFile(w http.ResponseWriter, r *http.Request, path, contentType string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", path)
	}

	header := w.Header()
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", "no-store")
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	span, ok := ParseRange(r.Header.Get("Range"), info.Size())
	if !ok {
		// ServeContent would answer an unparseable range with 416; the
		// header is dropped so it sends the whole file instead.
		r.Header.Del("Range")
		http.ServeContent(w, r, "", info.ModTime(), file)
		return nil
	}

	header.Set("Content-Range", span.ContentRange())
	header.Set("Content-Length", strconv.FormatInt(span.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := file.Seek(span.Start, io.SeekStart); err != nil {
		return err
	}
	// A client that disconnects surfaces here as a write error.
	_, err = io.CopyN(w, file, span.Length())
	return err
}
