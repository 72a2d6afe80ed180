package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Batch envelopes and delta listings are repetitive JSON, so gzip pays off on
// both directions. Writers and readers are pooled across requests.
var (
	gzipWriters = sync.Pool{
		New: func() any { return gzip.NewWriter(nil) },
	}
	gzipReaders = sync.Pool{
		New: func() any { return new(gzip.Reader) },
	}
)

func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") && r.Body != nil {
			reader := gzipReaders.Get().(*gzip.Reader)
			if err := reader.Reset(r.Body); err != nil {
				gzipReaders.Put(reader)
				http.Error(w, "Invalid gzip data", http.StatusBadRequest)
				return
			}

			r.Body = &pooledBody{
				Reader: reader,
				release: func() {
					reader.Close()
					gzipReaders.Put(reader)
				},
			}
			// Downstream decoding sees a plain body.
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		writer := gzipWriters.Get().(*gzip.Writer)
		writer.Reset(w)

		next.ServeHTTP(&compressedResponseWriter{ResponseWriter: w, writer: writer}, r)

		writer.Close()
		gzipWriters.Put(writer)
	})
}

// pooledBody hands the decompressor back to its pool on Close.
type pooledBody struct {
	io.Reader
	release func()
}

func (b *pooledBody) Close() error {
	if b.release != nil {
		b.release()
	}
	return nil
}

type compressedResponseWriter struct {
	http.ResponseWriter
	writer *gzip.Writer
}

func (w *compressedResponseWriter) WriteHeader(statusCode int) {
	w.Header().Set("Content-Encoding", "gzip")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *compressedResponseWriter) Write(data []byte) (int, error) {
	return w.writer.Write(data)
}
