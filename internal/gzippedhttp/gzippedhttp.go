// Package gzippedhttp provides middleware for gzip-compressed HTTP requests and responses.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressedReader wraps an io.ReadCloser and decompresses its input using gzip.
type CompressedReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

// NewCompressedReader returns a new CompressedReader that reads gzip-compressed data
// from the provided io.ReadCloser.
func NewCompressedReader(requestBody io.ReadCloser) (*CompressedReader, error) {
	zippedRequestBody, err := gzip.NewReader(requestBody)
	if err != nil {
		return nil, err
	}

	return &CompressedReader{
		r:  requestBody,
		zr: zippedRequestBody,
	}, nil
}

// Read reads decompressed data from the underlying gzip stream.
func (c *CompressedReader) Read(p []byte) (n int, err error) {
	return c.zr.Read(p)
}

// Close closes both the gzip reader and the underlying io.ReadCloser.
func (c *CompressedReader) Close() error {
	if err := c.r.Close(); err != nil {
		return err
	}
	return c.zr.Close()
}

// CompressedHTTPResponseWriter compresses the response body with gzip.
// The status line is held back until the first Write so that bodiless
// responses (202 on delete, 404 without payload) go out uncompressed and empty.
type CompressedHTTPResponseWriter struct {
	w           http.ResponseWriter
	zw          *gzip.Writer
	status      int
	wroteHeader bool
}

// NewCompressedHTTPResponseWriter returns a writer compressing into w.
func NewCompressedHTTPResponseWriter(w http.ResponseWriter) *CompressedHTTPResponseWriter {
	return &CompressedHTTPResponseWriter{
		w:      w,
		status: http.StatusOK,
	}
}

// Header returns the HTTP headers associated with the response.
func (c *CompressedHTTPResponseWriter) Header() http.Header {
	return c.w.Header()
}

// WriteHeader records the status code; it is sent with the first body byte or on Close.
func (c *CompressedHTTPResponseWriter) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.status = statusCode
}

// Write gzip-compresses p into the response body.
func (c *CompressedHTTPResponseWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.wroteHeader = true
		if c.status < http.StatusMultipleChoices {
			c.w.Header().Set("Content-Encoding", "gzip")
			c.w.Header().Del("Content-Length")
			c.zw = gzipWriterPool.Get().(*gzip.Writer)
			c.zw.Reset(c.w)
		}
		c.w.WriteHeader(c.status)
	}

	if c.zw == nil {
		return c.w.Write(p)
	}

	return c.zw.Write(p)
}

// Close flushes the gzip stream, or sends the pending status line when no
// body was written.
func (c *CompressedHTTPResponseWriter) Close() error {
	if !c.wroteHeader {
		c.wroteHeader = true
		c.w.WriteHeader(c.status)
		return nil
	}

	if c.zw == nil {
		return nil
	}

	err := c.zw.Close()
	gzipWriterPool.Put(c.zw)
	c.zw = nil

	return err
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// GzipResponse compresses responses for clients sending "Accept-Encoding: gzip".
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		response.Header().Add("Vary", "Accept-Encoding")
		responseWithCompression := NewCompressedHTTPResponseWriter(response)
		defer responseWithCompression.Close()

		h.ServeHTTP(responseWithCompression, request)
	}

	return http.HandlerFunc(middleware)
}

// UngzipRequest replaces a "Content-Encoding: gzip" request body with a
// decompressing reader. A body that is not valid gzip is rejected with 400.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		requestBodyWithCompression, err := NewCompressedReader(request.Body)
		if err != nil {
			http.Error(response, "malformed gzip request body", http.StatusBadRequest)
			return
		}
		request.Body = requestBodyWithCompression
		request.Header.Del("Content-Encoding")
		defer requestBodyWithCompression.Close()

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
