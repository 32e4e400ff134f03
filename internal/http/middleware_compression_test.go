package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	longHTML := strings.Repeat("<p>open position</p>", 200)

	tests := []struct {
		name           string
		acceptEncoding string
		method         string
		handler        http.HandlerFunc
		wantGzip       bool
		wantStatus     int
		wantBody       string
	}{
		{
			name:           "html is compressed",
			acceptEncoding: "gzip, deflate",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write([]byte(longHTML))
			},
			wantGzip:   true,
			wantStatus: http.StatusOK,
			wantBody:   longHTML,
		},
		{
			name:           "client without gzip",
			acceptEncoding: "",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(longHTML))
			},
			wantStatus: http.StatusOK,
			wantBody:   longHTML,
		},
		{
			name:           "gzip disabled by q=0",
			acceptEncoding: "gzip;q=0, br",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(longHTML))
			},
			wantStatus: http.StatusOK,
			wantBody:   longHTML,
		},
		{
			name:           "short fragment stays plain",
			acceptEncoding: "gzip",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<tr></tr>"))
			},
			wantStatus: http.StatusOK,
			wantBody:   "<tr></tr>",
		},
		{
			name:           "images are not compressed",
			acceptEncoding: "gzip",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write([]byte(longHTML))
			},
			wantStatus: http.StatusOK,
			wantBody:   longHTML,
		},
		{
			name:           "already encoded upstream body",
			acceptEncoding: "gzip",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Content-Encoding", "br")
				_, _ = w.Write([]byte(longHTML))
			},
			wantStatus: http.StatusOK,
			wantBody:   longHTML,
		},
		{
			name:           "no content",
			acceptEncoding: "gzip",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Hx-Reswap", "none")
				w.WriteHeader(http.StatusNoContent)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:           "accepted without body",
			acceptEncoding: "gzip",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:           "head request",
			acceptEncoding: "gzip",
			method:         http.MethodHead,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			Compression(CompressionConfig{MinSize: 256, Logger: discardLogger()})(tt.handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.Bytes()
			if tt.wantGzip {
				require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
				zr, err := gzip.NewReader(rec.Body)
				require.NoError(t, err)
				body, err = io.ReadAll(zr)
				require.NoError(t, err)
			} else {
				assert.NotEqual(t, "gzip", rec.Header().Get("Content-Encoding"))
			}
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestAcceptsGzip(t *testing.T) {
	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("br, GZIP;q=0.8"))
	assert.False(t, acceptsGzip("gzip;q=0"))
	assert.False(t, acceptsGzip("x-gzip"))
	assert.False(t, acceptsGzip(""))
}
