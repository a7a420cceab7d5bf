package responder

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylee/cargocult/internal/page"
)

var errBroken = errors.New("broken pipe")

// flushRecorder records how many bytes had been written at each Flush.
type flushRecorder struct {
	bytes.Buffer
	flushes []int
	failAt  int
}

func (r *flushRecorder) Flush() error {
	r.flushes = append(r.flushes, r.Len())
	if r.failAt > 0 && len(r.flushes) == r.failAt {
		return errBroken
	}
	return nil
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, errBroken
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name  string
		query string
		body  string
	}{
		{"query unset", "", "An Army of One: a lone WASM wakes, answers, vanishes—leaving only calm CPUs and happy ledgers.\n"},
		{"page 3", "page=3", "Cargo Cult: no rites, no runes—just sockets; planes land where packets are expected.\n"},
		{"unknown page", "page=5", page.NotFound + "\n"},
		{"empty page", "page=", page.NotFound + "\n"},
		{"garbage", "&&==&page", "An Army of One: a lone WASM wakes, answers, vanishes—leaving only calm CPUs and happy ledgers.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Respond(&buf, tt.query))
			assert.Equal(t, "Content-Type: text/plain\r\n\r\n"+tt.body, buf.String())
		})
	}
}

func TestRespondSingleBodyLine(t *testing.T) {
	for _, q := range []string{"", "page=1", "page=2", "page=4", "page=9", "page=1=2", "a&b", "page=\n"} {
		var buf bytes.Buffer
		require.NoError(t, Respond(&buf, q))

		out := buf.String()
		require.True(t, strings.HasPrefix(out, Header), "query %q", q)
		body := strings.TrimPrefix(out, Header)
		assert.Equal(t, 1, strings.Count(body, "\n"), "query %q", q)
		assert.True(t, strings.HasSuffix(body, "\n"), "query %q", q)
	}
}

func TestRespondFlushesHeaderFirst(t *testing.T) {
	rec := &flushRecorder{}
	require.NoError(t, Respond(rec, "page=2"))

	require.Len(t, rec.flushes, 2)
	assert.Equal(t, len(Header), rec.flushes[0])
	assert.Equal(t, rec.Len(), rec.flushes[1])
}

func TestRespondThroughBufferedWriter(t *testing.T) {
	var out bytes.Buffer
	bw := bufio.NewWriter(&out)

	require.NoError(t, WriteHeader(bw))
	assert.Equal(t, Header, out.String(), "header must reach the underlying writer before the body")

	require.NoError(t, WriteBody(bw, page.Lookup("page=4")))
	assert.Equal(t, Header+page.Body("4")+"\n", out.String())
}

func TestRespondErrors(t *testing.T) {
	t.Run("write", func(t *testing.T) {
		err := Respond(errWriter{}, "page=1")
		require.Error(t, err)
		assert.ErrorIs(t, err, errBroken)
		assert.Contains(t, err.Error(), "write header")
	})

	t.Run("flush header", func(t *testing.T) {
		rec := &flushRecorder{failAt: 1}
		err := Respond(rec, "page=1")
		assert.ErrorIs(t, err, errBroken)
		assert.Equal(t, Header, rec.String(), "body must not be written after a failed header flush")
	})

	t.Run("flush body", func(t *testing.T) {
		rec := &flushRecorder{failAt: 2}
		err := Respond(rec, "page=1")
		assert.ErrorIs(t, err, errBroken)
		assert.Contains(t, err.Error(), "flush body")
	})
}
