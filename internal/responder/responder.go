// Package responder writes CGI responses for the page table.
package responder

import (
	"fmt"
	"io"

	"github.com/sylee/cargocult/internal/page"
)

// ContentType is the media type of every body.
const ContentType = "text/plain"

// Header is the complete CGI header block, separator included.
const Header = "Content-Type: " + ContentType + "\r\n\r\n"

type flusher interface {
	Flush() error
}

// WriteHeader writes Header to w and flushes it before anything else can be
// written.
func WriteHeader(w io.Writer) error {
	if _, err := io.WriteString(w, Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := flush(w); err != nil {
		return fmt.Errorf("flush header: %w", err)
	}
	return nil
}

// WriteBody writes body and a trailing newline to w and flushes it.
func WriteBody(w io.Writer, body string) error {
	if _, err := io.WriteString(w, body+"\n"); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := flush(w); err != nil {
		return fmt.Errorf("flush body: %w", err)
	}
	return nil
}

// Respond writes the full CGI response for query to w. The header goes out
// before query is looked at.
func Respond(w io.Writer, query string) error {
	if err := WriteHeader(w); err != nil {
		return err
	}
	return WriteBody(w, page.Lookup(query))
}

func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
