// Package server serves the page table over HTTP and FastCGI for hosts that
// keep the process alive between requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/fcgi"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/sylee/cargocult/internal/page"
	"github.com/sylee/cargocult/internal/responder"
)

const shutdownTimeout = 5 * time.Second

// Handler returns a router answering every path and method with the page
// selected by the raw query string. The gin mode is left to the caller.
func Handler() http.Handler {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery())

	// Catch-all so the page answers under any script name, e.g. /cargocult.fcgi.
	// The method is ignored, as a CGI invocation ignores it.
	r.Any("/*path", func(c *gin.Context) {
		body := page.Lookup(c.Request.URL.RawQuery)
		c.Data(http.StatusOK, responder.ContentType, []byte(body+"\n"))
	})
	return r
}

// ListenAndServe serves Handler on addr with HTTP/1.1 and cleartext HTTP/2
// until ctx is done.
func ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           h2c.NewHandler(Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Running as a standalone server on %s", ln.Addr())
	err := srv.Serve(ln)
	cancel()
	<-done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeSocket serves Handler over FastCGI on a unix socket until ctx is done,
// then waits up to shutdownTimeout for open connections to finish.
// A stale socket file at socketPath is removed first.
func ServeSocket(ctx context.Context, socketPath string) error {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old socket %s: %w", socketPath, err)
	}
	ul, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	ln := newTrackingListener(ul)
	defer ln.Close()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	log.Printf("Running as a FastCGI socket server on %s", socketPath)
	err = fcgi.Serve(ln, Handler())
	if ctx.Err() == nil {
		return fmt.Errorf("fcgi.Serve failed: %w", err)
	}
	if !ln.wait(shutdownTimeout) {
		log.Printf("Gave up waiting for open FastCGI connections after %s", shutdownTimeout)
	}
	return nil
}

// ServeStdin serves Handler over FastCGI on the listener the host passed as
// stdin.
func ServeStdin() error {
	log.Print("Running as a FastCGI stdin server")
	if err := fcgi.Serve(nil, Handler()); err != nil {
		return fmt.Errorf("fcgi.Serve failed: %w", err)
	}
	return nil
}
