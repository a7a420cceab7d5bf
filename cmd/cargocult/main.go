package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sylee/cargocult/internal/responder"
	"github.com/sylee/cargocult/internal/server"
)

func main() {
	log.SetPrefix("cargocult: ")
	cfg := loadConfig()

	// A CGI host may pass isindex search words as arguments; never read them
	// as flags.
	if isCGI() {
		if err := runCGI(os.Stdout, cfg.QueryString); err != nil {
			log.Print(err)
			os.Exit(1)
		}
		return
	}

	gin.SetMode(gin.ReleaseMode)
	if err := newRootCmd(cfg, os.Stdout).Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func runCGI(w io.Writer, query string) error {
	return responder.Respond(bufio.NewWriter(w), query)
}

func newRootCmd(cfg *Config, stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cargocult",
		Short: "Plain-text page responder for CGI and FastCGI hosts",
		Long: `cargocult answers a request with one of four canned plain-text pages,
selected by the "page" query parameter.

Run without a subcommand it writes one CGI response for QUERY_STRING to stdout.
Arguments are ignored when GATEWAY_INTERFACE is set; otherwise a search word
starting with "-" is read as a flag and the command fails.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCGI(stdout, cfg.QueryString)
		},
	}
	rootCmd.AddCommand(newServeCmd(cfg), newFcgiCmd(cfg))
	return rootCmd
}

func newServeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages over HTTP/1.1 and cleartext HTTP/2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx, cfg.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&cfg.ListenAddr, "listenAddr", cfg.ListenAddr, "address for the standalone server to listen on")
	return cmd
}

func newFcgiCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fcgi [socket-path]",
		Short: "Serve pages over FastCGI on a unix socket, or on stdin when no socket is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return server.ServeStdin()
			}
			cfg.SocketPath = args[0]
			return runFcgiSocket(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&cfg.ExitOnRebuild, "exitOnRebuild", cfg.ExitOnRebuild, "exit when the executable is replaced on disk")
	return cmd
}

func runFcgiSocket(ctx context.Context, cfg *Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ExitOnRebuild {
		exe, err := os.Executable()
		if err != nil {
			return err
		}
		ew, err := server.WatchExecutable(exe)
		if err != nil {
			return err
		}
		go ew.Run(ctx, stop)
	}
	return server.ServeSocket(ctx, cfg.SocketPath)
}
