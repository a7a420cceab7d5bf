package main

import "os"

// Config holds the settings for one process. Flags fill in the
// transport fields after loadConfig.
type Config struct {
	QueryString   string
	ListenAddr    string
	SocketPath    string
	ExitOnRebuild bool
}

func loadConfig() *Config {
	// Unset and empty are the same request.
	return &Config{
		QueryString:   os.Getenv("QUERY_STRING"),
		ListenAddr:    ":8080",
		ExitOnRebuild: true,
	}
}

// isCGI reports whether a CGI host started the process.
func isCGI() bool {
	_, ok := os.LookupEnv("GATEWAY_INTERFACE")
	return ok
}
