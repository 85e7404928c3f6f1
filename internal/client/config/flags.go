package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pudo/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the identity server
//	-r string   address and port of the account directory
//	-d string   app-data directory
//	-s string   secure store database path
//	-p int      email verification poll interval in seconds
//	-t int      request timeout in seconds
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-d", "-s", "-p", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the identity server")
	fs.StringVar(&cfg.DirectoryAddr, "r", cfg.DirectoryAddr, "address and port of the account directory")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "app-data directory")
	fs.StringVar(&cfg.SecureStorePath, "s", cfg.SecureStorePath, "secure store database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	pollInterval := fs.Int("p", 0, "email verification poll interval (in seconds)")
	requestTimeout := fs.Int("t", 0, "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations given by earlier sources may be sub-second; only an explicit
	// flag replaces them.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.PollInterval = time.Duration(*pollInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
}
