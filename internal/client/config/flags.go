package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/fragkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Subcommand arguments are filtered out first, so the client's own
// positional arguments and flags never reach this flag set.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-timeout"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the server")
	fs.StringVar(&cfg.AccessToken, "k", cfg.AccessToken, "access token")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-call timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
