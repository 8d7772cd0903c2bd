// Package cli implements the fragkeeper command line client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/client/client"
	"github.com/dmitrijs2005/fragkeeper/internal/client/config"
)

const usage = `usage: fragkeeper [-a addr] [-k token] [-timeout d] [-c config.json] <command>

commands:
  upload <file>             encrypt and store a file, print its object id
  download <id> [-o file]   fetch and decrypt an object (stdout by default)
  stat <id>                 show object metadata
  ping                      check the server is serving
`

var errUsage = errors.New("invalid usage")

type objectClient interface {
	Ping(ctx context.Context) error
	Upload(ctx context.Context, data []byte) (*client.ObjectInfo, error)
	Download(ctx context.Context, objectID string) ([]byte, error)
	Stat(ctx context.Context, objectID string) (*client.ObjectInfo, error)
	Close() error
}

type App struct {
	config *config.Config
	api    objectClient
	stdout io.Writer
	stderr io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewObjectClient(c.ServerEndpointAddr, c.AccessToken)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: apiClient, stdout: os.Stdout, stderr: os.Stderr}, nil
}

func (a *App) Close() error {
	return a.api.Close()
}

// Run executes the command found in args (usually os.Args[1:]).
func (a *App) Run(ctx context.Context, args []string) error {
	args = commandArgs(args)
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return errUsage
	}

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "upload":
		return a.upload(ctx, rest)
	case "download":
		return a.download(ctx, rest)
	case "stat":
		return a.stat(ctx, rest)
	case "ping":
		if err := a.api.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "SERVING")
		return nil
	case "help", "-h", "-help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

func (a *App) upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: upload <file>", errUsage)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	info, err := a.api.Upload(ctx, data)
	if err != nil {
		return err
	}
	a.printInfo(info)
	return nil
}

func (a *App) download(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	out := fs.String("o", "", "output file")

	id, flagArgs := splitFirst(args)
	if err := fs.Parse(flagArgs); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if id == "" && fs.NArg() == 1 {
		id = fs.Arg(0)
	}
	if id == "" {
		return fmt.Errorf("%w: download <id> [-o file]", errUsage)
	}

	data, err := a.api.Download(ctx, id)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = a.stdout.Write(data)
		return err
	}
	return os.WriteFile(*out, data, 0o600)
}

func (a *App) stat(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: stat <id>", errUsage)
	}

	info, err := a.api.Stat(ctx, args[0])
	if err != nil {
		return err
	}
	a.printInfo(info)
	return nil
}

func (a *App) printInfo(info *client.ObjectInfo) {
	fmt.Fprintf(a.stdout, "object_id:      %s\n", info.ObjectID)
	fmt.Fprintf(a.stdout, "created_at:     %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(a.stdout, "fragment_count: %d\n", info.FragmentCount)
	fmt.Fprintf(a.stdout, "size:           %d\n", info.Size)
	fmt.Fprintf(a.stdout, "key_mode:       %s\n", info.KeyMode)
}

// splitFirst returns the first positional argument and the remaining args.
func splitFirst(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

// globalFlags are consumed by the config package.
var globalFlags = map[string]bool{"-a": true, "-k": true, "-timeout": true, "-c": true, "-config": true, "--config": true}

// commandArgs drops the global flags and their values from args.
func commandArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, hasValue := strings.Cut(arg, "=")
		if !globalFlags[name] {
			out = append(out, arg)
			continue
		}
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}
	return out
}
