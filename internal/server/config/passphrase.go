package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// ResolvePassphrase prompts for the master passphrase on in when it is not
// configured and in is a terminal. Otherwise it leaves the config as is.
func (c *Config) ResolvePassphrase(in *os.File, prompt io.Writer) error {
	if c.MasterPassphrase != "" {
		return nil
	}
	fd := int(in.Fd())
	if !isTerminal(fd) {
		return nil
	}

	fmt.Fprint(prompt, "Master passphrase: ")
	b, err := readPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}

	c.MasterPassphrase = strings.TrimRight(string(b), "\r\n")
	return nil
}
