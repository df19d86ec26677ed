package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"brecimport/internal/config"
	"brecimport/internal/services"
)

// promptCredentials asks for whatever half of the API credentials is missing.
// Prompting needs an interactive terminal; the password is read without echo.
func promptCredentials(in io.Reader, out io.Writer, cfg *config.Config) error {
	if cfg.API.User != "" && cfg.API.Password != "" {
		return nil
	}
	file, ok := in.(*os.File)
	if !ok || !isTerminal(file) {
		return services.Wrap(services.ErrSetup, "credentials", "",
			"catalog user and password are required; pass --user/--pass or set BRECIMPORT_USER/BRECIMPORT_PASS", nil)
	}

	if cfg.API.User == "" {
		fmt.Fprint(out, "Catalog user: ")
		line, err := bufio.NewReader(file).ReadString('\n')
		if err != nil && line == "" {
			return services.Wrap(services.ErrSetup, "credentials", "read user", "", err)
		}
		cfg.API.User = strings.TrimSpace(line)
	}
	if cfg.API.Password == "" {
		fmt.Fprint(out, "Catalog password: ")
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return services.Wrap(services.ErrSetup, "credentials", "read password", "", err)
		}
		cfg.API.Password = string(secret)
	}
	if cfg.API.User == "" || cfg.API.Password == "" {
		return services.Wrap(services.ErrSetup, "credentials", "", "catalog user and password must not be empty", nil)
	}
	return nil
}

func isTerminal(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
