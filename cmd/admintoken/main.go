// Command admintoken mints a signed bearer token for the admin order routes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"bookstore-be/internal/auth"
	"bookstore-be/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "admintoken:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("admintoken", flag.ContinueOnError)
	subject := fs.String("sub", "", "token subject, e.g. the operator's email")
	role := fs.String("role", auth.RoleAdmin, "role claim")
	ttl := fs.Duration("ttl", 12*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *subject == "" {
		return errors.New("-sub is required")
	}

	// Only JWT_SECRET is needed here; the DB settings may be absent.
	var secret string
	if cfg, err := config.Load(); err == nil {
		secret = cfg.JWTSecret
	} else {
		secret = os.Getenv("JWT_SECRET")
	}

	token, err := auth.GenerateToken(secret, *subject, *role, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
