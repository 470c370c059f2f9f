package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fintra/internal/apperr"
	"fintra/internal/auth"
	"fintra/internal/config"
	"fintra/internal/db"
	"fintra/internal/ledger"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dsn := fs.String("db", "", "Database URL (defaults to DATABASE_URL)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-password <password>] [-db <database_url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	cfg := config.Read()
	if *dsn != "" {
		cfg.DatabaseURL = *dsn
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no database: pass -db or set DATABASE_URL")
	}
	if err := cfg.ValidateArgon2(); err != nil {
		return err
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.WarnLevel)

	gdb, err := db.Open(cfg.DatabaseURL, db.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close(gdb)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, gdb, &auth.User{}, &ledger.Transaction{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	accounts := &auth.Service{
		Users: auth.NewIdentityStore(gdb, cfg.StoreTimeout),
		Hasher: auth.NewHasher(cfg.PasswordPepper, auth.Argon2Params{
			Memory:      cfg.Argon2MemoryKiB,
			Iterations:  cfg.Argon2Iterations,
			Parallelism: uint8(cfg.Argon2Parallelism),
			KeyLength:   auth.DefaultArgon2Params.KeyLength,
		}),
		Log: logger,
	}

	user, err := accounts.CreateAccount(ctx, strings.TrimSpace(*email), password)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return fmt.Errorf("user %s already exists", *email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
