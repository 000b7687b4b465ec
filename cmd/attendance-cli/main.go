// Command attendance-cli shows and edits the weekly attendance grid against a
// running API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/logistik-admin-api/internal/attendance"
	"github.com/noah-isme/logistik-admin-api/internal/client"
	"github.com/noah-isme/logistik-admin-api/pkg/config"
	"github.com/noah-isme/logistik-admin-api/pkg/logger"
)

type options struct {
	api      string
	token    string
	username string
	password string
	date     string
	week     int
	ops      []string
	save     bool
	yes      bool
	logLevel string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts := options{}
	fs := pflag.NewFlagSet("attendance-cli", pflag.ContinueOnError)
	fs.StringVar(&opts.api, "api", cfg.Client.BaseURL, "API base URL including prefix, e.g. http://localhost:8080/api/v1")
	fs.StringVar(&opts.token, "token", cfg.Client.Token, "bearer token")
	fs.StringVar(&opts.username, "username", cfg.Client.Username, "login username when no token is given")
	fs.StringVar(&opts.password, "password", cfg.Client.Password, "login password when no token is given")
	fs.StringVar(&opts.date, "date", "", "any date in the week to open (YYYY-MM-DD), defaults to today")
	fs.IntVar(&opts.week, "week", 0, "weeks to move from --date, negative goes back")
	fs.StringArrayVar(&opts.ops, "op", nil, "edit operation: activate:DATE, deactivate:DATE or toggle:DATE:EMPLOYEE_ID (repeatable)")
	fs.BoolVar(&opts.save, "save", false, "submit the edits")
	fs.BoolVarP(&opts.yes, "yes", "y", false, "answer yes to every confirmation")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logr, err := logger.NewCLI(opts.logLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	ops, err := parseOps(opts.ops)
	if err != nil {
		return err
	}

	loc := cfg.Location()
	anchor := time.Now().In(loc)
	if opts.date != "" {
		anchor, err = attendance.ParseDateKey(opts.date, loc)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := client.New(client.Config{BaseURL: opts.api, Token: opts.token, Timeout: cfg.Client.Timeout}, logr)
	if err != nil {
		return err
	}
	if api.Token() == "" {
		if opts.username == "" || opts.password == "" {
			return errors.New("either --token or --username and --password are required")
		}
		if _, err := api.Login(ctx, opts.username, opts.password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		logr.Debug("logged in", zap.String("username", opts.username))
	}

	reader := bufio.NewReader(stdin)
	var confirmer attendance.Confirmer
	if !opts.yes {
		confirmer = attendance.ConfirmFunc(func(prompt string) bool {
			return ask(reader, stdout, prompt)
		})
	}

	editor, err := attendance.NewEditor(attendance.EditorParams{
		Source:    api,
		Submitter: api,
		Confirmer: confirmer,
		Notifier:  &printNotifier{out: stdout},
		Logger:    logr,
		Location:  loc,
		Anchor:    anchor,
	})
	if err != nil {
		return err
	}

	if err := editor.Load(ctx); err != nil {
		return err
	}
	for i := opts.week; i < 0; i++ {
		if err := editor.PreviousWeek(ctx); err != nil {
			return err
		}
	}
	for i := 0; i < opts.week; i++ {
		if err := editor.NextWeek(ctx); err != nil {
			return err
		}
	}

	if len(ops) == 0 {
		fmt.Fprintln(stdout, renderGrid(editor.Grid()))
		return nil
	}

	if err := editor.BeginEdit(); err != nil {
		return err
	}
	for _, op := range ops {
		if err := op.apply(editor); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	fmt.Fprintln(stdout, renderGrid(editor.Grid()))

	if !opts.save {
		fmt.Fprintln(stdout, mutedStyle.Render("perubahan belum disimpan, jalankan dengan --save untuk menyimpan"))
		return nil
	}

	if _, err := editor.Save(ctx); err != nil {
		return err
	}
	if editor.Stale() {
		fmt.Fprintln(stdout, mutedStyle.Render("data tersimpan, tetapi gagal memuat ulang minggu ini"))
		return nil
	}
	fmt.Fprintln(stdout, renderGrid(editor.Grid()))
	return nil
}

func ask(reader *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "ya":
		return true
	default:
		return false
	}
}

type printNotifier struct {
	out io.Writer
}

func (n *printNotifier) Success(message string) {
	fmt.Fprintln(n.out, successStyle.Render(message))
}

func (n *printNotifier) Failure(err error) {
	fmt.Fprintln(n.out, errorStyle.Render(err.Error()))
}
