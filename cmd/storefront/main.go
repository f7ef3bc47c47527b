// Command storefront is a terminal client for the storefront backend.
//
//	storefront login -u admin -p admin123
//	storefront products -search tea
//	storefront add -product 3 -qty 2 -address 14
//	storefront checkout
//
// The session is kept in a local SQLite file between runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/config"
	"github.com/mmynk/storefront/internal/storage/sqlite"
	"github.com/mmynk/storefront/pkg/logging"
)

const usage = `usage: storefront [-metrics] <command> [flags]

commands:
  login      log in (-u, -p)
  logout     log out
  whoami     show the logged-in profile
  products   list products (-search, -category, -featured) or show one (-id)
  categories list product categories
  cart       list the cart
  add        add a product to the cart (-product, -qty, -address, -notes)
  update     change a cart line's quantity (-id, -qty)
  remove     remove a cart line (-id)
  checkout   order cart lines, one order per address (-items, -address)
  orders     list orders, show one (-id) or delete one (-delete)
  addresses  list, add (-add) or delete (-delete) delivery addresses
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logging.Setup()
	cfg := config.Load()

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	showMetrics := fs.Bool("metrics", false, "print request metrics on exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := sqlite.New(cfg.SessionDBPath)
	if err != nil {
		slog.Error("Failed to open session storage", "path", cfg.SessionDBPath, "error", err)
		return 1
	}
	defer store.Close()

	a := newApp(cfg, store, stdout, slog.Default())
	if err := a.session.Restore(ctx); err != nil {
		slog.Warn("Could not restore session", "error", err)
	}

	err = a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
	if saveErr := a.session.Save(ctx); saveErr != nil {
		slog.Warn("Could not save session", "error", saveErr)
	}
	if *showMetrics {
		a.writeMetrics(stderr)
	}

	if err != nil {
		report(stderr, err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

// report prints err for a person. Silent errors mean "not logged in" and
// are reported as exactly that.
func report(w io.Writer, err error) {
	if apierr.IsSilent(err) {
		fmt.Fprintln(w, "please log in")
		return
	}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintln(w, apierr.UserMessage(err))
		return
	}
	fmt.Fprintln(w, err)
}
