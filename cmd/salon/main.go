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
	"sort"
	"syscall"

	"github.com/diagnosis/salon-bookings/internal/app"
	"github.com/diagnosis/salon-bookings/pkg/config"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/google/uuid"
)

type command struct {
	usage string
	run   func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"login":         {"login -email E -password P", runLogin},
	"signup":        {"signup -surname S -given G -email E -phone P -password P -confirm P [-role client|specialist]", runSignUp},
	"logout":        {"logout", runLogout},
	"whoami":        {"whoami", runWhoAmI},
	"home":          {"home", runHome},
	"services":      {"services", runServices},
	"service":       {"service ID", runService},
	"specialists":   {"specialists", runSpecialists},
	"specialist":    {"specialist ID", runSpecialist},
	"availability":  {"availability -specialist ID -date YYYY-MM-DD", runAvailability},
	"appointments":  {"appointments", runAppointments},
	"appointment":   {"appointment ID", runAppointment},
	"book":          {"book -service ID -specialist ID -date YYYY-MM-DD -time HH:MM [-notes N]", runBook},
	"cancel":        {"cancel ID", runCancel},
	"cards":         {"cards", runCards},
	"add-card":      {"add-card -number N -expiry MM/YY -cvv C", runAddCard},
	"remove-card":   {"remove-card ID", runRemoveCard},
	"default-card":  {"default-card ID", runDefaultCard},
	"pay":           {"pay -appointment ID -amount A [-mode card|cash] [-card ID]", runPay},
	"reviews":       {"reviews [-specialist ID]", runReviews},
	"review":        {"review -appointment ID -rating 1-5 [-comment C]", runReview},
	"notifications": {"notifications", runNotifications},
	"read":          {"read ID", runRead},
	"read-all":      {"read-all", runReadAll},
	"listen":        {"listen", runListen},
	"chats":         {"chats [-q NAME]", runChats},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("salon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	demo := fs.Bool("demo", false, "serve demo data when the gateway is unreachable")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger.SetOutput(stderr, level)

	if fs.NArg() == 0 {
		usage(stderr)
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(stderr)
		return 2
	}

	cfg := config.Load()
	if *demo {
		cfg.API.DemoMode = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, logger.RequestIDKey, uuid.NewString())

	a, err := app.New(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "startup failed: %v\n", err)
		return 1
	}
	defer a.Close()

	if _, err := a.Restore(ctx); err != nil {
		logger.WarnContext(ctx, "Failed to restore session", "error", err)
	}

	c := &cli{app: a, out: stdout}
	if err := cmd.run(ctx, c, rest); err != nil {
		if !errors.Is(err, errShown) {
			a.Toaster.Error(err.Error())
		}
		logger.DebugContext(ctx, "Command failed", "command", name, "error", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: salon [-demo] [-v] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", commands[n].usage)
	}
}
