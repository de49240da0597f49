// ABOUTME: serve subcommand running the web server and the reminder scheduler
// ABOUTME: Both stop together when the context is cancelled
package cli

import (
	"context"
	"flag"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/config"
	"github.com/networkia/networkia/reminders"
	"github.com/networkia/networkia/store"
	"github.com/networkia/networkia/web"
)

// ServeCommand serves the web UI and API until ctx is done.
func ServeCommand(ctx context.Context, cfg *config.Config, sel *store.Selector, logger *zap.Logger, agendaOpts []agenda.Option, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", cfg.Listen, "HTTP listen address")
	noReminders := fs.Bool("no-reminders", false, "Do not run the reminder scheduler")
	open := fs.Bool("open", false, "Open the web UI in a browser")
	_ = fs.Parse(args)

	srv, err := web.NewServer(sel, web.Options{
		Theme:         cfg.Theme,
		UpcomingDays:  cfg.UpcomingDays,
		Logger:        logger,
		AgendaOptions: agendaOpts,
	})
	if err != nil {
		return err
	}

	if !*noReminders {
		scheduler, err := reminders.New(sel, cfg.ReminderCron, logger, agendaOpts...)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(context.Background()); err != nil {
				logger.Warn("reminder scheduler did not stop cleanly", zap.Error(err))
			}
		}()
	}

	if *open {
		if err := openBrowser(browserURL(*listen)); err != nil {
			logger.Warn("failed to open browser", zap.Error(err))
		}
	}

	return srv.Start(ctx, *listen)
}

// browserURL turns a listen address into something a browser can open.
func browserURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("http://%s:%s/", host, port)
}

// RemindCommand runs one reminder sweep immediately and prints the report.
func RemindCommand(ctx context.Context, sel *store.Selector, logger *zap.Logger, agendaOpts []agenda.Option) error {
	scheduler, err := reminders.New(sel, "", logger, agendaOpts...)
	if err != nil {
		return err
	}
	report, err := scheduler.RunOnce(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Swept %d address book(s): %d advanced, %d due today, %d birthday(s)\n",
		report.Stores, report.Advanced, report.DueToday, report.Birthdays)
	return nil
}
