// ABOUTME: Entry point for the Networkia CLI, web server and MCP server
// ABOUTME: Loads config, opens both storage backends and routes to subcommands
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/cli"
	"github.com/networkia/networkia/config"
	"github.com/networkia/networkia/db"
	"github.com/networkia/networkia/localstore"
	"github.com/networkia/networkia/store"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/networkia/config.yaml)")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/networkia/networkia.db)")
	localDir := flag.String("local-dir", "", "Local store directory (default: ~/.local/share/networkia/local)")
	user := flag.String("user", "", "Act on this account's address book instead of the local one")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	initOnly := flag.Bool("init", false, "Initialize storage and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("networkia version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	if err := config.LoadEnvFiles(); err != nil {
		log.Fatalf("Error: %v", err)
	}
	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *localDir != "" {
		cfg.LocalDir = *localDir
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	agendaOpts := []agenda.Option{agenda.WithLocation(loc), agenda.WithLogger(logger)}

	database, err := db.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	kv, err := localstore.Open(cfg.LocalDir)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer kv.Close()

	sel := store.NewSelector(database, kv, cfg.LocalScope)
	session := store.Session{UserID: *user}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := store.SeedCircles(ctx, sel.For(session), cfg.DefaultCircles); err != nil {
		logger.Warn("failed to seed default circles", zap.Error(err))
	} else if n > 0 {
		logger.Debug("seeded default circles", zap.Int("count", n))
	}

	if *initOnly {
		log.Printf("Database: %s", cfg.DatabasePath)
		log.Printf("Local store: %s", cfg.LocalDir)
		log.Println("Storage initialized successfully")
		return
	}

	a := agenda.New(sel.For(session), agendaOpts...)

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		run(cli.MCPCommand(ctx, a, version, logger))

	case "tui":
		run(cli.TUICommand(ctx, a))

	case "serve":
		run(cli.ServeCommand(ctx, cfg, sel, logger, agendaOpts, commandArgs))

	case "remind":
		run(cli.RemindCommand(ctx, sel, logger, agendaOpts))

	case "import-local":
		run(cli.ImportLocalCommand(ctx, sel, session, commandArgs))

	case "contact":
		sub, subArgs := subcommand("contact", commandArgs)
		switch sub {
		case "add":
			run(cli.AddContactCommand(a, subArgs))
		case "list":
			run(cli.ListContactsCommand(a, subArgs))
		case "show":
			run(cli.ShowContactCommand(a, subArgs))
		case "update":
			run(cli.UpdateContactCommand(a, subArgs))
		case "delete":
			run(cli.DeleteContactCommand(a, subArgs))
		default:
			unknown("contact command", sub)
		}

	case "circle":
		sub, subArgs := subcommand("circle", commandArgs)
		switch sub {
		case "add":
			run(cli.CircleAddCommand(a, subArgs))
		case "list":
			run(cli.CircleListCommand(a, subArgs))
		case "delete":
			run(cli.CircleDeleteCommand(a, subArgs))
		default:
			unknown("circle command", sub)
		}

	case "note":
		run(cli.NoteCommand(a, commandArgs))
	case "log":
		run(cli.LogInteractionCommand(a, commandArgs))
	case "upcoming":
		run(cli.UpcomingCommand(a, commandArgs))
	case "advance":
		run(cli.AdvanceCommand(a, commandArgs))
	case "export":
		run(cli.ExportCommand(a, commandArgs))

	case "viz":
		sub, subArgs := subcommand("viz", commandArgs)
		switch sub {
		case "graph":
			graphType, graphArgs := subcommand("viz graph", subArgs)
			switch graphType {
			case "circles":
				run(cli.VizGraphCirclesCommand(a, graphArgs))
			case "contact":
				run(cli.VizGraphContactCommand(a, graphArgs))
			default:
				unknown("graph type", graphType)
			}
		case "dashboard":
			run(cli.VizDashboardCommand(a, subArgs))
		default:
			unknown("viz command", sub)
		}

	default:
		unknown("command", command)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// run exits with the error when a command fails. Deferred closes are skipped
// on that path, which the sqlite WAL and badger both tolerate.
func run(err error) {
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func subcommand(parent string, args []string) (string, []string) {
	if len(args) == 0 {
		fmt.Printf("Error: %s requires a subcommand\n\n", parent)
		printUsage()
		os.Exit(1)
	}
	return args[0], args[1:]
}

func unknown(kind, name string) {
	fmt.Printf("Unknown %s: %s\n\n", kind, name)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`networkia v%s - Personal CRM with next-meet reminders

USAGE:
  networkia [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/networkia/config.yaml)
  --db-path <path>       Database path (default: ~/.local/share/networkia/networkia.db)
  --local-dir <path>     Local store directory (default: ~/.local/share/networkia/local)
  --user <id>            Use this account's address book (default: the local one)
  --verbose              Enable debug logging
  --init                 Initialize storage and exit

COMMANDS:
  contact                Manage contacts
  circle                 Manage circles
  note                   Add a note to a contact
  log                    Log an interaction with a contact
  upcoming               Show upcoming and overdue meets and birthdays
  advance                Roll recurring next meets forward to today
  export                 Export next meets and birthdays as an .ics calendar
  import-local           Copy the local address book into an account
  serve                  Start the web UI, JSON API and reminder scheduler
  remind                 Run one reminder sweep now
  mcp                    Start MCP server on stdio
  tui                    Browse contacts and upcoming meets interactively
  viz                    Visualization commands

CONTACT COMMANDS:
  networkia contact add       Add a new contact
    --name <name>               Contact name (required)
    --email <email>             Email address
    --phone <phone>             Phone number
    --company <company>         Company name
    --bio <text>                Short bio
    --birthday <text>           Birthday, e.g. "March 14"
    --next-meet <YYYY-MM-DD>    Next meet date
    --cadence <cadence>         none, weekly, biweekly, monthly, quarterly
    --circles <a,b>             Comma-separated circle names

  networkia contact list      List contacts
    --query <text>              Search by name, email or company
    --circle <name>             Filter by circle
    --limit <n>                 Max results (default: 50)

  networkia contact show <id>           Show a contact with notes and interactions
  networkia contact update [flags] <id> Update a contact (same flags as add)
    --next-meet none            Clear the next meet
    --public true|false         Publish or hide the profile page
  networkia contact delete <id>         Delete a contact

CIRCLE COMMANDS:
  networkia circle add [--color <hex>] <name>
  networkia circle list
  networkia circle delete <name>        Delete a circle and remove it from contacts

FOLLOW-UP COMMANDS:
  networkia note --text <text> <id>
  networkia log [--type <type>] [--notes <text>] [--date <YYYY-MM-DD>] <id>
    Types: meeting, call, email, message, event
  networkia upcoming [--days <n>] [--overdue-only]
  networkia advance
  networkia export [--contact <id>] [--output <file.ics>]

ACCOUNT COMMANDS:
  networkia --user <id> import-local [--scope <name>] [--clear]

SERVER COMMANDS:
  networkia serve [--listen <addr>] [--no-reminders] [--open]
  networkia remind
  networkia mcp
  networkia tui

VISUALIZATION COMMANDS:
  networkia viz graph circles [--format dot|svg] [--output <file>]
  networkia viz graph contact [--format dot|svg] [--output <file>] <id>
  networkia viz dashboard

EXAMPLES:
  networkia contact add --name "Ana" --next-meet 2024-03-01 --cadence monthly --circles Friends
  networkia upcoming --days 30
  networkia export --output ~/networkia.ics
  networkia serve --open

DATA:
  Config:       ~/.config/networkia/config.yaml
  Database:     ~/.local/share/networkia/networkia.db
  Local store:  ~/.local/share/networkia/local

`, version)
}
