// ABOUTME: Local-to-account import CLI command and browser helper
// ABOUTME: Copies signed-out local data into a server account in one batch
package cli

import (
	"context"
	"flag"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/networkia/networkia/store"
)

// ImportLocalCommand copies a local scope into the signed-in user's account.
func ImportLocalCommand(ctx context.Context, sel *store.Selector, session store.Session, args []string) error {
	fs := flag.NewFlagSet("import-local", flag.ExitOnError)
	scope := fs.String("scope", sel.LocalScope(), "Local scope to import from")
	clearLocal := fs.Bool("clear", false, "Delete the local data after a successful import")
	_ = fs.Parse(args)

	if !session.Authenticated() {
		return fmt.Errorf("sign in with --user to import local data")
	}
	to := sel.Server(session.UserID)
	if to == nil {
		return fmt.Errorf("no server database configured")
	}
	from := sel.Local(*scope)

	_, _ = fmt.Fprintf(stdout, "Importing local scope %q into %s...\n", from.Scope(), to.Scope())

	result, err := store.Import(ctx, from, to)
	if err != nil {
		return fmt.Errorf("import failed after %d contact(s): %w", result.Contacts, err)
	}

	_, _ = fmt.Fprintf(stdout, "  ✓ %d contact(s) imported, %d already present\n", result.Contacts, result.Skipped)
	_, _ = fmt.Fprintf(stdout, "  ✓ %d circle(s), %d note(s), %d interaction(s)\n", result.Circles, result.Notes, result.Interactions)
	if result.Reslugged > 0 {
		_, _ = fmt.Fprintf(stdout, "  ✓ %d public profile link(s) reassigned\n", result.Reslugged)
	}

	if *clearLocal {
		if err := from.Clear(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "  ✓ Local scope %q cleared\n", from.Scope())
	}
	return nil
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
