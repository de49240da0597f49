// ABOUTME: One-shot batch import from a local scope into a server account
// ABOUTME: Existing IDs on the destination are skipped, and a failed import leaves nothing behind

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/networkia/networkia/models"
)

// ImportResult counts what an Import copied and skipped.
type ImportResult struct {
	Contacts     int `json:"contacts"`
	Skipped      int `json:"skipped"`
	Circles      int `json:"circles"`
	Notes        int `json:"notes"`
	Interactions int `json:"interactions"`
	Reslugged    int `json:"reslugged"`
}

// Import copies circles, contacts, notes and interactions from one store into
// another. A contact already present on the destination is skipped together
// with its notes and interactions, and circles that already exist keep their
// color. A public slug held elsewhere is replaced with a fresh one.
//
// Import is all or nothing: when any write fails, everything it created is
// removed again before the error is returned.
func Import(ctx context.Context, from, to Store) (ImportResult, error) {
	var result ImportResult
	imp := &importer{from: from, to: to}

	if err := imp.run(ctx, &result); err != nil {
		if rerr := imp.rollback(context.WithoutCancel(ctx)); rerr != nil {
			return ImportResult{}, fmt.Errorf("%w (rollback failed: %v)", err, rerr)
		}
		return ImportResult{}, err
	}
	return result, nil
}

type importer struct {
	from, to Store

	createdContacts []uuid.UUID
	createdCircles  []string
}

func (imp *importer) run(ctx context.Context, result *ImportResult) error {
	existing, err := imp.to.ListCircles(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}

	circles, err := imp.from.ListCircles(ctx)
	if err != nil {
		return err
	}
	for i := range circles {
		if have[circles[i].Name] {
			continue
		}
		if err := imp.to.SaveCircle(ctx, &circles[i]); err != nil {
			return fmt.Errorf("failed to import circle %q: %w", circles[i].Name, err)
		}
		imp.createdCircles = append(imp.createdCircles, circles[i].Name)
		result.Circles++
	}

	contacts, err := imp.from.FindContacts(ctx, Filter{})
	if err != nil {
		return err
	}

	for i := range contacts {
		if err := ctx.Err(); err != nil {
			return err
		}

		contact := contacts[i]
		_, err := imp.to.GetContact(ctx, contact.ID)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		err = imp.to.CreateContact(ctx, &contact)
		if errors.Is(err, ErrSlugTaken) {
			contact.PublicSlug = models.NewPublicSlug()
			result.Reslugged++
			err = imp.to.CreateContact(ctx, &contact)
		}
		if err != nil {
			return fmt.Errorf("failed to import contact %s: %w", contact.ID, err)
		}
		imp.createdContacts = append(imp.createdContacts, contact.ID)
		result.Contacts++

		notes, err := imp.from.ListNotes(ctx, contact.ID)
		if err != nil {
			return err
		}
		for j := range notes {
			if err := imp.to.AddNote(ctx, &notes[j]); err != nil {
				return fmt.Errorf("failed to import note: %w", err)
			}
			result.Notes++
		}

		// Both backends page interaction history by default
		history, err := imp.from.ListInteractions(ctx, contact.ID, maxImportInteractions)
		if err != nil {
			return err
		}
		for j := range history {
			if err := imp.to.LogInteraction(ctx, &history[j]); err != nil {
				return fmt.Errorf("failed to import interaction: %w", err)
			}
			result.Interactions++
		}
	}

	return nil
}

// rollback deletes what run created. Deleting a contact takes its notes and
// interactions with it.
func (imp *importer) rollback(ctx context.Context) error {
	var errs []error
	for _, id := range imp.createdContacts {
		if err := imp.to.DeleteContact(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	for _, name := range imp.createdCircles {
		if err := imp.to.DeleteCircle(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const maxImportInteractions = 1 << 20

// SeedCircles creates the named circles in a store that has none yet. It
// returns how many were created.
func SeedCircles(ctx context.Context, s Store, names []string) (int, error) {
	existing, err := s.ListCircles(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, name := range names {
		if err := s.SaveCircle(ctx, &models.Circle{Name: name}); err != nil {
			return created, fmt.Errorf("failed to seed circle %q: %w", name, err)
		}
		created++
	}
	return created, nil
}
