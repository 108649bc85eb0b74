package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tOgg1/tally/internal/config"
	"github.com/tOgg1/tally/internal/db"
	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/session"
)

func newFixtureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fixture",
		Aliases: []string{"fixtures"},
		Short:   "Manage saved sessions",
		Long:    "Save session states and event streams in the local database and replay them.",
	}
	cmd.AddCommand(
		newFixtureImportCmd(a),
		newFixtureAppendCmd(a),
		newFixtureListCmd(a),
		newFixtureReplayCmd(a),
		newFixtureRmCmd(a),
		newFixtureUseCmd(a),
	)
	return cmd
}

func newFixtureImportCmd(a *app) *cobra.Command {
	var statePath, eventsPath string

	cmd := &cobra.Command{
		Use:   "import NAME",
		Short: "Save a state file and event stream as a fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in, err := readInputFiles(statePath, eventsPath)
			if err != nil {
				return err
			}
			// Reject state a replay could not load.
			if _, err := session.DecodeInitialState(in.State); err != nil {
				return err
			}

			database, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			fixture := &models.Fixture{Name: args[0], State: in.State}
			if err := db.NewFixtureRepository(database).Create(ctx, fixture, fixtureEvents(in.Events)); err != nil {
				if errors.Is(err, db.ErrFixtureAlreadyExists) {
					return fmt.Errorf("fixture %q already exists", args[0])
				}
				return err
			}

			logging.Info().Str("fixture", fixture.Name).Int("events", len(in.Events)).Msg("fixture imported")
			if a.isJSON() {
				return writeJSON(a.out, fixture)
			}
			fmt.Fprintf(a.out, "Imported fixture %s (%s) with %d events\n", fixture.Name, shortID(fixture.ID), len(in.Events))
			return nil
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "initial state JSON file (required)")
	cmd.Flags().StringVar(&eventsPath, "events", "", "JSONL file of events")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func newFixtureAppendCmd(a *app) *cobra.Command {
	var eventsPath string

	cmd := &cobra.Command{
		Use:   "append [NAME]",
		Short: "Append events to a fixture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in, err := readEventsFile(eventsPath)
			if err != nil {
				return err
			}

			database, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := db.NewFixtureRepository(database)
			fixture, err := a.resolveFixture(ctx, repo, args)
			if err != nil {
				return err
			}
			for _, ev := range fixtureEvents(in) {
				if err := repo.AppendEvent(ctx, fixture.ID, ev); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.out, "Appended %d events to %s\n", len(in), fixture.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventsPath, "events", "", "JSONL file of events (required)")
	_ = cmd.MarkFlagRequired("events")
	return cmd
}

func newFixtureListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List fixtures",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := db.NewFixtureRepository(database)
			fixtures, err := repo.List(ctx)
			if err != nil {
				return err
			}
			if a.isJSON() {
				if fixtures == nil {
					fixtures = []*models.Fixture{}
				}
				return writeJSON(a.out, fixtures)
			}
			if len(fixtures) == 0 {
				fmt.Fprintln(a.out, "No fixtures")
				return nil
			}

			current := a.loadContext()
			rows := make([][]string, 0, len(fixtures))
			for _, f := range fixtures {
				evs, err := repo.Events(ctx, f.ID)
				if err != nil {
					return err
				}
				name := f.Name
				if current.FixtureID == f.ID {
					name = "* " + name
				}
				rows = append(rows, []string{
					name,
					shortID(f.ID),
					itoa(len(evs)),
					f.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			return writeTable(a.out, []string{"NAME", "ID", "EVENTS", "CREATED"}, rows)
		},
	}
}

func newFixtureReplayCmd(a *app) *cobra.Command {
	var (
		user    string
		journal bool
		trace   bool
	)

	cmd := &cobra.Command{
		Use:   "replay [NAME]",
		Short: "Replay a fixture and print its unread counts",
		Long: `Replay a saved fixture. Without NAME the fixture selected with
"tally fixture use" is replayed. With --journal every count change is
recorded in the local event journal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := db.NewFixtureRepository(database)
			fixture, err := a.resolveFixture(ctx, repo, args)
			if err != nil {
				return err
			}
			stored, err := repo.Events(ctx, fixture.ID)
			if err != nil {
				return err
			}
			in := replayInput{State: fixture.State}
			for _, fe := range stored {
				ev, err := session.DecodeEvent(fe.Payload)
				if err != nil {
					return fmt.Errorf("fixture event %d: %w", fe.Seq, err)
				}
				in.Events = append(in.Events, ev)
			}

			opts := replayOptions{
				UserID: models.UserID(a.loadContext().UserID),
				Trace:  trace,
			}
			if user != "" {
				if opts.UserID, err = parseUserID(user); err != nil {
					return err
				}
			}
			if journal {
				opts.Journal = db.NewEventRepository(database)
			}

			res, err := a.replay(ctx, in, opts)
			if err != nil {
				return err
			}
			return a.printResult(res)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "view the session as this user id")
	cmd.Flags().BoolVar(&journal, "journal", false, "record count changes in the event journal")
	cmd.Flags().BoolVar(&trace, "trace", false, "print each count change to stderr")
	return cmd
}

func newFixtureRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Delete a fixture",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := db.NewFixtureRepository(database)
			fixture, err := a.resolveFixture(ctx, repo, args)
			if err != nil {
				return err
			}
			if err := repo.Delete(ctx, fixture.ID); err != nil {
				return err
			}

			store := config.ContextStoreFor(a.cfg)
			if current := a.loadContext(); current.FixtureID == fixture.ID {
				if err := store.Clear(); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.out, "Deleted fixture %s\n", fixture.Name)
			return nil
		},
	}
}

func newFixtureUseCmd(a *app) *cobra.Command {
	var (
		user     string
		clearSel bool
	)

	cmd := &cobra.Command{
		Use:   "use [NAME]",
		Short: "Select the fixture other commands default to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.ContextStoreFor(a.cfg)
			if clearSel {
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Context cleared")
				return nil
			}

			current := a.loadContext()
			if len(args) == 1 {
				ctx := cmd.Context()
				database, err := a.openDatabase(ctx)
				if err != nil {
					return err
				}
				defer database.Close()

				fixture, err := db.NewFixtureRepository(database).GetByName(ctx, args[0])
				if err != nil {
					if errors.Is(err, db.ErrFixtureNotFound) {
						return fmt.Errorf("fixture %q not found", args[0])
					}
					return err
				}
				current.SetFixture(fixture.ID, fixture.Name)
			}
			if user != "" {
				userID, err := parseUserID(user)
				if err != nil {
					return err
				}
				current.SetUser(int64(userID))
			}
			if len(args) == 1 || user != "" {
				if err := store.Save(current); err != nil {
					return err
				}
			}

			if a.isJSON() {
				return writeJSON(a.out, current)
			}
			fmt.Fprintf(a.out, "Context: %s\n", current.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "view fixtures as this user id")
	cmd.Flags().BoolVar(&clearSel, "clear", false, "clear the selection")
	return cmd
}

// resolveFixture finds the fixture named in args, or the selected one.
func (a *app) resolveFixture(ctx context.Context, repo *db.FixtureRepository, args []string) (*models.Fixture, error) {
	if len(args) == 1 {
		fixture, err := repo.GetByName(ctx, args[0])
		if errors.Is(err, db.ErrFixtureNotFound) {
			return nil, fmt.Errorf("fixture %q not found", args[0])
		}
		return fixture, err
	}

	current := a.loadContext()
	if !current.HasFixture() {
		return nil, fmt.Errorf("no fixture named and none selected (see tally fixture use)")
	}
	fixture, err := repo.Get(ctx, current.FixtureID)
	if errors.Is(err, db.ErrFixtureNotFound) {
		return nil, fmt.Errorf("selected fixture %s no longer exists", current.String())
	}
	return fixture, err
}

// loadContext returns the saved selection. An unreadable context file is
// logged and treated as empty.
func (a *app) loadContext() *config.Context {
	current, err := config.ContextStoreFor(a.cfg).Load()
	if err != nil {
		logging.Warn().Err(err).Msg("ignoring unreadable context file")
		return &config.Context{}
	}
	return current
}

func fixtureEvents(evs []session.Event) []*models.FixtureEvent {
	out := make([]*models.FixtureEvent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, &models.FixtureEvent{Type: ev.Type, Payload: ev.Raw()})
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
