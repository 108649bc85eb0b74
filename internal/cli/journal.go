package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tOgg1/tally/internal/db"
	"github.com/tOgg1/tally/internal/events"
	"github.com/tOgg1/tally/internal/models"
)

func newJournalCmd(a *app) *cobra.Command {
	var (
		eventType string
		sessionID string
		limit     int
		prune     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show count changes recorded by fixture replay --journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := db.NewEventRepository(database)
			if prune > 0 {
				deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Pruned %d events\n", deleted)
				return nil
			}

			q := db.EventQuery{Limit: limit}
			if eventType != "" {
				t := models.EventType(eventType)
				q.Type = &t
			}
			if sessionID != "" {
				q.EntityID = &sessionID
			}
			page, err := repo.Query(ctx, q)
			if err != nil {
				return err
			}

			if a.isJSON() {
				list := page.Events
				if list == nil {
					list = []*models.Event{}
				}
				return writeJSON(a.out, list)
			}
			if len(page.Events) == 0 {
				fmt.Fprintln(a.out, "No journaled events")
				return nil
			}

			rows := make([][]string, 0, len(page.Events))
			for _, ev := range page.Events {
				rows = append(rows, []string{
					ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
					shortID(ev.EntityID),
					string(ev.Type),
					describeJournalEvent(ev),
				})
			}
			return writeTable(a.out, []string{"TIME", "SESSION", "TYPE", "DETAIL"}, rows)
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "only events of this type")
	cmd.Flags().StringVar(&sessionID, "session", "", "only events of this session id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events to show")
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete events older than this instead of listing")
	return cmd
}

func describeJournalEvent(ev *models.Event) string {
	if ev.Type != models.EventTypeCountsChanged {
		return ""
	}
	var payload models.CountsChangedPayload
	if err := events.DecodePayload(ev, &payload); err != nil {
		return "(bad payload)"
	}
	return fmt.Sprintf("%s: home=%d private=%d mentions=%d",
		payload.Reason, payload.HomeUnreadMessages, payload.PrivateMessageCount, payload.MentionedMessageCount)
}
