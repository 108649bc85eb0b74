package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/people"
)

type personJSON struct {
	*models.Person
	Active     bool `json:"active"`
	CrossRealm bool `json:"cross_realm"`
}

func newPeopleCmd(a *app) *cobra.Command {
	var statePath string

	cmd := &cobra.Command{
		Use:   "people [QUERY]",
		Short: "Look up people in a session",
		Long: `List the active people of a session, or look one up by user id,
email or full name. Names and emails match case-insensitively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInputFiles(statePath, "")
			if err != nil {
				return err
			}
			res, err := a.replay(cmd.Context(), in, replayOptions{})
			if err != nil {
				return err
			}
			idx := res.sess.People()

			var found []*models.Person
			if len(args) == 0 {
				found = idx.GetRealmPersons()
			} else {
				person, ok := lookupPerson(idx, args[0])
				if !ok {
					return fmt.Errorf("no person matches %q", args[0])
				}
				found = []*models.Person{person}
			}
			return a.printPeople(idx, found)
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "initial state JSON file (required)")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

// lookupPerson treats numeric queries as user ids and anything with an @ as
// an email.
func lookupPerson(idx *people.Index, query string) (*models.Person, bool) {
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		return idx.GetByUserID(models.UserID(id))
	}
	if strings.Contains(query, "@") {
		return idx.GetByEmail(query)
	}
	return idx.GetByName(query)
}

func (a *app) printPeople(idx *people.Index, found []*models.Person) error {
	if a.isJSON() {
		out := make([]personJSON, 0, len(found))
		for _, p := range found {
			out = append(out, personJSON{
				Person:     p,
				Active:     idx.IsActive(p.UserID),
				CrossRealm: idx.IsCrossRealmEmail(p.Email),
			})
		}
		return writeJSON(a.out, out)
	}

	rows := make([][]string, 0, len(found))
	for _, p := range found {
		rows = append(rows, []string{
			strconv.FormatInt(int64(p.UserID), 10),
			p.FullName,
			p.Email,
			formatYesNo(idx.IsActive(p.UserID)),
			formatYesNo(p.IsBot),
			idx.GetMentionSyntax(p.FullName, p.UserID, false),
		})
	}
	return writeTable(a.out, []string{"ID", "NAME", "EMAIL", "ACTIVE", "BOT", "MENTION"}, rows)
}
