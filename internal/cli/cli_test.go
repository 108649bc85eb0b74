package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/testutil"
)

type cliEnv struct {
	dir        string
	configPath string
	statePath  string
	eventsPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		statePath:  filepath.Join(dir, "state.json"),
		eventsPath: filepath.Join(dir, "events.jsonl"),
	}
	cfg := "global:\n" +
		"  data_dir: " + filepath.Join(dir, "data") + "\n" +
		"  config_dir: " + filepath.Join(dir, "config") + "\n" +
		"logging:\n" +
		"  level: error\n"
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(env.statePath, []byte(testutil.SampleState), 0o644))
	require.NoError(t, os.WriteFile(env.eventsPath, []byte(testutil.SampleEvents), 0o644))
	return env
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := e.runWithStderr(t, args...)
	return out, err
}

func (e *cliEnv) runWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd("test", &out, &errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "tally %v", args)
	return out
}

type countsJSON struct {
	UserID          models.UserID `json:"user_id"`
	Policy          string        `json:"policy"`
	NotifiableCount int           `json:"notifiable_count"`
	Applied         int           `json:"applied"`
	Skipped         int           `json:"skipped"`
	Counts          struct {
		Home     int            `json:"home_unread_messages"`
		Private  int            `json:"private_message_count"`
		Mentions int            `json:"mentioned_message_count"`
		PMCount  map[string]int `json:"pm_count"`
	} `json:"counts"`
}

func decodeCounts(t *testing.T, out string) countsJSON {
	t.Helper()
	var res countsJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestCounts_StateOnly(t *testing.T) {
	env := newCLIEnv(t)
	res := decodeCounts(t, env.mustRun(t, "counts", "--json", "--state", env.statePath))

	require.Equal(t, models.UserID(30), res.UserID)
	require.Equal(t, "notifiable", res.Policy)
	require.Equal(t, 6, res.Counts.Home)
	require.Equal(t, 3, res.Counts.Private)
	require.Equal(t, 2, res.Counts.Mentions)
	require.Equal(t, 5, res.NotifiableCount)
}

func TestCounts_WithEvents(t *testing.T) {
	env := newCLIEnv(t)
	res := decodeCounts(t, env.mustRun(t, "counts", "--json", "--state", env.statePath, "--events", env.eventsPath))

	require.Equal(t, 7, res.Applied)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, 5, res.Counts.Home)
	require.Equal(t, 3, res.Counts.Mentions)
	require.Equal(t, map[string]int{"101": 2, "101,102": 1}, res.Counts.PMCount)
}

func TestCounts_TableOutput(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "counts", "--state", env.statePath)

	require.Contains(t, out, "Home")
	require.Contains(t, out, "Notifiable (notifiable)")
	require.Contains(t, out, "devel")
	require.Contains(t, out, "noisy (muted)")
	require.Contains(t, out, "alice@example.com,bob@example.com")
	require.NotContains(t, out, "\x1b[")
}

func TestCounts_UserOverride(t *testing.T) {
	env := newCLIEnv(t)
	res := decodeCounts(t, env.mustRun(t, "counts", "--json", "--state", env.statePath, "--user", "101"))
	require.Equal(t, models.UserID(101), res.UserID)

	_, err := env.run(t, "counts", "--state", env.statePath, "--user", "alice")
	require.Error(t, err)
}

func TestCounts_PolicyFromConfig(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("TALLY_NOTIFICATIONS_DESKTOP_ICON_COUNT_DISPLAY", "all")

	res := decodeCounts(t, env.mustRun(t, "counts", "--json", "--state", env.statePath))
	require.Equal(t, "all", res.Policy)
	require.Equal(t, 6, res.NotifiableCount)
}

func TestCounts_TracePrintsEachChange(t *testing.T) {
	env := newCLIEnv(t)
	out, stderr, err := env.runWithStderr(t, "counts", "--json", "--trace", "--state", env.statePath, "--events", env.eventsPath)
	require.NoError(t, err)
	require.Equal(t, 5, decodeCounts(t, out).Counts.Home)

	var traced []string
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		if strings.HasPrefix(line, "trace ") {
			traced = append(traced, line)
		}
	}
	require.Len(t, traced, 7)
	require.Equal(t, "trace initialize: home=6 private=3 mentions=2", traced[0])
	require.Equal(t, "trace subscription: home=5 private=3 mentions=3", traced[6])

	_, stderr, err = env.runWithStderr(t, "counts", "--state", env.statePath)
	require.NoError(t, err)
	require.NotContains(t, stderr, "trace ")
}

func TestCounts_Errors(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "counts")
	require.Error(t, err)

	_, err = env.run(t, "counts", "--state", filepath.Join(env.dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(env.dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type": "message", "message": null}`+"\n"), 0o644))
	_, err = env.run(t, "counts", "--state", env.statePath, "--events", bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "event 0 (message)")
}

func TestFixture_Lifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "fixture", "import", "sample", "--state", env.statePath, "--events", env.eventsPath)
	require.Contains(t, out, "Imported fixture sample")
	require.Contains(t, out, "with 8 events")

	_, err := env.run(t, "fixture", "import", "sample", "--state", env.statePath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	out = env.mustRun(t, "fixture", "list")
	require.Contains(t, out, "sample")
	require.Contains(t, out, "8")

	res := decodeCounts(t, env.mustRun(t, "fixture", "replay", "sample", "--json"))
	require.Equal(t, 5, res.Counts.Home)
	require.Equal(t, 1, res.Skipped)

	env.mustRun(t, "fixture", "rm", "sample")
	out = env.mustRun(t, "fixture", "list")
	require.Contains(t, out, "No fixtures")

	_, err = env.run(t, "fixture", "replay", "sample")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestFixture_AppendEvents(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "fixture", "import", "bare", "--state", env.statePath)

	res := decodeCounts(t, env.mustRun(t, "fixture", "replay", "bare", "--json"))
	require.Equal(t, 6, res.Counts.Home)

	out := env.mustRun(t, "fixture", "append", "bare", "--events", env.eventsPath)
	require.Contains(t, out, "Appended 8 events to bare")

	res = decodeCounts(t, env.mustRun(t, "fixture", "replay", "bare", "--json"))
	require.Equal(t, 5, res.Counts.Home)
}

func TestFixture_UseSelectsDefault(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "fixture", "import", "sample", "--state", env.statePath)

	_, err := env.run(t, "fixture", "replay")
	require.Error(t, err)
	require.Contains(t, err.Error(), "none selected")

	out := env.mustRun(t, "fixture", "use", "sample", "--user", "101")
	require.Contains(t, out, "sample@101")
	require.FileExists(t, filepath.Join(env.dir, "config", "context.yaml"))

	res := decodeCounts(t, env.mustRun(t, "fixture", "replay", "--json"))
	require.Equal(t, models.UserID(101), res.UserID)

	out = env.mustRun(t, "fixture", "list")
	require.Contains(t, out, "* sample")

	env.mustRun(t, "fixture", "use", "--clear")
	_, err = env.run(t, "fixture", "replay")
	require.Error(t, err)
}

func TestFixture_ReplayJournal(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "fixture", "import", "sample", "--state", env.statePath, "--events", env.eventsPath)
	env.mustRun(t, "fixture", "replay", "sample", "--journal", "--json")

	var journaled []*models.Event
	out := env.mustRun(t, "journal", "--json", "--type", string(models.EventTypeCountsChanged))
	require.NoError(t, json.Unmarshal([]byte(out), &journaled))
	require.Len(t, journaled, 7)

	reasons := make(map[string]bool)
	for _, ev := range journaled {
		var payload models.CountsChangedPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		reasons[payload.Reason] = true
	}
	require.True(t, reasons["initialize"])
	require.True(t, reasons["muted_topics"])

	out = env.mustRun(t, "journal")
	require.Contains(t, out, "unread.counts_changed")
	require.Contains(t, out, "initialize: home=6 private=3 mentions=2")

	out = env.mustRun(t, "journal", "--prune", "1ns")
	require.Contains(t, out, "Pruned 7 events")
}

func TestPeople_Lookup(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "people", "--state", env.statePath)
	require.Contains(t, out, "Alice Smith")
	require.NotContains(t, out, "Dave Gone")

	var found []struct {
		UserID models.UserID `json:"user_id"`
		Active bool          `json:"active"`
	}
	out = env.mustRun(t, "people", "--json", "--state", env.statePath, "ALICE@example.com")
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	require.Equal(t, models.UserID(101), found[0].UserID)
	require.True(t, found[0].Active)

	out = env.mustRun(t, "people", "--json", "--state", env.statePath, "104")
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.False(t, found[0].Active)

	out = env.mustRun(t, "people", "--state", env.statePath, "bob jones")
	require.Contains(t, out, "@**Bob Jones**")

	_, err := env.run(t, "people", "--state", env.statePath, "nobody@example.com")
	require.Error(t, err)
}

func TestRootCommandAliases(t *testing.T) {
	root := newRootCmd("dev", &bytes.Buffer{}, &bytes.Buffer{})

	found, _, err := root.Find([]string{"fixtures", "ls"})
	require.NoError(t, err)
	require.Equal(t, "list", found.Name())

	found, _, err = root.Find([]string{"fixture", "remove"})
	require.NoError(t, err)
	require.Equal(t, "rm", found.Name())
}
