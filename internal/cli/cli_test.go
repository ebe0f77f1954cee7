package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/tracker-service/internal/config"
	"jobtracker/tracker-service/internal/csvexport"
	"jobtracker/tracker-service/internal/store/sqlite"
	"jobtracker/tracker-service/internal/tracker"
)

func sqliteOptions(t *testing.T) (*RootOptions, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.db")
	return &RootOptions{
		Version: "test",
		LoadConfig: func() (*config.Config, error) {
			cfg := &config.Config{
				Port:            "0",
				DatabaseDriver:  config.DriverSQLite,
				DatabaseURL:     path,
				TrustUserHeader: true,
				LogLevel:        "error",
				LogFormat:       "text",
				ShutdownTimeout: time.Second,
			}
			return cfg, cfg.Validate()
		},
	}, path
}

func run(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func listJobs(t *testing.T, dbPath, user string) []tracker.Application {
	t.Helper()
	s, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	apps, err := s.List(context.Background(), user, tracker.OrderCreatedAsc)
	require.NoError(t, err)
	return apps
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand("test")
	for _, name := range []string{"serve", "migrate", "export", "import", "move", "upcoming"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestUserFlagRequired(t *testing.T) {
	opts, _ := sqliteOptions(t)
	for _, args := range [][]string{
		{"export"},
		{"upcoming"},
		{"move", "id", "applied"},
	} {
		_, err := run(t, opts, args...)
		assert.Error(t, err, args[0])
	}
}

func TestMigrate(t *testing.T) {
	opts, _ := sqliteOptions(t)
	out, err := run(t, opts, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema applied (sqlite)")
}

func TestExport_Empty(t *testing.T) {
	opts, _ := sqliteOptions(t)
	outDir := t.TempDir()

	out, err := run(t, opts, "export", "--user", "u1", "--out", outDir)
	require.NoError(t, err)
	assert.Equal(t, "No jobs to export.\n", out)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportThenExport(t *testing.T) {
	opts, dbPath := sqliteOptions(t)
	file := writeYAML(t, `
- company: Acme
  role: Backend Engineer
  status: interview
  priority: high
  tags: go, remote
  dateApplied: 2024-06-01
- company: Globex
  role: SRE
  tags: [k8s]
`)

	out, err := run(t, opts, "import", "--user", "u1", file)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 jobs.\n", out)

	apps := listJobs(t, dbPath, "u1")
	require.Len(t, apps, 2)
	assert.Equal(t, []string{"go", "remote"}, apps[0].Tags)
	assert.Equal(t, tracker.StatusInterview, apps[0].Status)
	assert.Empty(t, listJobs(t, dbPath, "u2"))

	outDir := t.TempDir()
	out, err = run(t, opts, "export", "--user", "u1", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 jobs")

	path := filepath.Join(outDir, csvexport.FileName(time.Now()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows := strings.Split(string(data), "\r\n")
	require.Len(t, rows, 3)
	assert.True(t, strings.HasPrefix(rows[0], `"Company","Role","Status"`))
	assert.Contains(t, string(data), `"go; remote"`)
}

func TestImport_InvalidEntry(t *testing.T) {
	opts, _ := sqliteOptions(t)
	file := writeYAML(t, "- company: Acme\n  role: SWE\n  status: hired\n")

	_, err := run(t, opts, "import", "--user", "u1", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestMove(t *testing.T) {
	opts, dbPath := sqliteOptions(t)
	file := writeYAML(t, "- company: Acme\n  role: SWE\n")
	_, err := run(t, opts, "import", "--user", "u1", file)
	require.NoError(t, err)
	id := listJobs(t, dbPath, "u1")[0].ID

	out, err := run(t, opts, "move", "--user", "u1", id, "oa_assigned")
	require.NoError(t, err)
	assert.Contains(t, out, "OA Assigned")
	assert.Equal(t, tracker.StatusOAAssigned, listJobs(t, dbPath, "u1")[0].Status)

	_, err = run(t, opts, "move", "--user", "u2", id, "rejected")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = run(t, opts, "move", "--user", "u1", id, "offer")
	assert.Error(t, err)
	assert.Equal(t, tracker.StatusOAAssigned, listJobs(t, dbPath, "u1")[0].Status)
}

func TestUpcoming(t *testing.T) {
	opts, _ := sqliteOptions(t)
	soon := time.Now().UTC().Add(30 * time.Hour).Format("2006-01-02T15:04")
	later := time.Now().UTC().Add(20 * 24 * time.Hour).Format("2006-01-02T15:04")
	file := writeYAML(t, fmt.Sprintf(`
- company: Acme
  role: SWE
  oaDeadline: %q
- company: Globex
  role: SRE
  interviewDate: %q
`, soon, later))
	_, err := run(t, opts, "import", "--user", "u1", file)
	require.NoError(t, err)

	out, err := run(t, opts, "upcoming", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme / SWE")
	assert.Contains(t, out, "in 2 days")
	assert.NotContains(t, out, "Globex")

	out, err = run(t, opts, "upcoming", "--user", "u1", "--format", "json")
	require.NoError(t, err)
	var reminders []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reminders))
	assert.Len(t, reminders, 1)

	out, err = run(t, opts, "upcoming", "--user", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No upcoming deadlines.\n", out)
}
