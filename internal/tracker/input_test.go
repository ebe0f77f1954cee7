package tracker_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"jobtracker/tracker-service/internal/tracker"
)

func TestParseTags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{" , ,", []string{}},
		{"go, backend ,remote", []string{"go", "backend", "remote"}},
		{"Go,go,Go", []string{"Go", "go", "Go"}},
		{"single", []string{"single"}},
	}
	for _, c := range cases {
		got := tracker.ParseTags(c.in)
		assert.Equal(t, c.want, got, "ParseTags(%q)", c.in)
		assert.NotNil(t, got, "ParseTags(%q) must not return nil", c.in)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T14:30", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"2024-03-05T14:30:15", time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)},
		{"2024-03-05T14:30:15Z", time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)},
		{"2024-03-05T14:30:15.250+02:00", time.Date(2024, 3, 5, 12, 30, 15, 250_000_000, time.UTC)},
	}
	for _, c := range cases {
		got, err := tracker.ParseDate(c.in)
		require.NoError(t, err, c.in)
		assert.True(t, c.want.Equal(got), "ParseDate(%q) = %s, want %s", c.in, got, c.want)
	}

	for _, bad := range []string{"", "tomorrow", "05/03/2024", "2024-13-01"} {
		_, err := tracker.ParseDate(bad)
		assert.Error(t, err, "ParseDate(%q)", bad)
	}
}

func TestTagList_JSON(t *testing.T) {
	var in tracker.CreateInput
	require.NoError(t, json.Unmarshal([]byte(`{"company":"A","role":"B","tags":"x, y"}`), &in))
	assert.Equal(t, tracker.TagList{"x", "y"}, in.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"company":"A","role":"B","tags":["p","q"]}`), &in))
	assert.Equal(t, tracker.TagList{"p", "q"}, in.Tags)

	err := json.Unmarshal([]byte(`{"tags":42}`), &in)
	assert.Error(t, err)
}

func TestTagList_YAML(t *testing.T) {
	var in tracker.CreateInput
	require.NoError(t, yaml.Unmarshal([]byte("company: A\nrole: B\ntags: go, remote\n"), &in))
	assert.Equal(t, tracker.TagList{"go", "remote"}, in.Tags)

	require.NoError(t, yaml.Unmarshal([]byte("company: A\nrole: B\ntags:\n  - one\n  - two\n"), &in))
	assert.Equal(t, tracker.TagList{"one", "two"}, in.Tags)
}

func TestUpdateInput_OmittedNullValue(t *testing.T) {
	var in tracker.UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null,"priority":"high"}`), &in))

	assert.False(t, in.Company.Set, "omitted key must not be set")
	assert.False(t, in.URL.Set)

	assert.True(t, in.Notes.Set)
	assert.False(t, in.Notes.Valid, "null must be set but not valid")

	assert.True(t, in.Priority.Set)
	assert.True(t, in.Priority.Valid)
	assert.Equal(t, "high", in.Priority.Value)
}

func TestUpdateInput_NullTagsAndReminder(t *testing.T) {
	var in tracker.UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"tags":null,"reminderDaysBefore":null}`), &in))
	assert.True(t, in.Tags.Set)
	assert.False(t, in.Tags.Valid)
	assert.True(t, in.ReminderDaysBefore.Set)
	assert.False(t, in.ReminderDaysBefore.Valid)
}
