package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/holidaze/venues", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[
			{"id":"v1","name":"Fjord Cabin","price":100,"maxGuests":2,
			 "media":[{"url":"https://img.example/1.jpg","alt":"cabin"}],"location":{"country":"Norway"}},
			{"id":"v2","name":"Beach House","price":300,"maxGuests":6,
			 "media":[{"url":"https://img.example/2.jpg","alt":"beach"}],"location":{"country":"Spain"}}],
			"meta":{"currentPage":1,"pageCount":1}}`)
	})
	mux.HandleFunc("/holidaze/venues/v1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":"v1","name":"Fjord Cabin","price":100,"maxGuests":2,
			"bookings":[{"id":"b0","dateFrom":"2030-06-10T00:00:00Z","dateTo":"2030-06-11T00:00:00Z","guests":1}]}}`)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"name":"ola","email":"ola@stud.noroff.no","accessToken":"tok"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, stateFile string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "--state-file", stateFile}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "holidaze dev (commit=none, built=unknown)\n", out)
}

func TestKeys(t *testing.T) {
	out, err := run(t, "", "keys")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "export COOKIE_HASH_KEY="))
	assert.True(t, strings.HasPrefix(lines[2], "export STATE_ENC_KEY="))
}

func TestCLIFlow(t *testing.T) {
	api := fakeService(t)
	t.Setenv("HOLIDAZE_API_URL", api.URL)
	t.Setenv("LOG_LEVEL", "error")
	stateFile := filepath.Join(t.TempDir(), "state.json")

	_, err := run(t, stateFile, "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	out, err := run(t, stateFile, "login", "--email", "ola@stud.noroff.no", "--password", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "logged in as ola (ola@stud.noroff.no)\n", out)

	out, err = run(t, stateFile, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "name=ola")

	out, err = run(t, stateFile, "venues", "list", "--country", "Norway")
	require.NoError(t, err)
	assert.Contains(t, out, "Fjord Cabin")
	assert.NotContains(t, out, "Beach House")
	assert.Contains(t, out, "page 1/1, 1 of 2 shown")

	out, err = run(t, stateFile, "venues", "show", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "unavailable=2030-06-10,2030-06-11")

	out, err = run(t, stateFile, "book", "quote", "v1", "--from", "2099-01-01", "--to", "2099-01-03", "--adults", "1", "--children", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "nights=2")
	assert.Contains(t, out, "total=340.00")

	_, err = run(t, stateFile, "book", "quote", "v1", "--from", "2099-01-01", "--to", "2099-01-03", "--adults", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 2 guests")

	_, err = run(t, stateFile, "logout")
	require.NoError(t, err)
	_, err = run(t, stateFile, "whoami")
	require.Error(t, err)
}
