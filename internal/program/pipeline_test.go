package program

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conprog/internal/config"
	"conprog/internal/localtime"
)

func TestPipelineRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/program.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`// schedule
[{"id": "1", "title": "Opening", "date": "2026-01-15", "time": "14:00", "loc": "Main Hall",
  "people": [{"id": "p1"}]}]`))
	})
	mux.HandleFunc("/people.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "p1", "name": ["John", "Doe"]}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	zone, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.ProgramURL = srv.URL + "/program.json"
	cfg.PeopleURL = srv.URL + "/people.json"

	p := NewPipeline(cfg, localtime.New(zone, cfg.TimezoneCode, nil))

	ds, err := p.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Items, 1)
	assert.Equal(t, "Opening", ds.Items[0].Title)
	require.Len(t, ds.Items[0].People, 1)
	assert.Equal(t, "John Doe", ds.Items[0].People[0].Name)
	require.Len(t, ds.Locations, 1)
	assert.Equal(t, "Main Hall", ds.Locations[0].Value)

	// Two refreshes are two independent datasets.
	again, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, ds.ID, again.ID)
}

func TestPipelineRefreshMissingURL(t *testing.T) {
	zone, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()

	p := NewPipeline(cfg, localtime.New(zone, cfg.TimezoneCode, nil))
	_, err = p.Refresh(context.Background())
	assert.Error(t, err)
}
