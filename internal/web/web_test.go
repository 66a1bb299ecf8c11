package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conprog/internal/config"
	"conprog/internal/model"
)

func testDataset() *model.Dataset {
	start := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	return &model.Dataset{
		ID:          uuid.New(),
		GeneratedAt: time.Now(),
		Items: []model.ProgramItem{{
			ID:               "1",
			Title:            "Opening Panel",
			StartDateAndTime: start,
			EndDateAndTime:   start.Add(time.Hour),
		}},
		People:    []model.Person{{ID: "p1", Name: "John Doe", Sortname: "Doe John"}},
		Locations: []model.Location{{Value: "Main Hall", Label: "Main Hall"}},
	}
}

func do(t *testing.T, h http.Handler, method, target string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(config.DefaultConfig(), &Store{}, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestEndpointsBeforeFirstRefresh(t *testing.T) {
	s := NewServer(config.DefaultConfig(), &Store{}, nil)
	h := s.Handler()

	for _, target := range []string{"/api/dataset", "/api/program", "/api/people", "/api/locations", "/api/tags", "/calendar.ics"} {
		rec := do(t, h, http.MethodGet, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "target %s", target)
	}
}

func TestProgramEndpoint(t *testing.T) {
	store := &Store{}
	store.Replace(testDataset())
	s := NewServer(config.DefaultConfig(), store, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/api/program")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var items []model.ProgramItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Opening Panel", items[0].Title)
}

func TestCalendarEndpoint(t *testing.T) {
	store := &Store{}
	store.Replace(testDataset())
	s := NewServer(config.DefaultConfig(), store, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/calendar.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Opening Panel")
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "hunter2"}
	store := &Store{}
	store.Replace(testDataset())
	h := NewServer(cfg, store, nil).Handler()

	t.Run("health stays open", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing credentials rejected", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/program")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
	})

	t.Run("wrong credentials rejected", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/program", func(r *http.Request) {
			r.SetBasicAuth("admin", "wrong")
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid credentials accepted", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/program", func(r *http.Request) {
			r.SetBasicAuth("admin", "hunter2")
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Run("no refresh callback", func(t *testing.T) {
		s := NewServer(config.DefaultConfig(), &Store{}, nil)
		rec := do(t, s.Handler(), http.MethodPost, "/api/refresh")
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	t.Run("successful refresh installs the dataset", func(t *testing.T) {
		ds := testDataset()
		store := &Store{}
		s := NewServer(config.DefaultConfig(), store, func(context.Context) (*model.Dataset, error) {
			return ds, nil
		})

		rec := do(t, s.Handler(), http.MethodPost, "/api/refresh")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ds, store.Current())
	})

	t.Run("failed refresh keeps the previous dataset", func(t *testing.T) {
		old := testDataset()
		store := &Store{}
		store.Replace(old)
		s := NewServer(config.DefaultConfig(), store, func(context.Context) (*model.Dataset, error) {
			return nil, errors.New("feed exploded")
		})

		rec := do(t, s.Handler(), http.MethodPost, "/api/refresh")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.NotContains(t, rec.Body.String(), "exploded", "internal error detail is not leaked")
		assert.Equal(t, old, store.Current())
	})
}

func TestStoreReplace(t *testing.T) {
	store := &Store{}
	assert.Nil(t, store.Current())

	ds := testDataset()
	store.Replace(ds)
	assert.Equal(t, ds, store.Current())
}
