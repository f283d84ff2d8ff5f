package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/contributions"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

type fakeFetcher struct {
	resp *contributions.Response
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, username string) (*contributions.Response, error) {
	return f.resp, f.err
}

// client replays the session cookie of earlier responses
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
	auth   string
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestServeIndexAndStatic(t *testing.T) {
	s := NewServer(Options{
		IndexHTML: []byte("<html>calendar</html>"),
		Static:    fstest.MapFS{"static/app.js": {Data: []byte("// app")}},
		Now:       fixedNow,
	})
	c := &client{t: t, h: s}

	w := c.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>calendar</html>", w.Body.String())

	w = c.do(http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "// app", w.Body.String())

	w = c.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetConfig(t *testing.T) {
	s := NewServer(Options{Config: DefaultConfig(), Now: fixedNow})
	w := (&client{t: t, h: s}).do(http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[ConfigResponse](t, w)
	assert.Equal(t, "2024-01-01", got.From)
	assert.Equal(t, "2024-12-31", got.To)
	assert.Equal(t, selection.MaxCount, got.MaxCount)
	assert.Len(t, got.LevelColors, 5)
	assert.Len(t, got.SelectionColors, selection.MaxCount+1)
	assert.False(t, got.EditProtected)
	assert.Equal(t, "Jan", got.MonthNames[0])
}

func TestHandleCalendarSynthetic(t *testing.T) {
	s := NewServer(Options{Config: DefaultConfig(), Now: fixedNow})
	w := (&client{t: t, h: s}).do(http.MethodGet, "/api/calendar?from=2024-01-01&to=2024-03-31&weekStart=0", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[CalendarResponse](t, w)
	assert.Equal(t, SourceSynthetic, got.Source)
	require.Len(t, got.Weeks, 14)

	// 2024-01-01 is a Monday, so the first Sunday slot is padding
	assert.Nil(t, got.Weeks[0][0])
	require.NotNil(t, got.Weeks[0][1])
	assert.Equal(t, "2024-01-01", got.Weeks[0][1].Date)

	wantLabels := []calendar.MonthLabel{
		{WeekIndex: 0, Label: "Jan"},
		{WeekIndex: 5, Label: "Feb"},
		{WeekIndex: 9, Label: "Mar"},
	}
	if diff := cmp.Diff(wantLabels, got.MonthLabels); diff != "" {
		t.Errorf("month labels mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, week := range got.Weeks {
		for _, a := range week {
			if a != nil {
				total += a.Count
				assert.True(t, a.Level.Valid())
			}
		}
	}
	assert.Equal(t, got.TotalCount, total)
}

func TestHandleCalendarBadRequest(t *testing.T) {
	s := NewServer(Options{Config: DefaultConfig(), Now: fixedNow})
	c := &client{t: t, h: s}

	tests := []struct {
		name   string
		target string
	}{
		{name: "Bad from", target: "/api/calendar?from=2024-1-1"},
		{name: "Bad to", target: "/api/calendar?to=tomorrow"},
		{name: "Reversed range", target: "/api/calendar?from=2024-03-01&to=2024-02-01"},
		{name: "Week start too high", target: "/api/calendar?weekStart=7"},
		{name: "Week start not a number", target: "/api/calendar?weekStart=mon"},
		{name: "Range too large", target: "/api/calendar?from=0001-01-01&to=9999-12-31"},
		{name: "Range just over the limit", target: "/api/calendar?from=2000-01-01&to=2010-01-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.do(http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleCalendarContributions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contributions.Username = "octocat"

	t.Run("Filtered to range", func(t *testing.T) {
		fetcher := &fakeFetcher{resp: &contributions.Response{
			Contributions: []calendar.Activity{
				{Date: "2023-12-31", Count: 9, Level: 4},
				{Date: "2024-01-02", Count: 3, Level: 2},
				{Date: "2024-01-05", Count: 1, Level: 1},
			},
		}}
		s := NewServer(Options{Config: cfg, Fetcher: fetcher, Now: fixedNow})

		w := (&client{t: t, h: s}).do(http.MethodGet, "/api/calendar?from=2024-01-01&to=2024-01-07&weekStart=1", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got := decode[CalendarResponse](t, w)
		assert.Equal(t, SourceContributions, got.Source)
		assert.Equal(t, 4, got.TotalCount)
		require.Len(t, got.Weeks, 1)
		// grid spans the first to the last activity in range
		assert.Equal(t, "2024-01-02", got.Weeks[0].First().Date)
	})

	t.Run("Limited to the last months", func(t *testing.T) {
		limited := cfg
		limited.Contributions.LastMonths = 1
		fetcher := &fakeFetcher{resp: &contributions.Response{
			Contributions: []calendar.Activity{
				{Date: "2024-02-28", Count: 7, Level: 3},
				{Date: "2024-03-01", Count: 2, Level: 1},
				{Date: "2024-03-10", Count: 1, Level: 1},
			},
		}}
		// fixedNow is in March 2024
		s := NewServer(Options{Config: limited, Fetcher: fetcher, Now: fixedNow})

		w := (&client{t: t, h: s}).do(http.MethodGet, "/api/calendar?from=2024-02-01&to=2024-03-31", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got := decode[CalendarResponse](t, w)
		assert.Equal(t, 3, got.TotalCount)
		assert.Equal(t, "2024-03-01", got.Weeks[0].First().Date)
	})

	t.Run("Empty range", func(t *testing.T) {
		s := NewServer(Options{Config: cfg, Fetcher: &fakeFetcher{resp: &contributions.Response{}}, Now: fixedNow})

		w := (&client{t: t, h: s}).do(http.MethodGet, "/api/calendar?from=2024-01-01&to=2024-01-14&weekStart=1", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got := decode[CalendarResponse](t, w)
		assert.Equal(t, 0, got.TotalCount)
		assert.Len(t, got.Weeks, 2)
	})

	t.Run("Unknown user", func(t *testing.T) {
		fetcher := &fakeFetcher{err: &contributions.Error{Username: "octocat", Status: http.StatusNotFound, Message: "not found"}}
		s := NewServer(Options{Config: cfg, Fetcher: fetcher, Now: fixedNow})

		w := (&client{t: t, h: s}).do(http.MethodGet, "/api/calendar", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "octocat")
	})

	t.Run("Upstream failure", func(t *testing.T) {
		s := NewServer(Options{Config: cfg, Fetcher: &fakeFetcher{err: errors.New("connection refused")}, Now: fixedNow})

		w := (&client{t: t, h: s}).do(http.MethodGet, "/api/calendar", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestSelectionsFlow(t *testing.T) {
	s := NewServer(Options{Config: DefaultConfig(), Now: fixedNow})
	c := &client{t: t, h: s}

	w := c.do(http.MethodGet, "/api/selections", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[SelectionsResponse](t, w).Selections)
	require.Nil(t, c.cookie, "reading starts no session")

	for range 7 {
		w = c.do(http.MethodPost, "/api/selections", `{"date":"2024-01-15","mode":"add"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	require.NotNil(t, c.cookie, "first change should start a session")
	// mode defaults to add
	w = c.do(http.MethodPost, "/api/selections", `{"date":"2024-01-16"}`)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[SelectionsResponse](t, w)
	want := []selection.Selection{{Date: "2024-01-15", Count: selection.MaxCount}, {Date: "2024-01-16", Count: 1}}
	assert.Equal(t, want, got.Selections)
	assert.Equal(t, (selection.MaxCount+1)+2, got.Commits)

	w = c.do(http.MethodGet, "/api/script", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, got.Commits, strings.Count(w.Body.String(), "git commit"))

	w = c.do(http.MethodGet, "/api/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2024-01-16,1,2\n")

	w = c.do(http.MethodPost, "/api/selections", `{"date":"2024-01-15","mode":"remove"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[SelectionsResponse](t, w).Selections, 1)

	w = c.do(http.MethodPost, "/api/selections/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[SelectionsResponse](t, w).Selections)

	t.Run("Sessions are isolated", func(t *testing.T) {
		c.do(http.MethodPost, "/api/selections", `{"date":"2024-02-01"}`)

		other := &client{t: t, h: s}
		w := other.do(http.MethodGet, "/api/selections", "")
		assert.Empty(t, decode[SelectionsResponse](t, w).Selections)
	})
}

func TestApplySelectionBadRequest(t *testing.T) {
	s := NewServer(Options{Now: fixedNow})
	c := &client{t: t, h: s}

	tests := []struct {
		name string
		body string
	}{
		{name: "Not JSON", body: "{"},
		{name: "Bad date", body: `{"date":"15.01.2024"}`},
		{name: "Bad mode", body: `{"date":"2024-01-15","mode":"toggle"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.do(http.MethodPost, "/api/selections", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleExportFormats(t *testing.T) {
	s := NewServer(Options{Now: fixedNow})
	c := &client{t: t, h: s}
	c.do(http.MethodPost, "/api/selections", `{"date":"2024-01-15"}`)

	tests := []struct {
		format     string
		wantStatus int
		wantType   string
	}{
		{format: "ics", wantStatus: http.StatusOK, wantType: "text/calendar"},
		{format: "csv", wantStatus: http.StatusOK, wantType: "text/csv"},
		{format: "json", wantStatus: http.StatusOK, wantType: "application/json"},
		{format: "pdf", wantStatus: http.StatusBadRequest},
		{format: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			w := c.do(http.MethodGet, "/api/export?format="+tt.format, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantType != "" {
				assert.Contains(t, w.Header().Get("Content-Type"), tt.wantType)
			}
		})
	}
}

func TestEditProtection(t *testing.T) {
	hash, err := HashPassword("TestPassword123456")
	require.NoError(t, err)
	auth := &Authenticator{User: "admin", hash: []byte(hash)}

	s := NewServer(Options{Auth: auth, Now: fixedNow, Logger: zap.NewNop()})
	c := &client{t: t, h: s}

	w := c.do(http.MethodPost, "/api/selections", `{"date":"2024-01-15"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = c.do(http.MethodPost, "/api/selections/clear", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// reads stay open
	w = c.do(http.MethodGet, "/api/selections", "")
	assert.Equal(t, http.StatusOK, w.Code)

	c.auth = "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:TestPassword123456"))
	w = c.do(http.MethodPost, "/api/selections", `{"date":"2024-01-15"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/api/config", "")
	assert.True(t, decode[ConfigResponse](t, w).EditProtected)
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Server.ShutdownTimeout = time.Second
	s := NewServer(Options{Config: cfg, Now: fixedNow})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	httpClient := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	defer httpClient.CloseIdleConnections()

	resp, err := httpClient.Get("http://" + ln.Addr().String() + "/api/config")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestReadsStartNoSession(t *testing.T) {
	s := NewServer(Options{Now: fixedNow})

	for _, target := range []string{"/api/selections", "/api/script", "/api/export?format=csv"} {
		for range 20 {
			w := (&client{t: t, h: s}).do(http.MethodGet, target, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Result().Cookies(), target)
		}
	}
	w := (&client{t: t, h: s}).do(http.MethodPost, "/api/selections/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.sessions.Len())

	(&client{t: t, h: s}).do(http.MethodPost, "/api/selections", `{"date":"2024-01-15"}`)
	assert.Equal(t, 1, s.sessions.Len())
}

func TestValidateRange(t *testing.T) {
	day := func(s string) time.Time {
		d, err := calendar.ParseDate(s)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{name: "Single day", from: "2024-01-01", to: "2024-01-01"},
		{name: "Exactly the limit", from: "2000-01-01", to: "2010-01-07"},
		{name: "One day over", from: "2000-01-01", to: "2010-01-08", wantErr: true},
		{name: "Whole calendar", from: "0001-01-01", to: "9999-12-31", wantErr: true},
		{name: "Reversed", from: "2024-02-01", to: "2024-01-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(calendar.Interval{Start: day(tt.from), End: day(tt.to)})
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}
