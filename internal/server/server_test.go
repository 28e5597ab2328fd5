package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"smart_alarm/internal/alarm"
	"smart_alarm/internal/clock"
	"smart_alarm/internal/engine"
	"smart_alarm/internal/feed"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/models"
	"smart_alarm/internal/server"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2020, 12, 1, 7, 0, 0, 0, time.UTC)

type stubNews struct{}

func (stubNews) Headlines(context.Context) (*models.NewsResponse, error) {
	return &models.NewsResponse{Articles: []models.Article{
		{Title: "Vaccine approved", URL: "https://example.com/vaccine", Description: "First doses next week"},
	}}, nil
}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(_ context.Context, a *alarm.Alarm) []string {
	return []string{a.Description}
}

type nopDiag struct{}

func (nopDiag) Record(context.Context, string, error, string) {}

func newMux(t *testing.T) (*http.ServeMux, *engine.Engine) {
	t.Helper()
	logger.Discard()

	e := engine.New(engine.Options{
		Clock:     clock.NewFake(refNow),
		Announcer: nopAnnouncer{},
		Feed:      feed.NewCache(stubNews{}, nopDiag{}, nil),
	})
	e.Run(context.Background())
	t.Cleanup(e.Shutdown)

	mux := http.NewServeMux()
	server.NewServer(e, time.UTC).Routes(mux)
	return mux, e
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	mux, e := newMux(t)

	t.Run("create alarm", func(t *testing.T) {
		q := url.Values{}
		q.Set("alarm", "2020-12-01T07:30")
		q.Set("two", "take medicine")
		q.Set("weather", "weather")

		w := serve(mux, httptest.NewRequest(http.MethodGet, "/index?"+q.Encode(), nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "<title>Alarm created successfully</title>")
		require.Contains(t, w.Body.String(), "2020-12-01 07:30")
		require.Contains(t, w.Body.String(), "Vaccine approved")

		alarms := e.ListAlarms()
		require.Len(t, alarms, 1)
		require.True(t, alarms[0].IncludeWeather)
		require.False(t, alarms[0].IncludeNews)
	})

	t.Run("duplicate shows error status", func(t *testing.T) {
		w := serve(mux, httptest.NewRequest(http.MethodGet, "/index?alarm=2020-12-01T07:30&two=again", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "ERROR: Alarm is already set for this time")
		require.Len(t, e.ListAlarms(), 1)
	})

	t.Run("cancel alarm", func(t *testing.T) {
		w := serve(mux, httptest.NewRequest(http.MethodGet, "/index?alarm_item="+url.QueryEscape("2020-12-01 07:30"), nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, e.ListAlarms())
	})

	t.Run("dismiss notification", func(t *testing.T) {
		w := serve(mux, httptest.NewRequest(http.MethodGet, "/?notif="+url.QueryEscape("Vaccine approved"), nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.NotContains(t, w.Body.String(), "Vaccine approved")
		require.Empty(t, e.ListNotifications())
	})

	t.Run("bad time", func(t *testing.T) {
		w := serve(mux, httptest.NewRequest(http.MethodGet, "/index?alarm=tomorrow&two=x", nil))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAlarmAPI(t *testing.T) {
	mux, _ := newMux(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/alarms", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(mux, req)
	}

	w := post(`{"time":"2020-12-01T08:00:15","content":"stretch","news":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"outcome":"created"`)

	w = post(`{"time":"2020-12-01 08:00:15","content":"stretch again"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	w = post(`{"time":"2020-11-30T08:00","content":"yesterday"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), `"outcome":"in_past"`)

	w = post(`{"time":"2020-12-01T09:00"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(mux, httptest.NewRequest(http.MethodGet, "/api/alarms", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var alarms []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alarms))
	require.Len(t, alarms, 1)
	require.Equal(t, "2020-12-01 08:00:15", alarms[0]["title"])
	require.Equal(t, "stretch", alarms[0]["content"])
	require.Equal(t, true, alarms[0]["news"])

	w = serve(mux, httptest.NewRequest(http.MethodDelete, "/api/alarms/"+url.PathEscape("2020-12-01 08:00:15"), nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(mux, httptest.NewRequest(http.MethodGet, "/api/alarms", nil))
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestNotificationAPI(t *testing.T) {
	mux, e := newMux(t)
	e.RefreshThrottled(context.Background())

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Vaccine approved")

	w = serve(mux, httptest.NewRequest(http.MethodDelete, "/api/notifications/"+url.PathEscape("Vaccine approved"), nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(mux, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	mux, _ := newMux(t)
	w := serve(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
