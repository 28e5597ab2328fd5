package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"smart_alarm/internal/config"
	"smart_alarm/internal/fetcher"
	"smart_alarm/internal/models"
	"testing"

	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *fetcher.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		WeatherKey:  "w-key",
		City:        "Exeter",
		NewsKey:     "n-key",
		NewsSources: "bbc-news",
		CityCode:    "E07000041",
		WeatherURL:  server.URL,
		NewsURL:     server.URL,
		CasesURL:    server.URL,
	}
	require.NoError(t, cfg.Validate())
	return fetcher.NewClient(cfg)
}

func TestWeather(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/2.5/weather", r.URL.Path)
		require.Equal(t, "Exeter", r.URL.Query().Get("q"))
		require.Equal(t, "w-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`{"main":{"temp":280.15},"weather":[{"description":"overcast clouds"}]}`))
	})

	resp, err := client.Weather(context.Background())
	require.NoError(t, err)

	kelvin, desc, err := resp.Current()
	require.NoError(t, err)
	require.InDelta(t, 280.15, kelvin, 1e-9)
	require.Equal(t, "overcast clouds", desc)
	require.Contains(t, string(resp.Raw), "overcast clouds")
}

func TestHeadlines(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		body      string
		wantErr   bool
		malformed bool
	}{
		{
			name:   "valid",
			status: http.StatusOK,
			body:   `{"status":"ok","articles":[{"title":"T1","url":"http://x/1","description":"d1"}]}`,
		},
		{
			name:      "api error document",
			status:    http.StatusUnauthorized,
			body:      `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`,
			malformed: true,
		},
		{
			name:    "not json",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v2/top-headlines", r.URL.Path)
				require.Equal(t, "bbc-news", r.URL.Query().Get("sources"))
				require.Equal(t, "n-key", r.URL.Query().Get("apiKey"))
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			resp, err := client.Headlines(context.Background())
			if tc.wantErr {
				require.Error(t, err)
				require.Equal(t, tc.body, string(models.PayloadOf(err)))
				return
			}
			require.NoError(t, err)

			articles, err := resp.Headlines()
			if tc.malformed {
				require.ErrorIs(t, err, models.ErrMalformed)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "T1", articles[0].Title)
		})
	}
}

func TestCaseCount(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/v2/data", r.URL.Path)
		require.Equal(t, "ltla", q.Get("areaType"))
		require.Equal(t, "E07000041", q.Get("areaCode"))
		require.Equal(t, "newCasesByPublishDate", q.Get("metric"))
		w.Write([]byte(`{"body":[{"date":"2020-12-01","newCasesByPublishDate":57}]}`))
	})

	resp, err := client.CaseCount(context.Background())
	require.NoError(t, err)
	n, err := resp.LatestNewCases()
	require.NoError(t, err)
	require.Equal(t, 57, n)
}
