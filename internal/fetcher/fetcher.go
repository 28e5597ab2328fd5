package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"smart_alarm/internal/config"
	"smart_alarm/internal/models"
	"strings"
	"time"
)

const maxBodySize = 1 << 20

// Client обращается к внешним API погоды, новостей и статистики заболеваемости.
type Client struct {
	http *http.Client

	weatherURL  string
	weatherKey  string
	city        string
	newsURL     string
	newsKey     string
	newsSources string
	casesURL    string
	cityCode    string
}

// NewClient создаёт клиента по конфигурации; ключи и местоположение берутся только отсюда.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout()},
		weatherURL:  strings.TrimRight(cfg.WeatherURL, "/"),
		weatherKey:  cfg.WeatherKey,
		city:        cfg.City,
		newsURL:     strings.TrimRight(cfg.NewsURL, "/"),
		newsKey:     cfg.NewsKey,
		newsSources: cfg.NewsSources,
		casesURL:    strings.TrimRight(cfg.CasesURL, "/"),
		cityCode:    cfg.CityCode,
	}
}

// Weather загружает текущую погоду для настроенного города.
func (c *Client) Weather(ctx context.Context) (*models.WeatherResponse, error) {
	q := url.Values{}
	q.Set("q", c.city)
	q.Set("appid", c.weatherKey)

	var w models.WeatherResponse
	raw, err := c.getJSON(ctx, c.weatherURL+"/data/2.5/weather?"+q.Encode(), &w)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	w.Raw = raw
	return &w, nil
}

// Headlines загружает главные заголовки настроенных источников.
func (c *Client) Headlines(ctx context.Context) (*models.NewsResponse, error) {
	q := url.Values{}
	q.Set("sources", c.newsSources)
	q.Set("apiKey", c.newsKey)

	var n models.NewsResponse
	raw, err := c.getJSON(ctx, c.newsURL+"/v2/top-headlines?"+q.Encode(), &n)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	n.Raw = raw
	return &n, nil
}

// CaseCount загружает число новых случаев для настроенного кода района.
func (c *Client) CaseCount(ctx context.Context) (*models.CasesResponse, error) {
	q := url.Values{}
	q.Set("areaType", "ltla")
	q.Set("areaCode", c.cityCode)
	q.Set("metric", "newCasesByPublishDate")
	q.Set("format", "json")

	var cs models.CasesResponse
	raw, err := c.getJSON(ctx, c.casesURL+"/v2/data?"+q.Encode(), &cs)
	if err != nil {
		return nil, fmt.Errorf("fetch case count: %w", err)
	}
	cs.Raw = raw
	return &cs, nil
}

// getJSON декодирует тело ответа в v независимо от кода статуса:
// API возвращают описание ошибки в JSON, его разбирают модели.
// Ошибка разбора несёт тело ответа в *models.PayloadError.
func (c *Client) getJSON(ctx context.Context, u string, v any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return body, &models.PayloadError{
			Payload: body,
			Err:     fmt.Errorf("decode response (status %d, %s): %w", resp.StatusCode, time.Since(start), err),
		}
	}
	return body, nil
}
