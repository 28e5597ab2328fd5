// Package feed хранит уведомления из ленты новостей и заголовки, скрытые пользователем.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"smart_alarm/internal/diagnostics"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/metrics"
	"smart_alarm/internal/models"
	"sync"
)

const source = "feed"

var bodyTemplate = template.Must(template.New("body").Parse(
	`<a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a> {{.Description}}`,
))

type HeadlineSource interface {
	Headlines(ctx context.Context) (*models.NewsResponse, error)
}

// Cache — список уведомлений (новые в начале) и множество скрытых заголовков,
// которое только растёт.
type Cache struct {
	news    HeadlineSource
	diag    diagnostics.Recorder
	metrics *metrics.Metrics

	mu        sync.Mutex
	items     []models.NotificationItem
	dismissed map[string]struct{}
}

func NewCache(news HeadlineSource, diag diagnostics.Recorder, m *metrics.Metrics) *Cache {
	if diag == nil {
		diag = diagnostics.LogRecorder{}
	}
	return &Cache{
		news:      news,
		diag:      diag,
		metrics:   m,
		dismissed: make(map[string]struct{}),
	}
}

// Render строит безопасное тело уведомления со ссылкой на статью.
// Статья без ссылки считается некорректной.
func Render(a models.Article) (models.NotificationItem, error) {
	if a.URL == "" {
		return models.NotificationItem{}, fmt.Errorf("%w: article %q has no url", models.ErrMalformed, a.Title)
	}
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, a); err != nil {
		return models.NotificationItem{}, err
	}
	return models.NotificationItem{
		Title: a.Title,
		Body:  template.HTML(buf.String()),
	}, nil
}

// Refresh загружает заголовки и добавляет в начало списка новые уведомления.
// При ошибке источника список не меняется. Возвращает число добавленных уведомлений.
func (c *Cache) Refresh(ctx context.Context) int {
	resp, err := c.news.Headlines(ctx)
	if err != nil {
		c.fail(ctx, err, nil)
		return 0
	}
	articles, err := resp.Headlines()
	if err != nil {
		c.fail(ctx, err, resp.Raw)
		return 0
	}

	rendered := make([]models.NotificationItem, 0, len(articles))
	for _, a := range articles {
		item, err := Render(a)
		if err != nil {
			c.fail(ctx, err, resp.Raw)
			return 0
		}
		rendered = append(rendered, item)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	inserted := 0
	for _, item := range rendered {
		if _, ok := c.dismissed[item.Title]; ok {
			continue
		}
		if c.containsLocked(item) {
			continue
		}
		c.items = append([]models.NotificationItem{item}, c.items...)
		inserted++
	}

	c.metrics.NotificationsInserted(inserted)
	logger.WithService(source).WithFields(logger.Fields{
		"items_count": len(articles),
		"inserted":    inserted,
	}).Debug("Feed refreshed")
	return inserted
}

// containsLocked сравнивает уведомления целиком: заголовок и тело.
func (c *Cache) containsLocked(item models.NotificationItem) bool {
	for _, existing := range c.items {
		if existing == item {
			return true
		}
	}
	return false
}

// Dismiss убирает первое уведомление с заголовком title и навсегда
// запоминает заголовок, даже если такого уведомления нет.
func (c *Cache) Dismiss(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.Title == title {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	if _, ok := c.dismissed[title]; !ok {
		c.dismissed[title] = struct{}{}
		c.metrics.NotificationDismissed()
	}
	logger.Log.WithField("title", title).Info("Notification dismissed")
}

// List возвращает копию списка уведомлений в порядке показа.
func (c *Cache) List() []models.NotificationItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.NotificationItem(nil), c.items...)
}

// Dismissed сообщает, скрыт ли заголовок.
func (c *Cache) Dismissed(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.dismissed[title]
	return ok
}

func (c *Cache) fail(ctx context.Context, err error, raw []byte) {
	if raw == nil {
		raw = models.PayloadOf(err)
	}
	c.metrics.RefreshFailed()
	c.diag.Record(ctx, source, err, string(raw))
}
