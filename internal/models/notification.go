package models

import "html/template"

// NotificationItem представляет уведомление на странице: заголовок новости
// и безопасный HTML-фрагмент со ссылкой на статью.
// Структура сравнима через ==, что используется при дедупликации.
type NotificationItem struct {
	Title string        `json:"title"`
	Body  template.HTML `json:"content"`
}
