package models

import (
	"encoding/json"
	"fmt"
)

// NewsResponse представляет ответ NewsAPI top-headlines.
// Если поле articles отсутствует (например, ответ с ошибкой ключа), Articles равен nil.
type NewsResponse struct {
	Status   string          `json:"status"`
	Articles []Article       `json:"articles"`
	Raw      json.RawMessage `json:"-"`
}

// Article представляет одну статью из ленты заголовков.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Headlines проверяет документ и возвращает статьи в исходном порядке.
// Обязателен только заголовок; ссылку проверяет тот, кому она нужна.
func (n *NewsResponse) Headlines() ([]Article, error) {
	if n == nil || n.Articles == nil {
		return nil, fmt.Errorf("%w: articles missing", ErrMalformed)
	}
	for i, a := range n.Articles {
		if a.Title == "" {
			return nil, fmt.Errorf("%w: article %d has no title", ErrMalformed, i)
		}
	}
	return n.Articles, nil
}
