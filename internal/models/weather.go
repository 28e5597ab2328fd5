package models

import (
	"encoding/json"
	"fmt"
)

// WeatherResponse представляет ответ OpenWeatherMap на запрос текущей погоды.
// Поле Raw заполняется клиентом и хранит исходный JSON для диагностики.
type WeatherResponse struct {
	Main    *WeatherMain       `json:"main"`
	Weather []WeatherCondition `json:"weather"`
	Raw     json.RawMessage    `json:"-"`
}

// WeatherMain содержит температуру в кельвинах.
type WeatherMain struct {
	Temp *float64 `json:"temp"`
}

// WeatherCondition содержит краткое описание погодных условий.
type WeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Current возвращает температуру в кельвинах и описание первого погодного условия.
func (w *WeatherResponse) Current() (float64, string, error) {
	if w == nil || w.Main == nil || w.Main.Temp == nil {
		return 0, "", fmt.Errorf("%w: weather main.temp missing", ErrMalformed)
	}
	if len(w.Weather) == 0 {
		return 0, "", fmt.Errorf("%w: weather conditions missing", ErrMalformed)
	}
	return *w.Main.Temp, w.Weather[0].Description, nil
}
