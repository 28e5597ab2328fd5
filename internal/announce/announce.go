// Package announce собирает и озвучивает объявление сработавшего будильника.
package announce

import (
	"context"
	"fmt"
	"math"
	"smart_alarm/internal/alarm"
	"smart_alarm/internal/diagnostics"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/metrics"
	"smart_alarm/internal/models"
	"smart_alarm/internal/speech"

	"golang.org/x/sync/errgroup"
)

const (
	WeatherFallback = "Could not retrieve weather data"
	NewsIntro       = "Today's top news stories are"
	NewsFallback    = "News could not be retrieved"
	CasesFallback   = "Coronavirus data could not be retrieved"

	weatherTemplate = "The temperature is %d degrees Celsius and the weather is %s"
	casesTemplate   = "There have been %d coronavirus cases in your area yesterday"

	SourceWeather = "weather"
	SourceNews    = "news"
	SourceCases   = "cases"
)

type WeatherSource interface {
	Weather(ctx context.Context) (*models.WeatherResponse, error)
}

type HeadlineSource interface {
	Headlines(ctx context.Context) (*models.NewsResponse, error)
}

type CaseCountSource interface {
	CaseCount(ctx context.Context) (*models.CasesResponse, error)
}

// Pipeline формирует строки объявления и ждёт, пока они будут произнесены.
// Сбои источников заменяются запасной фразой и записью в диагностику.
type Pipeline struct {
	weather WeatherSource
	news    HeadlineSource
	cases   CaseCountSource
	speaker speech.Speaker
	diag    diagnostics.Recorder
	metrics *metrics.Metrics
}

func NewPipeline(
	weather WeatherSource,
	news HeadlineSource,
	cases CaseCountSource,
	speaker speech.Speaker,
	diag diagnostics.Recorder,
	m *metrics.Metrics,
) *Pipeline {
	if diag == nil {
		diag = diagnostics.LogRecorder{}
	}
	return &Pipeline{
		weather: weather,
		news:    news,
		cases:   cases,
		speaker: speaker,
		diag:    diag,
		metrics: m,
	}
}

// Announce озвучивает описание, затем погоду и новости, если они запрошены,
// и возвращает произнесённые строки. Ошибок не возвращает.
func (p *Pipeline) Announce(ctx context.Context, a *alarm.Alarm) []string {
	log := logger.WithService("announce").WithField("title", a.Title)

	// Источники опрашиваются параллельно, порядок строк фиксирован.
	// Group без контекста: сбой одного источника не прерывает остальные.
	var weatherLines, newsLines, caseLines []string
	var g errgroup.Group
	if a.IncludeWeather {
		g.Go(func() (err error) {
			weatherLines, err = p.weatherLines(ctx)
			return err
		})
	}
	if a.IncludeNews {
		g.Go(func() (err error) {
			newsLines, err = p.newsLines(ctx)
			return err
		})
		g.Go(func() (err error) {
			caseLines, err = p.caseLines(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Announcement degraded, fallback lines used")
	}

	lines := make([]string, 0, 1+len(weatherLines)+len(newsLines)+len(caseLines))
	lines = append(lines, a.Description)
	lines = append(lines, weatherLines...)
	lines = append(lines, newsLines...)
	lines = append(lines, caseLines...)

	for _, line := range lines {
		if err := p.speaker.Say(ctx, line); err != nil {
			log.Warnf("Failed to queue line: %v", err)
		}
	}
	if err := p.speaker.FlushAndWait(ctx); err != nil {
		log.Errorf("Speech failed: %v", err)
	}

	log.WithField("lines", len(lines)).Info("Alarm announced")
	return lines
}

func (p *Pipeline) weatherLines(ctx context.Context) ([]string, error) {
	resp, err := p.weather.Weather(ctx)
	if err != nil {
		p.fail(ctx, SourceWeather, err, nil)
		return []string{WeatherFallback}, fmt.Errorf("%s: %w", SourceWeather, err)
	}
	kelvin, desc, err := resp.Current()
	if err != nil {
		p.fail(ctx, SourceWeather, err, resp.Raw)
		return []string{WeatherFallback}, fmt.Errorf("%s: %w", SourceWeather, err)
	}
	return []string{fmt.Sprintf(weatherTemplate, Celsius(kelvin), desc)}, nil
}

func (p *Pipeline) newsLines(ctx context.Context) ([]string, error) {
	resp, err := p.news.Headlines(ctx)
	if err != nil {
		p.fail(ctx, SourceNews, err, nil)
		return []string{NewsFallback}, fmt.Errorf("%s: %w", SourceNews, err)
	}
	articles, err := resp.Headlines()
	if err != nil {
		p.fail(ctx, SourceNews, err, resp.Raw)
		return []string{NewsFallback}, fmt.Errorf("%s: %w", SourceNews, err)
	}

	lines := make([]string, 0, len(articles)+1)
	lines = append(lines, NewsIntro)
	for _, article := range articles {
		lines = append(lines, article.Title)
	}
	return lines, nil
}

func (p *Pipeline) caseLines(ctx context.Context) ([]string, error) {
	resp, err := p.cases.CaseCount(ctx)
	if err != nil {
		p.fail(ctx, SourceCases, err, nil)
		return []string{CasesFallback}, fmt.Errorf("%s: %w", SourceCases, err)
	}
	n, err := resp.LatestNewCases()
	if err != nil {
		p.fail(ctx, SourceCases, err, resp.Raw)
		return []string{CasesFallback}, fmt.Errorf("%s: %w", SourceCases, err)
	}
	return []string{fmt.Sprintf(casesTemplate, n)}, nil
}

func (p *Pipeline) fail(ctx context.Context, source string, err error, raw []byte) {
	if raw == nil {
		raw = models.PayloadOf(err)
	}
	p.metrics.Fallback(source)
	p.diag.Record(ctx, source, err, string(raw))
}

// Celsius переводит кельвины в целые градусы Цельсия с банковским округлением.
func Celsius(kelvin float64) int {
	return int(math.RoundToEven(kelvin - 273.15))
}
