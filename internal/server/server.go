package server

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"smart_alarm/internal/alarm"
	"smart_alarm/internal/engine"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/models"
	"strings"
	"time"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Поддерживаемые форматы времени будильника (datetime-local и заголовок).
var alarmLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Engine — операции ядра, доступные веб-слою.
type Engine interface {
	CreateAlarm(at time.Time, description string, weather, news bool) (engine.Outcome, error)
	CancelAlarm(title string)
	ListAlarms() []alarm.Alarm
	Status() string
	RefreshThrottled(ctx context.Context) int
	DismissNotification(title string)
	ListNotifications() []models.NotificationItem
}

// Server хранит зависимости HTTP-обработчиков.
type Server struct {
	engine   Engine
	location *time.Location
}

// NewServer создаёт Server; время будильников разбирается в часовом поясе loc.
func NewServer(e Engine, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	return &Server{engine: e, location: loc}
}

// Routes регистрирует обработчики на mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.Index)
	mux.HandleFunc("GET /index", s.Index)
	mux.HandleFunc("GET /api/alarms", s.ListAlarms)
	mux.HandleFunc("POST /api/alarms", s.CreateAlarm)
	mux.HandleFunc("DELETE /api/alarms/{title}", s.CancelAlarm)
	mux.HandleFunc("GET /api/notifications", s.ListNotifications)
	mux.HandleFunc("DELETE /api/notifications/{title}", s.DismissNotification)
	mux.HandleFunc("GET /health", s.HealthCheck)
}

type indexPage struct {
	Status        string
	Alarms        []alarm.Alarm
	Notifications []models.NotificationItem
}

// Index обрабатывает форму страницы: создание будильника, затем его отмену,
// затем скрытие уведомления; после этого обновляет ленту и рисует страницу.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	alarmTime := q.Get("alarm")
	description := q.Get("two")

	switch {
	case alarmTime != "" && description != "":
		at, err := s.parseTime(alarmTime)
		if err != nil {
			http.Error(w, "Invalid alarm time", http.StatusBadRequest)
			return
		}
		if _, err := s.engine.CreateAlarm(at, description, q.Get("weather") != "", q.Get("news") != ""); err != nil {
			logger.Log.WithError(err).Error("Failed to schedule alarm")
			http.Error(w, "Failed to schedule alarm", http.StatusServiceUnavailable)
			return
		}
	case q.Get("alarm_item") != "":
		s.engine.CancelAlarm(q.Get("alarm_item"))
	case q.Get("notif") != "":
		s.engine.DismissNotification(q.Get("notif"))
	}

	s.engine.RefreshThrottled(r.Context())

	page := indexPage{
		Status:        s.engine.Status(),
		Alarms:        s.engine.ListAlarms(),
		Notifications: s.engine.ListNotifications(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		logger.Log.WithError(err).Error("Failed to render index")
	}
}

type createAlarmRequest struct {
	Time    string `json:"time"`
	Content string `json:"content"`
	Weather bool   `json:"weather"`
	News    bool   `json:"news"`
}

type createAlarmResponse struct {
	Outcome engine.Outcome `json:"outcome"`
	Status  string         `json:"status"`
}

// CreateAlarm принимает JSON и возвращает 201, 409 для дубликата или 422 для прошедшего времени.
func (s *Server) CreateAlarm(w http.ResponseWriter, r *http.Request) {
	var req createAlarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "Alarm description is required", http.StatusBadRequest)
		return
	}
	at, err := s.parseTime(req.Time)
	if err != nil {
		http.Error(w, "Invalid alarm time", http.StatusBadRequest)
		return
	}

	outcome, err := s.engine.CreateAlarm(at, req.Content, req.Weather, req.News)
	if err != nil {
		http.Error(w, "Failed to schedule alarm", http.StatusServiceUnavailable)
		return
	}

	status := http.StatusCreated
	switch outcome {
	case engine.DuplicateInstant:
		status = http.StatusConflict
	case engine.InPast:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, createAlarmResponse{Outcome: outcome, Status: s.engine.Status()})
}

func (s *Server) ListAlarms(w http.ResponseWriter, r *http.Request) {
	alarms := s.engine.ListAlarms()
	if alarms == nil {
		alarms = []alarm.Alarm{}
	}
	writeJSON(w, http.StatusOK, alarms)
}

func (s *Server) CancelAlarm(w http.ResponseWriter, r *http.Request) {
	s.engine.CancelAlarm(r.PathValue("title"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items := s.engine.ListNotifications()
	if items == nil {
		items = []models.NotificationItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) DismissNotification(w http.ResponseWriter, r *http.Request) {
	s.engine.DismissNotification(r.PathValue("title"))
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck всегда отвечает 200: ядро не зависит от внешних сервисов.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) parseTime(value string) (time.Time, error) {
	var err error
	for _, layout := range alarmLayouts {
		var at time.Time
		if at, err = time.ParseInLocation(layout, value, s.location); err == nil {
			return at, nil
		}
	}
	return time.Time{}, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}
