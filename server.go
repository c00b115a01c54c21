package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const serviceName = "SMSC Simulator"

// Server is the HTTP front end: one listener for the dashboard API and
// one that mimics the carrier-side submission port.
type Server struct {
	smsc   *SMSC
	ledger *Ledger
	config *Config
	log    *logrus.Entry

	web *http.Server
	sms *http.Server
}

func NewServer(smsc *SMSC, ledger *Ledger, config *Config, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{smsc: smsc, ledger: ledger, config: config, log: log}
}

// routes is the explicit dispatch table: path, then method, to handler.
func (s *Server) routes() map[string]map[string]http.HandlerFunc {
	return map[string]map[string]http.HandlerFunc{
		"/cgi-bin/smshandler.pl": {
			http.MethodGet:  s.handleSubmit,
			http.MethodPost: s.handleSubmit,
		},
		"/status":   {http.MethodGet: s.handleStatus},
		"/stats":    {http.MethodGet: s.handleStats},
		"/messages": {http.MethodGet: s.handleMessages, http.MethodDelete: s.handleClearMessages},
		"/simulate-outgoing": {
			http.MethodGet:  s.handleSimulateOutgoing,
			http.MethodPost: s.handleSimulateOutgoing,
		},
		"/sms-reply": {http.MethodPost: s.handleReply},
		"/reset-stats": {
			http.MethodGet:  s.handleResetStats,
			http.MethodPost: s.handleResetStats,
		},
		"/config":                        {http.MethodGet: s.handleConfig},
		"/config/reset-stats":            {http.MethodGet: s.handleResetStats},
		"/config/update-log-level":       {http.MethodPost: s.handleUpdateLogLevel},
		"/config/update-timeout":         {http.MethodPost: s.handleUpdateTimeout},
		"/config/update-max-connections": {http.MethodPost: s.handleUpdateMaxConnections},
		"/config/update-host":            {http.MethodPost: s.handleUpdateHost},
	}
}

// smsRoutes is the reduced table served on the carrier-side port.
func (s *Server) smsRoutes() map[string]map[string]http.HandlerFunc {
	return map[string]map[string]http.HandlerFunc{
		"/cgi-bin/smshandler.pl": {
			http.MethodGet:  s.handleSubmit,
			http.MethodPost: s.handleSubmit,
		},
		"/status": {http.MethodGet: s.handleStatus},
	}
}

// dispatcher turns a route table into a handler with CORS headers and
// JSON errors on every path.
func (s *Server) dispatcher(routes map[string]map[string]http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		methods, ok := routes[r.URL.Path]
		if !ok {
			s.writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		handle, ok := methods[r.Method]
		if !ok {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("Request")
		handle(w, r)
	})
}

// Start brings both listeners up. It returns after the listeners are
// running; failures end up on the returned channel.
func (s *Server) Start() <-chan error {
	cfg := s.config.Snapshot()
	errc := make(chan error, 2)
	s.web = s.newHTTPServer(cfg.Host, cfg.WebPort, s.dispatcher(s.routes()), cfg)
	s.sms = s.newHTTPServer(cfg.Host, cfg.SMSPort, s.dispatcher(s.smsRoutes()), cfg)
	for name, srv := range map[string]*http.Server{"web": s.web, "sms": s.sms} {
		go func(name string, srv *http.Server) {
			s.log.WithFields(logrus.Fields{"server": name, "addr": srv.Addr}).Info("Listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errc <- fmt.Errorf("%s server: %w", name, err)
			}
		}(name, srv)
	}
	return errc
}

func (s *Server) newHTTPServer(host string, port int, handler http.Handler, cfg Settings) *http.Server {
	timeout := time.Duration(cfg.Timeout) * time.Second
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// Stop shuts both listeners down.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{s.web, s.sms} {
		if srv != nil {
			if err := srv.Shutdown(ctx); err != nil {
				s.log.WithError(err).Warn("Shutdown error")
			}
		}
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	submit := r.URL.Query().Get("submit")
	msisdn := r.URL.Query().Get("MSISDN")
	if r.Method == http.MethodPost && submit == "" {
		// the external software posts form fields instead of query params
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, "cannot parse form data")
			return
		}
		submit = r.PostForm.Get("apdu_hex")
		if msisdn == "" {
			msisdn = r.PostForm.Get("msisdn")
		}
	}
	if submit == "" {
		s.writeError(w, http.StatusBadRequest, "missing submit parameter")
		return
	}
	s.writeJSON(w, http.StatusOK, s.smsc.Submit(submit, msisdn))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "running",
		"service":   serviceName,
		"version":   version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.Stats())
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Direction: Direction(r.URL.Query().Get("direction")),
		Status:    Status(r.URL.Query().Get("status")),
	}
	messages := s.ledger.List(filter)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"messages":    messages,
		"total_count": len(messages),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	s.ledger.Clear()
	s.log.Info("Messages cleared")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "All messages cleared successfully",
	})
}

func (s *Server) handleSimulateOutgoing(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Query().Get("destination")
	text := r.URL.Query().Get("message")
	s.writeJSON(w, http.StatusOK, s.smsc.SimulateOutgoing(destination, text))
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "cannot parse form data")
		return
	}
	originalID, _ := strconv.ParseUint(r.PostForm.Get("original_message_id"), 10, 64)
	resp := s.smsc.Reply(r.PostForm.Get("msisdn"), r.PostForm.Get("message"), originalID)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	s.smsc.ResetStats()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "Statistics reset successfully",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.config.Snapshot()
	stats := s.ledger.Stats()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"host":                cfg.Host,
		"web_port":            cfg.WebPort,
		"sms_port":            cfg.SMSPort,
		"timeout":             cfg.Timeout,
		"max_connections":     cfg.MaxConnections,
		"log_level":           cfg.LogLevel,
		"version":             version,
		"total_messages":      stats.Total,
		"successful_messages": stats.Successful,
		"failed_messages":     stats.Failed,
		"uptime":              uptimeString(stats.StartTime),
	})
}

func (s *Server) handleUpdateLogLevel(w http.ResponseWriter, r *http.Request) {
	s.handleConfigUpdate(w, r, "log_level", func(body map[string]any) error {
		level, _ := body["log_level"].(string)
		return s.config.SetLogLevel(level)
	})
}

func (s *Server) handleUpdateTimeout(w http.ResponseWriter, r *http.Request) {
	s.handleConfigUpdate(w, r, "timeout", func(body map[string]any) error {
		seconds, ok := body["timeout"].(float64)
		if !ok {
			return fmt.Errorf("timeout must be a number")
		}
		return s.config.SetTimeout(int(seconds))
	})
}

func (s *Server) handleUpdateMaxConnections(w http.ResponseWriter, r *http.Request) {
	s.handleConfigUpdate(w, r, "max_connections", func(body map[string]any) error {
		n, ok := body["max_connections"].(float64)
		if !ok {
			return fmt.Errorf("max_connections must be a number")
		}
		return s.config.SetMaxConnections(int(n))
	})
}

func (s *Server) handleUpdateHost(w http.ResponseWriter, r *http.Request) {
	s.handleConfigUpdate(w, r, "host", func(body map[string]any) error {
		host, _ := body["host"].(string)
		return s.config.SetHost(host)
	})
}

func (s *Server) handleConfigUpdate(w http.ResponseWriter, r *http.Request, field string, apply func(map[string]any) error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := apply(body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.config.Save(); err != nil {
		s.log.WithError(err).Error("Config save failed")
	}
	s.log.WithField(field, body[field]).Info("Configuration updated")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%s updated", field),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("Response encoding failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error":       true,
		"message":     message,
		"status_code": status,
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
