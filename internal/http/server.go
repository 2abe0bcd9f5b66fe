// Package http exposes the WhatsApp webhook endpoint and health checks.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// CommandHandler processes one inbound chat message and returns the
// reply text.
type CommandHandler interface {
	HandleCommand(ctx context.Context, text, handle, name string) (string, error)
}

// MessageSender delivers a reply back to the chat platform.
type MessageSender interface {
	SendMessage(ctx context.Context, to, text string) error
}

type Server struct {
	http.Server
	handler      CommandHandler
	sender       MessageSender
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, handler CommandHandler, sender MessageSender) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		handler:     handler,
		sender:      sender,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("/webhook", s.withRequestLogging(s.handleWebhook))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// Shutdown stops the HTTP server and background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// webhookPayload mirrors the gateway's message event shape.
type webhookPayload struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
	Data      struct {
		Messages struct {
			Key struct {
				RemoteJid string `json:"remoteJid"`
				FromMe    bool   `json:"fromMe"`
				ID        string `json:"id"`
			} `json:"key"`
			MessageTimestamp int64  `json:"messageTimestamp"`
			PushName         string `json:"pushName"`
			Message          struct {
				Conversation string `json:"conversation"`
			} `json:"message"`
		} `json:"messages"`
	} `json:"data"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusInternalServerError)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "decode payload", http.StatusBadRequest)
		return
	}

	msg := payload.Data.Messages
	text := strings.TrimSpace(msg.Message.Conversation)
	if msg.Key.FromMe || text == "" {
		writeJSONOK(w)
		return
	}

	ctx := r.Context()
	handle := strings.Replace(msg.Key.RemoteJid, "@s.whatsapp.net", "", 1)

	reply, err := s.handler.HandleCommand(ctx, text, handle, msg.PushName)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to process message",
			"error", err,
			"handle", handle)
		reply = "❌ Desculpe, ocorreu um erro ao processar sua mensagem."
	}

	if err := s.sender.SendMessage(ctx, handle, reply); err != nil {
		slog.ErrorContext(ctx, "Failed to send reply",
			"error", err,
			"handle", handle)
	}

	writeJSONOK(w)
}

func writeJSONOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// withRequestLogging adds rate limiting, request IDs and access logging.
func (s *Server) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
