package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/response"
	"github.com/smartquizzer/quizzer-backend/internal/service"
	"github.com/smartquizzer/quizzer-backend/internal/validator"
	ws "github.com/smartquizzer/quizzer-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams answer submission over a WebSocket.
type WSHandler struct {
	quizzes  QuizUseCase
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quizzes QuizUseCase, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quizzes:  quizzes,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// QuizStream godoc
// WS /ws/v1/quiz/:id/stream?token=
// Upgrades to WebSocket. Each "answer" action is graded like submit-answer;
// "complete" finalizes the quiz and closes the stream.
func (h *WSHandler) QuizStream(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Ownership and state are checked before the upgrade so the client gets
	// a regular HTTP error.
	quiz, err := h.quizzes.Get(c.Request.Context(), quizID, userID)
	if err != nil {
		failFromService(c, err)
		return
	}
	switch quiz.Status {
	case model.SessionStatusCompleted:
		response.Fail(c, http.StatusConflict, response.ErrQuizCompleted)
		return
	case model.SessionStatusAbandoned:
		response.Fail(c, http.StatusConflict, response.ErrQuizAbandoned)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int64("user_id", userID).
		Int64("quiz_id", quizID).
		Logger()

	wsLog.Info().Msg("Client connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, wsLog, userID, quizID, &msg)
		case ws.ActionComplete:
			if h.handleComplete(conn, wsLog, userID, quizID) {
				return
			}
		case ws.ActionPing:
			ws.WriteJSON(conn, ws.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handleAnswer(conn *websocket.Conn, wsLog zerolog.Logger, userID, quizID int64, msg *ws.RequestPayload) {
	if msg.QuestionID <= 0 || strings.TrimSpace(msg.UserAnswer) == "" {
		ws.WriteError(conn, "question_id and user_answer are required")
		return
	}

	req := model.SubmitAnswerRequest{
		QuestionID:       msg.QuestionID,
		UserAnswer:       msg.UserAnswer,
		TimeTakenSeconds: msg.TimeTakenSeconds,
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		ws.WriteError(conn, validationMessage(err))
		return
	}

	result, err := h.quizzes.SubmitAnswer(context.Background(), userID, quizID, req)
	if err != nil {
		ws.WriteError(conn, streamError(wsLog, err))
		return
	}

	ws.WriteJSON(conn, ws.EventAnswered, result)
}

// handleComplete reports whether the stream should close.
func (h *WSHandler) handleComplete(conn *websocket.Conn, wsLog zerolog.Logger, userID, quizID int64) bool {
	results, err := h.quizzes.Complete(context.Background(), userID, quizID)
	if err != nil {
		ws.WriteError(conn, streamError(wsLog, err))
		return errors.Is(err, service.ErrSessionCompleted) || errors.Is(err, service.ErrSessionClosed)
	}

	wsLog.Info().Float64("score", results.Score).Msg("Quiz completed over stream")
	ws.WriteJSON(conn, ws.EventCompleted, results)
	return true
}

// validationMessage flattens field errors into one line, ordered by field.
func validationMessage(err error) string {
	fields := validator.TranslateErrors(err)
	keys := lo.Keys(fields)
	sort.Strings(keys)
	return strings.Join(lo.Map(keys, func(k string, _ int) string { return fields[k] }), "; ")
}

// streamError turns a service error into a client-safe message.
func streamError(wsLog zerolog.Logger, err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return response.GetMessage(response.ErrNotFound)
	case errors.Is(err, service.ErrSessionCompleted):
		return response.GetMessage(response.ErrQuizCompleted)
	case errors.Is(err, service.ErrSessionClosed):
		return response.GetMessage(response.ErrQuizAbandoned)
	case errors.Is(err, service.ErrAlreadyAnswered):
		return response.GetMessage(response.ErrAlreadyAnswered)
	}
	wsLog.Error().Err(err).Msg("Stream action failed")
	return response.GetMessage(response.ErrInternal)
}
