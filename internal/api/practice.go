package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// practiceMessage is sent by the client. "start" resets the session,
// "turn" adds a counselor turn and "analyze" scores the session so far.
type practiceMessage struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Language   string `json:"language,omitempty"`
}

type practiceResponse struct {
	Type     string           `json:"type"` // "ready", "reply", "analysis" or "error"
	Text     string           `json:"text,omitempty"`
	Analysis *analysis.Result `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// practiceSession is owned by one connection's read loop.
type practiceSession struct {
	topic      string
	difficulty string
	language   string
	turns      []transcript.RawTurn
}

func (p *practiceSession) reset(msg practiceMessage) {
	p.topic = simulator.NormalizeTopic(msg.Topic)
	p.difficulty = string(simulator.NormalizeDifficulty(msg.Difficulty))
	p.language = msg.Language
	p.turns = nil
}

// practice handles GET /ws/practice
func (s *Server) practice(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	sess := &practiceSession{}
	sess.reset(practiceMessage{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg practiceMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send(conn, practiceResponse{Type: "error", Error: "invalid message format"})
			continue
		}

		switch msg.Type {
		case "start":
			sess.reset(msg)
			s.send(conn, practiceResponse{Type: "ready", Text: sess.topic})
		case "turn":
			s.practiceTurn(conn, r, sess, msg)
		case "analyze":
			s.practiceAnalyze(conn, r, sess)
		default:
			s.send(conn, practiceResponse{Type: "error", Error: "unknown message type: " + msg.Type})
		}
	}
}

func (s *Server) practiceTurn(conn *websocket.Conn, r *http.Request, sess *practiceSession, msg practiceMessage) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		s.send(conn, practiceResponse{Type: "error", Error: "text is required"})
		return
	}
	if s.simulator == nil {
		s.send(conn, practiceResponse{Type: "error", Error: "LLM provider not configured"})
		return
	}

	sess.turns = append(sess.turns, transcript.RawTurn{Speaker: "counselor", Text: text, TS: time.Now().UnixMilli()})
	reply, err := s.simulator.Reply(r.Context(), simulator.ReplyRequest{
		Topic:      sess.topic,
		Difficulty: sess.difficulty,
		Transcript: sess.turns,
	})
	if err != nil {
		s.logger.Error("practice reply failed", "error", err)
		reply = simulator.FallbackReply
	}
	sess.turns = append(sess.turns, transcript.RawTurn{Speaker: "client", Text: reply, TS: time.Now().UnixMilli()})
	s.send(conn, practiceResponse{Type: "reply", Text: reply})
}

func (s *Server) practiceAnalyze(conn *websocket.Conn, r *http.Request, sess *practiceSession) {
	res, err := s.analysis.Analyze(r.Context(), analysis.Request{
		Turns:      sess.turns,
		Topic:      sess.topic,
		Difficulty: sess.difficulty,
		Language:   sess.language,
	})
	switch {
	case errors.Is(err, analysis.ErrEmptyTranscript):
		s.send(conn, practiceResponse{Type: "error", Error: "empty transcript"})
	case err != nil:
		s.send(conn, practiceResponse{Type: "error", Error: err.Error()})
	default:
		s.send(conn, practiceResponse{Type: "analysis", Analysis: res})
	}
}

func (s *Server) send(conn *websocket.Conn, resp practiceResponse) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
	}
}
