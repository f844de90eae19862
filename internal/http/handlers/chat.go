package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"designdesk/internal/agent"
	"designdesk/internal/domain"
	"designdesk/internal/middleware"
)

type chatRequest struct {
	Message        string               `json:"message"`
	Draft          *domain.RequestDraft `json:"draft,omitempty"`
	History        []domain.Turn        `json:"history,omitempty"`
	ConversationID string               `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Reply          string              `json:"reply"`
	Draft          domain.RequestDraft `json:"draft"`
	MissingFields  []string            `json:"missing_fields"`
	IsComplete     bool                `json:"is_complete"`
	Guidance       []string            `json:"guidance"`
	ConversationID string              `json:"conversation_id"`
	RoutedTo       agent.Intent        `json:"routed_to"`
}

const (
	greetingZH = "您好！我是设计需求助手。请告诉我您需要什么设计（如 Banner、海报、详情页、图标），我会帮您整理需求。"
	greetingEN = "Hi! I am the design request assistant. Tell me what you need (banner, poster, detail page, icon) and I will help you shape the request."
)

// Chat is the request/response conversational endpoint. The engine is
// stateless between calls: the client supplies the draft and history it got
// back last turn.
func (a *App) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Message == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	state := &domain.ConversationState{Turns: req.History}
	if req.Draft != nil {
		state.Draft = *req.Draft
	}

	result, err := a.Orchestrator.Process(r.Context(), agent.Input{
		Message:     req.Message,
		RequesterID: requesterID(r),
		Locale:      middleware.LocaleFromContext(r.Context()),
		State:       state,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("conversation_id", conversationID).Msg("chat: turn failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to process message")
		return
	}
	a.json(w, http.StatusOK, toChatResponse(result, conversationID))
}

type wsInbound struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

type wsOutbound struct {
	Type string `json:"type"`
	chatResponse
}

// ChatWS is the persistent-channel variant. The first client frame is an
// init handshake: without a conversation id the server opens a new session
// and sends a greeting turn; with one it resumes silently. Turns within a
// session are processed serially by the single read loop; independent
// sessions run in parallel.
func (a *App) ChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("chat_ws: accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	ctx := r.Context()
	locale := middleware.LocaleFromContext(ctx)
	requester := requesterID(r)

	var init wsInbound
	if err := wsjson.Read(ctx, conn, &init); err != nil {
		return
	}
	if init.Type != "init" {
		conn.Close(websocket.StatusPolicyViolation, "expected init frame")
		return
	}

	state := &domain.ConversationState{}
	conversationID := init.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
		greeting := greetingZH
		if locale == "en" {
			greeting = greetingEN
		}
		state.AppendTurn(domain.RoleAssistant, greeting)
		out := wsOutbound{Type: "greeting", chatResponse: chatResponse{
			Reply:          greeting,
			MissingFields:  append([]string(nil), domain.RequiredDraftFields...),
			Guidance:       []string{},
			ConversationID: conversationID,
		}}
		if err := wsjson.Write(ctx, conn, out); err != nil {
			return
		}
	} else {
		// The server holds no draft state for a resumed session, so the
		// acknowledgement carries nothing beyond the id.
		connected := struct {
			Type           string `json:"type"`
			ConversationID string `json:"conversation_id"`
		}{Type: "connected", ConversationID: conversationID}
		if err := wsjson.Write(ctx, conn, connected); err != nil {
			return
		}
	}

	for {
		var in wsInbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			if !isExpectedClose(err) {
				a.Logger.Debug().Err(err).Str("conversation_id", conversationID).Msg("chat_ws: read ended")
			}
			return
		}
		if in.Message == "" {
			continue
		}
		result, err := a.Orchestrator.Process(ctx, agent.Input{
			Message:     in.Message,
			RequesterID: requester,
			Locale:      locale,
			State:       state,
		})
		if err != nil {
			a.Logger.Error().Err(err).Str("conversation_id", conversationID).Msg("chat_ws: turn failed")
			_ = wsjson.Write(ctx, conn, map[string]string{
				"type":    "error",
				"message": "failed to process message",
			})
			continue
		}
		out := wsOutbound{Type: "reply", chatResponse: toChatResponse(result, conversationID)}
		if err := wsjson.Write(ctx, conn, out); err != nil {
			return
		}
	}
}

func toChatResponse(result *agent.Result, conversationID string) chatResponse {
	missing := result.MissingFields
	if missing == nil {
		missing = []string{}
	}
	guidance := result.Guidance
	if guidance == nil {
		guidance = []string{}
	}
	return chatResponse{
		Reply:          result.Reply,
		Draft:          result.Draft,
		MissingFields:  missing,
		IsComplete:     result.IsComplete,
		Guidance:       guidance,
		ConversationID: conversationID,
		RoutedTo:       result.RoutedTo,
	}
}

func isExpectedClose(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
