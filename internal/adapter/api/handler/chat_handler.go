package handler

import (
	"context"
	"strconv"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/domain/entity"
	ws "tijuanashop/internal/infrastructure/websocket"
	"tijuanashop/internal/usecase"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
	"tijuanashop/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

// RecipientID is optional: without it the chat is opened with the
// product's seller.
type createChatRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	RecipientID string `json:"recipient_id"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// CreateChat is the "contact seller" action. It returns the existing chat
// when there is one.
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var (
		chatID string
		err    error
	)
	if req.RecipientID != "" {
		chatID, err = h.chatUseCase.GetOrCreateChat(ctx, userID, req.RecipientID, req.ProductID)
	} else {
		chatID, err = h.chatUseCase.ContactSeller(ctx, userID, req.ProductID)
	}
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"chat_id": chatID})
}

func (h *ChatHandler) GetUserChats(c echo.Context) error {
	chats, err := h.chatUseCase.ListChatsForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, chats)
}

func (h *ChatHandler) GetChatByID(c echo.Context) error {
	chat, err := h.chatUseCase.GetChat(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, chat)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	messages, err := h.chatUseCase.ListMessages(c.Request().Context(), middleware.UserID(c), c.Param("id"), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

// StreamChat upgrades to a websocket and pushes every message added to the
// chat until the client disconnects.
func (h *ChatHandler) StreamChat(c echo.Context) error {
	userID := middleware.UserID(c)
	chatID := c.Param("id")

	if _, err := h.chatUseCase.GetChat(c.Request().Context(), userID, chatID); err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("StreamChat: upgrade failed: %v", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// reading is only used to notice the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = h.chatUseCase.StreamMessages(ctx, userID, chatID, func(m *entity.Message) error {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteMessage(gorillaws.TextMessage, ws.Encode(ws.TypeChatMessage, chatID, m))
	})
	if err != nil {
		logger.Warn("StreamChat: stream for chat %s ended: %v", chatID, err)
	}
	return nil
}
