package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/service"
)

// ChatDirectory is the directory behavior the chat endpoints need.
type ChatDirectory interface {
	List(ctx context.Context, filter service.ChatFilter) ([]domain.Chat, error)
	Get(ctx context.Context, id string) (*domain.Chat, error)
	Stats(ctx context.Context) (domain.ChatStats, error)
	Create(ctx context.Context, input service.ChatCreateInput) (string, error)
	UpdateStatus(ctx context.Context, id string, status domain.ChatStatus, actingAdminID string) error
	UpdatePriority(ctx context.Context, id string, priority domain.ChatPriority, actingAdminID string) error
	UpdateNotes(ctx context.Context, id, notes, actingAdminID string) error
	Assign(ctx context.Context, id, adminID, adminName, actingAdminID string) error
	MarkRead(ctx context.Context, id, adminID string)
}

// ChatTranscript is the transcript behavior the chat endpoints need.
type ChatTranscript interface {
	List(ctx context.Context, chatID string, limit int) ([]domain.ChatMessage, error)
	Send(ctx context.Context, input service.SendInput) (*domain.ChatMessage, error)
}

// ChatAudit lists recorded chat history.
type ChatAudit interface {
	ListHistory(ctx context.Context, chatID string, limit int) ([]domain.ChatHistory, error)
}

// ChatsHandler manages support conversation endpoints.
type ChatsHandler struct {
	directory  ChatDirectory
	transcript ChatTranscript
	audit      ChatAudit
}

// NewChatsHandler constructs handler.
func NewChatsHandler(directory ChatDirectory, transcript ChatTranscript, audit ChatAudit) *ChatsHandler {
	return &ChatsHandler{directory: directory, transcript: transcript, audit: audit}
}

// List GET /chats.
func (h *ChatsHandler) List(c *fiber.Ctx) error {
	chats, err := h.directory.List(c.UserContext(), service.ChatFilter{
		Status: domain.ChatStatus(c.Query("status")),
		Search: c.Query("q"),
		Limit:  parseInt(c.Query("limit"), service.DefaultChatListLimit),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatsFromDomain(chats)})
}

// Create POST /chats.
func (h *ChatsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateChatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.directory.Create(c.UserContext(), service.ChatCreateInput{
		UserID:       req.UserID,
		UserName:     req.UserName,
		UserEmail:    req.UserEmail,
		Subject:      req.Subject,
		Category:     req.Category,
		Status:       req.Status,
		Priority:     req.Priority,
		Participants: req.Participants,
		Tags:         req.Tags,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": id}})
}

// Stats GET /chats/stats.
func (h *ChatsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.directory.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Get GET /chats/:id.
func (h *ChatsHandler) Get(c *fiber.Ctx) error {
	chat, err := h.directory.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatFromDomain(chat)})
}

// UpdateStatus PATCH /chats/:id/status.
func (h *ChatsHandler) UpdateStatus(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.directory.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, admin.UID); err != nil {
		return err
	}
	return h.respondChat(c)
}

// UpdatePriority PATCH /chats/:id/priority.
func (h *ChatsHandler) UpdatePriority(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.directory.UpdatePriority(c.UserContext(), c.Params("id"), req.Priority, admin.UID); err != nil {
		return err
	}
	return h.respondChat(c)
}

// UpdateNotes PATCH /chats/:id/notes.
func (h *ChatsHandler) UpdateNotes(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.UpdateNotesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.directory.UpdateNotes(c.UserContext(), c.Params("id"), req.Notes, admin.UID); err != nil {
		return err
	}
	return h.respondChat(c)
}

// Assign POST /chats/:id/assign. Without a body the caller takes the chat.
func (h *ChatsHandler) Assign(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.AdminID == "" {
		req.AdminID = admin.UID
		req.AdminName = admin.Name
	}
	if err := h.directory.Assign(c.UserContext(), c.Params("id"), req.AdminID, req.AdminName, admin.UID); err != nil {
		return err
	}
	return h.respondChat(c)
}

// MarkRead POST /chats/:id/read. Always succeeds; failures are logged by the directory.
func (h *ChatsHandler) MarkRead(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	h.directory.MarkRead(c.UserContext(), c.Params("id"), admin.UID)
	return c.SendStatus(http.StatusNoContent)
}

// ListMessages GET /chats/:id/messages.
func (h *ChatsHandler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.transcript.List(c.UserContext(), c.Params("id"), parseInt(c.Query("limit"), service.DefaultMessageListLimit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MessagesFromDomain(msgs)})
}

// SendMessage POST /chats/:id/messages. Messages are sent as the calling admin.
func (h *ChatsHandler) SendMessage(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	msg, err := h.transcript.Send(c.UserContext(), service.SendInput{
		ChatID:      c.Params("id"),
		SenderID:    admin.UID,
		SenderRole:  domain.SenderRoleAdmin,
		Body:        req.Body,
		Attachments: req.DomainAttachments(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.MessageFromDomain(msg)})
}

// History GET /chats/:id/history.
func (h *ChatsHandler) History(c *fiber.Ctx) error {
	entries, err := h.audit.ListHistory(c.UserContext(), c.Params("id"), parseInt(c.Query("limit"), 100))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HistoryFromDomain(entries)})
}

func (h *ChatsHandler) respondChat(c *fiber.Ctx) error {
	chat, err := h.directory.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatFromDomain(chat)})
}
