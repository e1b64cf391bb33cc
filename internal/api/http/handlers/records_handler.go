package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/service"
)

// RecordsHandler exposes the customer record browsers.
type RecordsHandler struct {
	records   *service.RecordsService
	directory *service.DirectoryService
}

// NewRecordsHandler constructs handler.
func NewRecordsHandler(records *service.RecordsService, directory *service.DirectoryService) *RecordsHandler {
	return &RecordsHandler{records: records, directory: directory}
}

// ListUsers GET /users.
func (h *RecordsHandler) ListUsers(c *fiber.Ctx) error {
	res, err := h.records.ListUsers(c.UserContext(), service.UserListFilter{
		Search:    c.Query("q"),
		Status:    domain.UserStatus(c.Query("status")),
		KYCStatus: domain.KYCStatus(c.Query("kyc_status")),
		Page:      parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsersFromDomain(res.Items), "meta": pageMeta(res)})
}

// GetUser GET /users/:id.
func (h *RecordsHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.records.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserDetailFromDomain(user)})
}

// UserChats GET /users/:id/chats.
func (h *RecordsHandler) UserChats(c *fiber.Ctx) error {
	threads, err := h.directory.ListForParticipant(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(threads))
	for i := range threads {
		out = append(out, fiber.Map{
			"chat":     dto.ChatFromDomain(&threads[i].Chat),
			"messages": dto.MessagesFromDomain(threads[i].Messages),
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// ListAccounts GET /accounts.
func (h *RecordsHandler) ListAccounts(c *fiber.Ctx) error {
	res, err := h.records.ListAccounts(c.UserContext(), service.AccountListFilter{
		UserID: c.Query("user_id"),
		Status: domain.AccountStatus(c.Query("status")),
		Type:   c.Query("type"),
		Search: c.Query("q"),
		Page:   parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AccountsFromDomain(res.Items), "meta": pageMeta(res)})
}

// GetAccount GET /accounts/:id.
func (h *RecordsHandler) GetAccount(c *fiber.Ctx) error {
	account, err := h.records.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AccountFromDomain(account)})
}

// ListTransactions GET /transactions.
func (h *RecordsHandler) ListTransactions(c *fiber.Ctx) error {
	from, err := parseTime(c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseTime(c.Query("to"))
	if err != nil {
		return err
	}
	res, err := h.records.ListTransactions(c.UserContext(), service.TransactionListFilter{
		UserID:    c.Query("user_id"),
		AccountID: c.Query("account_id"),
		Status:    domain.TransactionStatus(c.Query("status")),
		Type:      c.Query("type"),
		From:      from,
		To:        to,
		Page:      parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransactionsFromDomain(res.Items), "meta": pageMeta(res)})
}

// GetTransaction GET /transactions/:id.
func (h *RecordsHandler) GetTransaction(c *fiber.Ctx) error {
	tx, err := h.records.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransactionFromDomain(tx)})
}

// ListKYC GET /kyc.
func (h *RecordsHandler) ListKYC(c *fiber.Ctx) error {
	res, err := h.records.ListKYC(c.UserContext(), service.KYCListFilter{
		Status:       domain.KYCSubmissionStatus(c.Query("status")),
		Priority:     c.Query("priority"),
		DocumentType: c.Query("document_type"),
		Page:         parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KYCListFromDomain(res.Items), "meta": pageMeta(res)})
}

// GetKYC GET /kyc/:id.
func (h *RecordsHandler) GetKYC(c *fiber.Ctx) error {
	sub, err := h.records.GetKYC(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KYCFromDomain(sub)})
}

// ApproveKYC POST /kyc/:id/approve.
func (h *RecordsHandler) ApproveKYC(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.KYCApproveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.records.ApproveKYC(c.UserContext(), c.Params("id"), admin.UID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KYCFromDomain(sub)})
}

// RejectKYC POST /kyc/:id/reject.
func (h *RecordsHandler) RejectKYC(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.KYCRejectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.records.RejectKYC(c.UserContext(), c.Params("id"), admin.UID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KYCFromDomain(sub)})
}

// RequestKYCInfo POST /kyc/:id/request-info.
func (h *RecordsHandler) RequestKYCInfo(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.KYCInfoRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.records.RequestMoreInfoKYC(c.UserContext(), c.Params("id"), admin.UID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KYCFromDomain(sub)})
}
