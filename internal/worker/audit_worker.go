package worker

import (
	"github.com/spec-kit/support-console/internal/service"
)

// StartAuditWorker registers the chat history recorder.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
