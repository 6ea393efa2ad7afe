package authinfra

import (
	"context"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogRegistration(ctx context.Context, userID kernel.UserID, email string, ip string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "registration",
		"user_id":     userID,
		"email":       email,
		"ip":          ip,
	}).Info("Audit: registration")
}

func (s *LogxAuditService) LogLoginAttempt(ctx context.Context, email string, success bool, ip string, userAgent string) {
	entry := logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "login_attempt",
		"email":       email,
		"success":     success,
		"ip":          ip,
		"user_agent":  userAgent,
	})
	if success {
		entry.Info("Audit: login attempt")
		return
	}
	entry.Warn("Audit: login attempt")
}

func (s *LogxAuditService) LogTokenRefresh(ctx context.Context, userID kernel.UserID, ip string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "token_refresh",
		"user_id":     userID,
		"ip":          ip,
	}).Info("Audit: token refresh")
}
