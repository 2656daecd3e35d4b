package models

import (
	"errors"
	"slices"
	"time"
)

// AuditLog represents an administrative action log entry. Admin actions
// are recorded here and logged; none of them change catalog or ticket data.
type AuditLog struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Note       string    `json:"note,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuditLogCreateRequest represents a request to create an audit log entry
type AuditLogCreateRequest struct {
	Action     string `json:"action"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Note       string `json:"note,omitempty"`
	IPAddress  string `json:"-"`
	UserAgent  string `json:"-"`
}

// Common audit actions
const (
	AuditActionEventApprove   = "event_approve"
	AuditActionEventReject    = "event_reject"
	AuditActionEventSuspend   = "event_suspend"
	AuditActionPaymentRefund  = "payment_refund"
	AuditActionPaymentDispute = "payment_dispute"
	AuditActionSettingsSave   = "settings_save"
)

// Common target types
const (
	AuditTargetEvent    = "event"
	AuditTargetPayment  = "payment"
	AuditTargetSettings = "settings"
)

var auditTargets = map[string]string{
	AuditActionEventApprove:   AuditTargetEvent,
	AuditActionEventReject:    AuditTargetEvent,
	AuditActionEventSuspend:   AuditTargetEvent,
	AuditActionPaymentRefund:  AuditTargetPayment,
	AuditActionPaymentDispute: AuditTargetPayment,
	AuditActionSettingsSave:   AuditTargetSettings,
}

// AuditActions lists the known actions, sorted
func AuditActions() []string {
	actions := make([]string, 0, len(auditTargets))
	for a := range auditTargets {
		actions = append(actions, a)
	}
	slices.Sort(actions)
	return actions
}

// Validate validates the audit log request and fills in the target type
func (r *AuditLogCreateRequest) Validate() error {
	target, ok := auditTargets[r.Action]
	if !ok {
		return errors.New("unknown admin action")
	}
	if r.TargetType == "" {
		r.TargetType = target
	}
	if r.TargetType != target {
		return errors.New("target type does not match action")
	}
	if r.TargetID == "" && target != AuditTargetSettings {
		return errors.New("target id is required")
	}
	return nil
}
