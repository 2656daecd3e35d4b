package models

import (
	"strings"
	"time"
)

// TransferRequest is what the ticket transfer form collects
type TransferRequest struct {
	RecipientEmail  string `json:"recipientEmail"`
	RecipientName   string `json:"recipientName"`
	Message         string `json:"message,omitempty"`
	NotifyRecipient bool   `json:"notifyRecipient"`
}

// Validate returns field errors for the transfer form
func (r TransferRequest) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if r.RecipientEmail == "" {
		errs.Add("recipientEmail", "Recipient email is required")
	} else if !IsValidEmail(r.RecipientEmail) {
		errs.Add("recipientEmail", MsgInvalidEmail)
	}

	if strings.TrimSpace(r.RecipientName) == "" {
		errs.Add("recipientName", "Recipient name is required")
	}

	return errs
}

// TransferReceipt records a completed ticket transfer
type TransferReceipt struct {
	ID              string    `json:"id"`
	TicketID        string    `json:"ticketId"`
	RecipientEmail  string    `json:"recipientEmail"`
	RecipientName   string    `json:"recipientName"`
	NotifyRecipient bool      `json:"notifyRecipient"`
	TransferredAt   time.Time `json:"transferredAt"`
}
