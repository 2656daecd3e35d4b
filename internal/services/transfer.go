package services

import (
	"context"
	"fmt"
	"sync"

	"eventflow/internal/models"

	"github.com/google/uuid"
)

// TransferStep is one screen of the transfer form
type TransferStep int

const (
	TransferStepForm    TransferStep = 1
	TransferStepConfirm TransferStep = 2
	TransferStepSuccess TransferStep = 3
)

func (s TransferStep) String() string {
	switch s {
	case TransferStepForm:
		return "form"
	case TransferStepConfirm:
		return "confirm"
	case TransferStepSuccess:
		return "success"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// MsgTransferFailed is shown under the form when a confirmed transfer fails
const MsgTransferFailed = "Transfer failed. Please try again."

// TransferFlow walks one ticket through form, confirmation and success
type TransferFlow struct {
	svc    *TicketService
	ticket *models.Ticket

	mu         sync.Mutex
	step       TransferStep
	request    models.TransferRequest
	errors     models.ValidationErrors
	receipt    *models.TransferReceipt
	pending    bool
	generation uint64
}

// TransferView is a snapshot of a transfer flow
type TransferView struct {
	TicketID string                  `json:"ticketId"`
	Step     TransferStep            `json:"step"`
	StepName string                  `json:"stepName"`
	Request  models.TransferRequest  `json:"request"`
	Errors   models.ValidationErrors `json:"errors,omitempty"`
	Receipt  *models.TransferReceipt `json:"receipt,omitempty"`
}

// StartTransfer opens the transfer form for a ticket. Only valid tickets
// that have not been checked in can change hands.
func (s *TicketService) StartTransfer(ticketID string) (*TransferFlow, error) {
	ticket, err := s.tickets.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.CanBeTransferred() {
		return nil, fmt.Errorf("%w: %s is %s", models.ErrNotTransferable, ticket.ID, ticket.Status)
	}

	return &TransferFlow{svc: s, ticket: ticket, step: TransferStepForm}, nil
}

// View returns the current state of the flow
func (f *TransferFlow) View() TransferView {
	f.mu.Lock()
	defer f.mu.Unlock()

	var receipt *models.TransferReceipt
	if f.receipt != nil {
		r := *f.receipt
		receipt = &r
	}

	var errs models.ValidationErrors
	if len(f.errors) > 0 {
		errs = models.ValidationErrors{}
		errs.Merge(f.errors)
	}

	return TransferView{
		TicketID: f.ticket.ID,
		Step:     f.step,
		StepName: f.step.String(),
		Request:  f.request,
		Errors:   errs,
		Receipt:  receipt,
	}
}

// Step returns the current step
func (f *TransferFlow) Step() TransferStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Submit validates the form and moves to the confirmation step. Field
// errors keep the flow on the form.
func (f *TransferFlow) Submit(req models.TransferRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != TransferStepForm || f.pending {
		return fmt.Errorf("%w: transfer is at %s", models.ErrInvalidStage, f.step)
	}

	f.request = req
	if errs := req.Validate(); !errs.Empty() {
		f.errors = errs
		return errs
	}

	f.errors = nil
	f.step = TransferStepConfirm
	return nil
}

// Back returns from confirmation to the form, keeping what was entered
func (f *TransferFlow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != TransferStepConfirm || f.pending {
		return fmt.Errorf("%w: transfer is at %s", models.ErrInvalidStage, f.step)
	}
	f.step = TransferStepForm
	return nil
}

// Confirm performs the transfer after the simulated delay. On failure the
// flow returns to the form with a submit error.
func (f *TransferFlow) Confirm(ctx context.Context) (*models.TransferReceipt, error) {
	f.mu.Lock()
	if f.step != TransferStepConfirm || f.pending {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: transfer is at %s", models.ErrInvalidStage, f.step)
	}
	f.pending = true
	gen := f.generation
	req := f.request
	f.mu.Unlock()

	receipt := &models.TransferReceipt{
		ID:              uuid.New().String(),
		TicketID:        f.ticket.ID,
		RecipientEmail:  req.RecipientEmail,
		RecipientName:   req.RecipientName,
		NotifyRecipient: req.NotifyRecipient,
	}

	err := sleepCtx(ctx, f.svc.transferDelay)
	if err == nil {
		receipt.TransferredAt = f.svc.clock()
		err = f.svc.tickets.RecordTransfer(receipt)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen {
		return nil, fmt.Errorf("%w: transfer was reset", models.ErrInvalidStage)
	}
	f.pending = false

	if err != nil {
		f.step = TransferStepForm
		f.errors = models.ValidationErrors{"submit": MsgTransferFailed}
		f.svc.logger.WarnContext(ctx, "Tickets: transfer failed", "ticket", f.ticket.ID, "error", err)
		return nil, err
	}

	f.step = TransferStepSuccess
	f.receipt = receipt
	f.svc.logger.InfoContext(ctx, "Tickets: transfer completed",
		"ticket", f.ticket.ID,
		"recipient", receipt.RecipientEmail,
		"notify", receipt.NotifyRecipient,
	)

	out := *receipt
	return &out, nil
}

// Reset clears the form and returns to the first step. A pending confirm
// finishes without touching the flow.
func (f *TransferFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.step = TransferStepForm
	f.request = models.TransferRequest{}
	f.errors = nil
	f.receipt = nil
	f.pending = false
	f.generation++
}
