package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventflow/internal/metrics"
	"eventflow/internal/models"
	"eventflow/internal/notify"
)

// Stage is one of the ordered checkout phases
type Stage int

const (
	StageReview       Stage = 1
	StagePayment      Stage = 2
	StageConfirmation Stage = 3
)

func (s Stage) String() string {
	switch s {
	case StageReview:
		return "review"
	case StagePayment:
		return "payment"
	case StageConfirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// OrderRecorder keeps confirmed orders
type OrderRecorder interface {
	Save(order *models.OrderRecord) error
}

// CheckoutOptions wires a CheckoutService
type CheckoutOptions struct {
	Pricing    Pricing
	Promos     *PromoCatalog
	Payments   PaymentProcessor
	Notifier   notify.Notifier
	Orders     OrderRecorder
	PromoDelay time.Duration
	Clock      Clock
	Logger     *slog.Logger
}

// notifyTimeout bounds the order confirmation once the request is gone
const notifyTimeout = 5 * time.Second

// CheckoutService creates checkouts that share pricing, promo codes and
// the payment processor
type CheckoutService struct {
	pricing    Pricing
	promos     *PromoCatalog
	payments   PaymentProcessor
	notifier   notify.Notifier
	orders     OrderRecorder
	promoDelay time.Duration
	clock      Clock
	logger     *slog.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(opts CheckoutOptions) *CheckoutService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Promos == nil {
		opts.Promos = DefaultPromoCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLogNotifier(opts.Logger)
	}

	return &CheckoutService{
		pricing:    opts.Pricing,
		promos:     opts.Promos,
		payments:   opts.Payments,
		notifier:   opts.Notifier,
		orders:     opts.Orders,
		promoDelay: opts.PromoDelay,
		clock:      opts.Clock,
		logger:     opts.Logger,
	}
}

// NewCheckout starts an empty checkout in the review stage
func (s *CheckoutService) NewCheckout(id string) *Checkout {
	return &Checkout{
		svc:   s,
		id:    id,
		stage: StageReview,
	}
}

// Pricing returns the rates used for totals
func (s *CheckoutService) Pricing() Pricing {
	return s.pricing
}

// Checkout drives one customer through review, payment and confirmation.
//
// generation changes on every stage transition and on Close. Slow work
// (promo lookup, payment) records it before waiting and drops its result if
// it changed in the meantime, so a superseded wait never mutates state.
type Checkout struct {
	svc *CheckoutService

	mu         sync.Mutex
	id         string
	stage      Stage
	items      []models.CartLineItem
	promo      *models.PromoCode
	billing    models.BillingInfo
	order      *models.OrderRecord
	processing bool
	generation uint64
	closed     bool
}

// CheckoutView is a point in time copy of a checkout for rendering
type CheckoutView struct {
	ID         string                `json:"id"`
	Stage      Stage                 `json:"stage"`
	StageName  string                `json:"stageName"`
	Items      []models.CartLineItem `json:"items"`
	Promo      *models.PromoCode     `json:"promo,omitempty"`
	Billing    models.BillingInfo    `json:"billing"`
	Summary    OrderSummary          `json:"summary"`
	Order      *models.OrderRecord   `json:"order,omitempty"`
	Processing bool                  `json:"processing"`
}

// ID returns the checkout id
func (c *Checkout) ID() string {
	return c.id
}

// Stage returns the current stage
func (c *Checkout) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// View returns a snapshot including the freshly computed summary
func (c *Checkout) View() CheckoutView {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]models.CartLineItem, len(c.items))
	copy(items, c.items)

	var promo *models.PromoCode
	if c.promo != nil {
		p := *c.promo
		promo = &p
	}

	return CheckoutView{
		ID:         c.id,
		Stage:      c.stage,
		StageName:  c.stage.String(),
		Items:      items,
		Promo:      promo,
		Billing:    c.billing,
		Summary:    c.svc.pricing.Summarize(c.items, c.promo),
		Order:      copyOrder(c.order),
		Processing: c.processing,
	}
}

// Summary recomputes the totals for the current cart and promo
func (c *Checkout) Summary() OrderSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.svc.pricing.Summarize(c.items, c.promo)
}

// Order returns the confirmed order, or nil before confirmation
func (c *Checkout) Order() *models.OrderRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyOrder(c.order)
}

// guard must be called with mu held
func (c *Checkout) guard(allowed ...Stage) error {
	if c.closed {
		return models.ErrCheckoutNotFound
	}
	if c.processing {
		return models.ErrPaymentInProgress
	}
	for _, s := range allowed {
		if c.stage == s {
			return nil
		}
	}
	return fmt.Errorf("%w: checkout is in %s", models.ErrInvalidStage, c.stage)
}

// AddItem puts a line item in the cart, adding to the quantity when the
// same ticket type is already there. Remaining inventory is not checked here.
func (c *Checkout) AddItem(item models.CartLineItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StageReview); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity += item.Quantity
			metrics.RecordCheckoutOperation("add_item", true)
			return nil
		}
	}

	c.items = append(c.items, item)
	metrics.RecordCheckoutOperation("add_item", true)
	return nil
}

// UpdateQuantity sets an item's quantity. Anything below 1 removes the item.
func (c *Checkout) UpdateQuantity(itemID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StageReview); err != nil {
		return err
	}
	if quantity < 1 {
		return c.removeLocked(itemID)
	}

	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrItemNotFound, itemID)
}

// RemoveItem drops an item from the cart
func (c *Checkout) RemoveItem(itemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StageReview); err != nil {
		return err
	}
	return c.removeLocked(itemID)
}

func (c *Checkout) removeLocked(itemID string) error {
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			metrics.RecordCheckoutOperation("remove_item", true)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrItemNotFound, itemID)
}

// ApplyPromo looks the code up after the simulated network delay and, on a
// hit, replaces any active promo. A miss leaves the checkout untouched and
// returns models.ValidationErrors.
func (c *Checkout) ApplyPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	c.mu.Lock()
	if err := c.guard(StageReview); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	gen := c.generation
	c.mu.Unlock()

	if err := c.svc.promos.CheckInput(code); err != nil {
		metrics.RecordCheckoutOperation("apply_promo", false)
		return nil, err
	}

	if err := sleepCtx(ctx, c.svc.promoDelay); err != nil {
		return nil, err
	}

	promo, err := c.svc.promos.Lookup(code)
	if err != nil {
		metrics.RecordCheckoutOperation("apply_promo", false)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return nil, fmt.Errorf("%w: checkout changed while applying promo", models.ErrInvalidStage)
	}
	if err := c.guard(StageReview); err != nil {
		return nil, err
	}

	c.promo = promo
	metrics.RecordCheckoutOperation("apply_promo", true)

	applied := *promo
	return &applied, nil
}

// RemovePromo clears the active promo. Calling it with no promo is fine.
func (c *Checkout) RemovePromo() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StageReview); err != nil {
		return err
	}
	c.promo = nil
	return nil
}

// SetBillingField stores one billing field without validating it
func (c *Checkout) SetBillingField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StageReview, StagePayment); err != nil {
		return err
	}
	return c.billing.Set(field, value)
}

// UpdateBilling stores several fields at once. Unknown field names reject
// the whole update.
func (c *Checkout) UpdateBilling(fields map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StageReview, StagePayment); err != nil {
		return err
	}

	next := c.billing
	for name, value := range fields {
		if err := next.Set(name, value); err != nil {
			return err
		}
	}
	c.billing = next
	return nil
}

// ValidateBilling returns field errors for the current billing info
func (c *Checkout) ValidateBilling() models.ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.billing.Validate()
}

// ProceedToPayment moves from review to payment. An empty cart stays put.
func (c *Checkout) ProceedToPayment() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StageReview); err != nil {
		return err
	}
	if len(c.items) == 0 {
		return models.ErrEmptyCart
	}

	c.stage = StagePayment
	c.generation++
	return nil
}

// BackToReview returns from payment to review
func (c *Checkout) BackToReview() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(StagePayment); err != nil {
		return err
	}

	c.stage = StageReview
	c.generation++
	return nil
}

// SubmitPayment validates billing and payment details, charges the total
// and moves to confirmation. Validation problems come back as
// models.ValidationErrors and leave the stage unchanged; a processor failure
// or cancelled ctx wraps models.ErrPaymentFailed and also stays in payment.
func (c *Checkout) SubmitPayment(ctx context.Context, method models.PaymentMethod, card models.CardDetails) (*models.OrderRecord, error) {
	c.mu.Lock()
	if err := c.guard(StagePayment); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	errs := models.ValidationErrors{}
	if !method.IsValid() {
		errs.Add("paymentMethod", "Please select a payment method")
	}
	if method == models.PaymentCard {
		errs.Merge(card.Validate())
	}
	errs.Merge(c.billing.Validate())
	if !errs.Empty() {
		c.mu.Unlock()
		metrics.RecordCheckoutOperation("submit_payment", false)
		return nil, errs
	}

	if len(c.items) == 0 {
		c.mu.Unlock()
		return nil, models.ErrEmptyCart
	}

	items := make([]models.CartLineItem, len(c.items))
	copy(items, c.items)
	summary := c.svc.pricing.Summarize(items, c.promo)
	email := c.billing.Email
	gen := c.generation
	c.processing = true
	c.mu.Unlock()

	result, payErr := c.svc.payments.ProcessPayment(ctx, summary.Total, method, email)

	c.mu.Lock()
	c.processing = false
	if c.generation != gen || c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: checkout closed during payment", models.ErrInvalidStage)
	}
	if payErr != nil {
		c.mu.Unlock()
		metrics.RecordCheckoutOperation("submit_payment", false)
		c.svc.logger.WarnContext(ctx, "Checkout: payment failed", "checkout", c.id, "error", payErr)
		return nil, fmt.Errorf("%w: %w", models.ErrPaymentFailed, payErr)
	}

	order := c.svc.buildOrder(items, summary, method, email, result)
	c.order = order
	c.stage = StageConfirmation
	c.generation++
	c.mu.Unlock()

	metrics.RecordCheckoutOperation("submit_payment", true)
	c.svc.logger.InfoContext(ctx, "Checkout: order placed",
		"checkout", c.id,
		"order", order.OrderNumber,
		"total", order.Total,
		"method", order.PaymentMethodLabel,
	)

	c.svc.afterOrder(ctx, order)
	return copyOrder(order), nil
}

// Close abandons the checkout. Pending promo lookups and payments finish
// without touching it.
func (c *Checkout) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
}

func (s *CheckoutService) buildOrder(items []models.CartLineItem, summary OrderSummary, method models.PaymentMethod, email string, result *models.PaymentResult) *models.OrderRecord {
	now := s.clock()

	tickets := make([]models.OrderTicket, 0, len(items))
	for _, item := range items {
		tickets = append(tickets, models.OrderTicket{
			EventTitle: item.EventTitle,
			TicketType: item.TicketType,
			Quantity:   item.Quantity,
			Price:      models.FormatAmount(item.LineTotal()),
			EventDate:  item.EventDate,
		})
	}

	order := &models.OrderRecord{
		OrderNumber:        models.GenerateOrderNumber(now),
		PaymentMethod:      method,
		PaymentMethodLabel: method.Label(),
		Total:              summary.TotalLabel(),
		PurchaseDateLabel:  models.FormatPurchaseDate(now),
		Email:              email,
		Tickets:            tickets,
		PlacedAt:           now,
	}
	if result != nil {
		order.PaymentID = result.PaymentID
	}
	return order
}

// afterOrder records and announces the order. Neither step can undo a
// confirmed checkout, so failures are only logged.
func (s *CheckoutService) afterOrder(ctx context.Context, order *models.OrderRecord) {
	if s.orders != nil {
		if err := s.orders.Save(copyOrder(order)); err != nil {
			s.logger.ErrorContext(ctx, "Checkout: failed to record order", "order", order.OrderNumber, "error", err)
		}
	}

	// the request may already be finished; the notification should still go out
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.OrderConfirmed(notifyCtx, copyOrder(order)); err != nil {
		s.logger.ErrorContext(ctx, "Checkout: failed to send order confirmation", "order", order.OrderNumber, "error", err)
	}
}

func copyOrder(o *models.OrderRecord) *models.OrderRecord {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Tickets = append([]models.OrderTicket(nil), o.Tickets...)
	return &cp
}

// IsValidationError reports whether err carries field errors
func IsValidationError(err error) (models.ValidationErrors, bool) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
