// AngelaMos | 2026
// service.go

package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/agriconnect/internal/advisory"
	"github.com/carterperez-dev/agriconnect/internal/config"
	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/record"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrUnknownMethod   = errors.New("unknown payment method")
)

type Service struct {
	store   *record.Store
	payment config.PaymentConfig
	logger  *slog.Logger
}

func NewService(
	store *record.Store,
	payment config.PaymentConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, payment: payment, logger: logger}
}

func (s *Service) load(ctx context.Context, email string) []Item {
	items, _ := record.Get[[]Item](ctx, s.store, email, record.KindCart)
	return items
}

func (s *Service) Get(ctx context.Context, email string) *Cart {
	return newCart(s.load(ctx, email))
}

func (s *Service) Add(
	ctx context.Context,
	email string,
	market advisory.MarketInfo,
	crop advisory.CropPrice,
	quantity int,
) (*Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("add to cart: %w: %w", core.ErrInvalidInput, ErrInvalidQuantity)
	}

	items := s.load(ctx, email)
	key := LineKey{MarketID: market.ID, CropName: crop.Name}

	merged := false
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		items = append(items, Item{Market: market, Crop: crop, Quantity: quantity})
	}

	s.store.Set(ctx, email, record.KindCart, items)
	return newCart(items), nil
}

// Remove drops the line for (marketID, cropName). Removing a line that is
// not in the cart leaves the cart unchanged.
func (s *Service) Remove(
	ctx context.Context,
	email, marketID, cropName string,
) *Cart {
	items := s.load(ctx, email)
	key := LineKey{MarketID: marketID, CropName: cropName}

	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Key() != key {
			kept = append(kept, it)
		}
	}

	if len(kept) != len(items) {
		s.store.Set(ctx, email, record.KindCart, kept)
	}

	return newCart(kept)
}

// Checkout places an order for the whole cart and empties it. Payment is
// not confirmed; a gpay order carries the deep link the client opens.
func (s *Service) Checkout(
	ctx context.Context,
	email, method string,
) (*Order, error) {
	cart := s.Get(ctx, email)
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("checkout: %w", ErrEmptyCart)
	}

	order := &Order{
		ID:       uuid.New().String(),
		Method:   method,
		Total:    cart.Total,
		Items:    cart.Items,
		PlacedAt: time.Now().UTC(),
	}

	switch method {
	case MethodGPay:
		order.Status = StatusPaymentPending
		order.PaymentURL = s.PaymentURL(cart.Total)
	case MethodCashOnDelivery:
		order.Status = StatusBooked
	default:
		return nil, fmt.Errorf("checkout: %w: %q", ErrUnknownMethod, method)
	}

	s.store.Set(ctx, email, record.KindCart, []Item{})

	s.logger.Info("order placed",
		"order_id", order.ID,
		"method", method,
		"items", len(order.Items),
		"total", order.Total,
	)

	return order, nil
}

// PaymentURL builds the UPI deep link for total. Payee values are query
// escaped; the transaction note is fixed.
func (s *Service) PaymentURL(total float64) string {
	return "https://pay.google.com/gp/v/pay" +
		"?pa=" + url.QueryEscape(s.payment.Payee) +
		"&pn=" + url.QueryEscape(s.payment.PayeeName) +
		"&am=" + strconv.FormatFloat(total, 'f', 2, 64) +
		"&cu=INR" +
		"&tn=B2B%20Order"
}
