package adapters

import (
	"context"
	"fmt"
	"html"
	"strings"

	"microshop/internal/core/logger"
	"microshop/internal/features/orders/domain"

	"github.com/keighl/postmark"
	"go.uber.org/zap"
)

// PostmarkNotifier sends order confirmations through Postmark.
type PostmarkNotifier struct {
	client *postmark.Client
	sender string
}

// NewPostmarkNotifier creates a notifier for the given server token.
func NewPostmarkNotifier(serverToken, sender string) *PostmarkNotifier {
	return &PostmarkNotifier{
		client: postmark.NewClient(serverToken, ""),
		sender: sender,
	}
}

// OrderPlaced e-mails the customer a summary of the order.
func (n *PostmarkNotifier) OrderPlaced(_ context.Context, order *domain.Order) error {
	res, err := n.client.SendEmail(postmark.Email{
		From:     n.sender,
		To:       order.CustomerEmail,
		Subject:  fmt.Sprintf("Order #%d confirmation", order.ID),
		HtmlBody: confirmationHTML(order),
		TextBody: confirmationText(order),
		Tag:      "order-confirmation",
	})
	if err != nil {
		return fmt.Errorf("failed to send confirmation for order %d: %w", order.ID, err)
	}

	logger.Get().Info("Order confirmation sent",
		zap.Int64("order_id", order.ID),
		zap.String("message_id", res.MessageID),
	)
	return nil
}

func confirmationText(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\nThank you for your purchase! Order #%d has been placed.\n\n", order.CustomerName, order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d: %s\n", item.ProductName, item.Quantity, item.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\nShipping to: %s\n", order.TotalAmount.StringFixed(2), order.ShippingAddress)
	return b.String()
}

func confirmationHTML(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>Dear %s,</strong><br><br>Thank you for your purchase! Order <strong>#%d</strong> has been placed.<br><ul>",
		html.EscapeString(order.CustomerName), order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%s x%d: %s</li>", html.EscapeString(item.ProductName), item.Quantity, item.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "</ul>Total Amount: <strong>%s</strong><br>Shipping to: %s",
		order.TotalAmount.StringFixed(2), html.EscapeString(order.ShippingAddress))
	return b.String()
}

// NoopNotifier is used when no e-mail provider is configured.
type NoopNotifier struct{}

// OrderPlaced does nothing.
func (NoopNotifier) OrderPlaced(context.Context, *domain.Order) error { return nil }
