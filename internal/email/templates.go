package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Confirmation is the order summary rendered into the confirmation email
type Confirmation struct {
	OrderID      string
	CustomerName string
	Items        []OrderItem
	Subtotal     decimal.Decimal
	Shipping     decimal.Decimal
	Total        decimal.Decimal
	Address      string
}

func (c Confirmation) ShortID() string {
	if len(c.OrderID) > 8 {
		return c.OrderID[:8]
	}
	return c.OrderID
}

func formatShipping(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "Free"
	}
	return catalog.FormatINR(amount)
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(order Confirmation) string {
	var itemsHTML strings.Builder
	for _, item := range order.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			catalog.FormatINR(item.UnitPrice),
			catalog.FormatINR(lineTotal),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #111; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your purchase!</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Hi %s, your Klassico order has been placed and will be paid cash on delivery.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #111; padding-bottom: 10px;">Order Summary</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<p style="margin: 0; font-size: 14px; color: #666;">Subtotal %s</p>
			<p style="margin: 0; font-size: 14px; color: #666;">Shipping %s</p>
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #111; margin-left: 10px;">%s</span>
		</div>

		<p style="font-size: 14px; color: #666;">Shipping to: %s</p>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. If you have any questions, please contact our support team.
		</p>
	</div>
</body>
</html>`,
		html.EscapeString(order.CustomerName),
		order.OrderID,
		itemsHTML.String(),
		catalog.FormatINR(order.Subtotal),
		formatShipping(order.Shipping),
		catalog.FormatINR(order.Total),
		html.EscapeString(order.Address),
	)
}
