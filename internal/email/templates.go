package email

import (
	"fmt"
	"sort"
	"strings"
)

// StatusNotice holds the copy for one order lifecycle notification
type StatusNotice struct {
	Subject  string
	Headline string
	Message  string
}

var statusNotices = map[string]StatusNotice{
	"approved": {
		Subject:  "New order awaiting your confirmation",
		Headline: "Order approved",
		Message:  "An order for your product has been approved and is awaiting your confirmation.",
	},
	"confirmed": {
		Subject:  "Your order has been confirmed",
		Headline: "Order confirmed",
		Message:  "The seller has confirmed your order and committed to fulfilling it.",
	},
	"in_progress": {
		Subject:  "Your order is being prepared",
		Headline: "Order in progress",
		Message:  "The seller has started preparing your order.",
	},
	"dispatched": {
		Subject:  "Your order has been dispatched",
		Headline: "Order dispatched",
		Message:  "Your order is on its way.",
	},
	"delivered": {
		Subject:  "Your order has been delivered",
		Headline: "Order delivered",
		Message:  "Your order has been marked as delivered. Thank you for your business.",
	},
	"cancelled": {
		Subject:  "Your order has been cancelled",
		Headline: "Order cancelled",
		Message:  "Your order has been cancelled.",
	},
}

// NoticeFor returns the notification copy for a status, if one exists
func NoticeFor(status string) (StatusNotice, bool) {
	n, ok := statusNotices[status]
	return n, ok
}

// BuildOrderStatusBody builds the HTML body for an order status notification
func BuildOrderStatusBody(orderID, productName string, quantity int, notice StatusNotice, fulfillment map[string]string, reason string) string {
	var details strings.Builder

	if len(fulfillment) > 0 {
		details.WriteString(`<h2 style="font-size: 16px; border-bottom: 2px solid #2a6f97; padding-bottom: 8px;">Fulfillment details</h2>`)
		details.WriteString(`<table style="width: 100%; border-collapse: collapse; margin: 16px 0;">`)
		keys := make([]string, 0, len(fulfillment))
		for k := range fulfillment {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			details.WriteString(fmt.Sprintf(
				`<tr>
					<td style="padding: 8px; border-bottom: 1px solid #eee; color: #666;">%s</td>
					<td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
				</tr>`,
				k, fulfillment[k],
			))
		}
		details.WriteString(`</table>`)
	}

	if reason != "" {
		details.WriteString(fmt.Sprintf(
			`<div style="background: #fdf2f2; padding: 15px; border-radius: 5px; margin: 20px 0;">
				<p style="margin: 0; font-size: 14px; color: #666;">Reason</p>
				<p style="margin: 5px 0 0 0;">%s</p>
			</div>`, reason))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #2a6f97; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">%s</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
			<p style="margin: 10px 0 0 0; font-size: 14px; color: #666;">Product</p>
			<p style="margin: 5px 0 0 0;">%s &times; %d</p>
		</div>

		%s

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. If you have any questions, please contact support.
		</p>
	</div>
</body>
</html>`, notice.Headline, notice.Message, orderID, productName, quantity, details.String())
}
