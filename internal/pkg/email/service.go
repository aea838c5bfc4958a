// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/pkg/money"
)

// Sender delivers a rendered email through a provider
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// NewSender returns the sender for the configured provider
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return newSMTPSender(cfg), nil
	case "resend":
		return newResendSender(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %q", cfg.Provider)
	}
}

// EmailService renders order emails and hands them to a sender
type EmailService struct {
	siteName  string
	siteURL   string
	location  *time.Location
	templates map[EmailType]*template.Template
	sender    Sender
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, sender Sender) *EmailService {
	siteName := cfg.Email.FromName
	if siteName == "" {
		siteName = cfg.App.Name
	}
	return &EmailService{
		siteName: siteName,
		siteURL:  strings.TrimRight(cfg.Email.SiteURL, "/"),
		location: cfg.Location(),
		templates: map[EmailType]*template.Template{
			EmailTypeOrderConfirmation: orderConfirmationTemplate,
			EmailTypeOrderStatusUpdate: orderStatusUpdateTemplate,
		},
		sender: sender,
	}
}

// SendOrderConfirmationEmail sends the order summary to the customer
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, o *order.Order) error {
	email, err := s.OrderConfirmation(o)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, email)
}

// SendOrderStatusUpdateEmail tells the customer their order moved on
func (s *EmailService) SendOrderStatusUpdateEmail(ctx context.Context, o *order.Order) error {
	email, err := s.OrderStatusUpdate(o)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, email)
}

// OrderConfirmation renders the confirmation email for o
func (s *EmailService) OrderConfirmation(o *order.Order) (*Email, error) {
	data := OrderConfirmationData{
		EmailTemplateData: GetBaseTemplateData(s.siteName, s.siteURL, o.CustomerName, o.Email, o.CreatedAt),
		OrderNumber:       o.Reference,
		OrderDate:         o.CreatedAt.In(s.location).Format("02 Jan 2006, 3:04 PM"),
		Campus:            o.CampusName,
		Address:           o.Address,
		Persons:           o.Persons,
		ItemTotal:         money.FormatRs(o.ItemTotal),
		DeliveryCharge:    money.FormatRs(o.DeliveryCharge),
		OrderTotal:        money.FormatRs(o.GrandTotal),
		PayeeName:         o.PayeeName,
		PayeeBank:         o.PayeeBank,
		PayeeAccount:      o.PayeeAccount,
		TrackingURL:       s.trackingURL(o.Reference),
	}
	for _, item := range o.Items() {
		data.Items = append(data.Items, OrderItem{
			Name:       item.Name,
			Restaurant: item.Restaurant,
			Quantity:   item.Quantity,
			Total:      money.FormatRs(money.LineTotal(item.UnitPrice, item.Quantity)),
		})
	}

	html, err := s.renderTemplate(EmailTypeOrderConfirmation, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	return &Email{
		To:          []string{o.Email},
		Subject:     fmt.Sprintf("Order Confirmation - %s", o.Reference),
		HTMLContent: html,
		Type:        EmailTypeOrderConfirmation,
	}, nil
}

// OrderStatusUpdate renders the status update email for o
func (s *EmailService) OrderStatusUpdate(o *order.Order) (*Email, error) {
	status := o.EffectiveStatus()
	data := OrderStatusUpdateData{
		EmailTemplateData: GetBaseTemplateData(s.siteName, s.siteURL, o.CustomerName, o.Email, time.Now()),
		OrderNumber:       o.Reference,
		Status:            string(status),
		StatusMessage:     statusMessages[status],
		TrackingURL:       s.trackingURL(o.Reference),
	}

	html, err := s.renderTemplate(EmailTypeOrderStatusUpdate, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render order status update template: %w", err)
	}

	return &Email{
		To:          []string{o.Email},
		Subject:     fmt.Sprintf("Order Update - %s", o.Reference),
		HTMLContent: html,
		Type:        EmailTypeOrderStatusUpdate,
	}, nil
}

func (s *EmailService) trackingURL(reference string) string {
	if s.siteURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/my-orders/%s", s.siteURL, reference)
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(emailType EmailType, data interface{}) (string, error) {
	tmpl, exists := s.templates[emailType]
	if !exists {
		return "", fmt.Errorf("template %s not found", emailType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", emailType, err)
	}
	return buf.String(), nil
}

var statusMessages = map[order.OrderStatus]string{
	order.OrderStatusAccepted:       "Your order has been accepted and the restaurant is getting started.",
	order.OrderStatusOutForDelivery: "Your order is on its way to you.",
	order.OrderStatusDelivered:      "Your order has been delivered. Enjoy your meal!",
	order.OrderStatusCancelled:      "Your order has been cancelled. Contact the campus team if this is unexpected.",
}

const layoutHead = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.SiteName}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
<h1 style="color: #333;">{{.SiteName}}</h1>
<p>Hello {{.UserName}},</p>`

const layoutFoot = `<hr>
<p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}</p>
</div>
</body>
</html>`

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(layoutHead + `
<p>Thanks for your order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}.</p>
<table style="width: 100%; border-collapse: collapse;">
{{range .Items}}<tr><td>{{.Quantity}} x {{.Name}}{{if .Restaurant}} ({{.Restaurant}}){{end}}</td><td style="text-align: right;">{{.Total}}</td></tr>
{{end}}<tr><td>Items</td><td style="text-align: right;">{{.ItemTotal}}</td></tr>
<tr><td>Delivery</td><td style="text-align: right;">{{.DeliveryCharge}}</td></tr>
<tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>{{.OrderTotal}}</strong></td></tr>
</table>
<p>Delivering to {{.Address}}{{if .Campus}}, {{.Campus}}{{end}} for {{.Persons}} person(s).</p>
{{if .PayeeAccount}}<p>Payment to {{.PayeeName}}, {{.PayeeBank}} {{.PayeeAccount}}.</p>{{end}}
{{if .TrackingURL}}<p><a href="{{.TrackingURL}}">Track your order</a></p>{{end}}
` + layoutFoot))

var orderStatusUpdateTemplate = template.Must(template.New("order_status_update").Parse(layoutHead + `
<p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if .StatusMessage}}<p>{{.StatusMessage}}</p>{{end}}
{{if .TrackingURL}}<p><a href="{{.TrackingURL}}">Track your order</a></p>{{end}}
` + layoutFoot))
