// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string `json:"site_name"`
	SiteURL   string `json:"site_url"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Year      int    `json:"year"`
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderNumber    string      `json:"order_number"`
	OrderDate      string      `json:"order_date"`
	Campus         string      `json:"campus"`
	Address        string      `json:"address"`
	Persons        int         `json:"persons"`
	Items          []OrderItem `json:"items"`
	ItemTotal      string      `json:"item_total"`
	DeliveryCharge string      `json:"delivery_charge"`
	OrderTotal     string      `json:"order_total"`
	PayeeName      string      `json:"payee_name"`
	PayeeBank      string      `json:"payee_bank"`
	PayeeAccount   string      `json:"payee_account"`
	TrackingURL    string      `json:"tracking_url"`
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name       string `json:"name"`
	Restaurant string `json:"restaurant"`
	Quantity   int    `json:"quantity"`
	Total      string `json:"total"`
}

// OrderStatusUpdateData contains data for order status updates
type OrderStatusUpdateData struct {
	EmailTemplateData
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	TrackingURL   string `json:"tracking_url"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string, now time.Time) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		SiteURL:   siteURL,
		UserName:  userName,
		UserEmail: userEmail,
		Year:      now.Year(),
	}
}
