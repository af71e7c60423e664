package api

import (
	"context"
	"fmt"
)

// WhatsappSession represents the pairing state of a company's WhatsApp channel
type WhatsappSession struct {
	Status      string `json:"status,omitempty"`
	QRCode      string `json:"qr_code,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// ConnectWhatsapp starts a WhatsApp pairing session and returns the QR code
// to scan when the channel is not yet connected.
func (c *Client) ConnectWhatsapp(ctx context.Context, companyID string) (*WhatsappSession, error) {
	var session WhatsappSession
	if err := c.post(ctx, fmt.Sprintf("/companies/%s/whatsapp/connect", companyID), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// WhatsappStatus retrieves the current pairing state
func (c *Client) WhatsappStatus(ctx context.Context, companyID string) (*WhatsappSession, error) {
	var session WhatsappSession
	if err := c.get(ctx, fmt.Sprintf("/companies/%s/whatsapp/status", companyID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}
