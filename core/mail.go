package core

import (
	"bytes"
	"net/mail"
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	// EmailMessage is a plain-text operational email.
	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string
		Attachments []Attachment

		TextContent string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render prepares the final content to be sent.
func (m *EmailMessage) Render() error {
	if m.TextContent == "" {
		m.TextContent = m.BodyStr
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return (len(m.To) + len(m.Cc) + len(m.Bcc)) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.BodyStr != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
