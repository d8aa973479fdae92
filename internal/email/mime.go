// Package email assembles outgoing messages for the notifier adapters.
package email

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"time"

	gomail "github.com/wneessen/go-mail"

	"mrstrict/internal/domain"
)

// FormatAddress renders a display name and address as an RFC 5322 mailbox.
func FormatAddress(name, address string) string {
	return (&mail.Address{Name: name, Address: address}).String()
}

// NewMessage converts msg into a go-mail message with a plain-text body and
// an optional attachment. from may carry a display name.
func NewMessage(from string, msg domain.Message, date time.Time) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("email: sender %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("email: recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(date)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if a := msg.Attachment; a != nil {
		err := m.AttachReader(a.Filename, bytes.NewReader(a.Data),
			gomail.WithFileContentType(gomail.ContentType(mediaType(a.ContentType))))
		if err != nil {
			return nil, fmt.Errorf("email: attaching %s: %w", a.Filename, err)
		}
	}
	return m, nil
}

// BuildMIME renders msg as a raw RFC 5322 message: quoted-printable text,
// plus a base64 attachment inside multipart/mixed when one is present.
func BuildMIME(from string, msg domain.Message, date time.Time) ([]byte, error) {
	m, err := NewMessage(from, msg, date)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("email: rendering message: %w", err)
	}
	return buf.Bytes(), nil
}

// mediaType drops parameters from a content type; the attachment name is
// appended by the writer.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "" {
		return string(gomail.TypeAppOctetStream)
	}
	return mt
}
