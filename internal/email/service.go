package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderStatusUpdate sends a lifecycle notification for an order. It is a
// no-op for statuses that carry no notification copy.
func (s *Service) SendOrderStatusUpdate(to, orderID, productName string, quantity int, status string, fulfillment map[string]string, reason string) error {
	notice, ok := NoticeFor(status)
	if !ok {
		return nil
	}

	shortID := orderID
	if len(orderID) > 8 {
		shortID = orderID[:8]
	}
	subject := fmt.Sprintf("%s (order %s)", notice.Subject, shortID)
	body := BuildOrderStatusBody(orderID, productName, quantity, notice, fulfillment, reason)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
