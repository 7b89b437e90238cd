package service

import (
	"context"
	"strings"
)

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ContactService forwards contact messages to the operator.
type ContactService struct {
	Notify *Notifier
}

// Submit dispatches the message and reports whether a transport exists.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) bool {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	s.Notify.ContactReceived(ctx, in)
	return s.Notify.Configured()
}
