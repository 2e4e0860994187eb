package repository

import (
	"context"

	"github.com/user/imagewatch/internal/entity"
)

// ReportRenderer renders report items into a document.
type ReportRenderer interface {
	Render(items []entity.ReportItem) ([]byte, error)
}

// ArtifactWriter persists a rendered report and moves the "latest" pointer to it.
type ArtifactWriter interface {
	Write(ctx context.Context, document []byte) (location string, err error)
}

// Notification is an outbound report message.
type Notification struct {
	To      string
	From    string
	Subject string
	Body    string
}

// Notifier delivers notifications. Failures wrap ErrSend.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
