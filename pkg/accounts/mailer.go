// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"context"
	"time"

	"github.com/canonical/inventory-identity/internal/logging"
)

var _ MailerInterface = (*LogMailer)(nil)

// LogMailer stands in for the mail transport, it only logs that a message is due.
// Links are bearer credentials and are never written out.
type LogMailer struct {
	logger logging.LoggerInterface
}

func (m *LogMailer) SendInvitation(_ context.Context, email, _ string, expiresAt time.Time) error {
	m.logger.Infow("invitation mail queued", "to", email, "expires_at", expiresAt.Format(time.RFC3339))
	return nil
}

func (m *LogMailer) SendMagicLink(_ context.Context, email, _ string) error {
	m.logger.Infow("magic link mail queued", "to", email)
	return nil
}

func NewLogMailer(logger logging.LoggerInterface) *LogMailer {
	m := new(LogMailer)
	m.logger = logger
	return m
}
