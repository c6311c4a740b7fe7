package sinks

import (
	"context"
	"fmt"
	"net/smtp"
	"regexp"
	"strings"

	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/config"
	"sigwatch/internal/signatures"
	"sigwatch/internal/watcher"

	"github.com/antzucaro/matchr"
	"github.com/jordan-wright/email"
)

const report_email_send = "email.send"

// Sender delivers a mail.
type Sender func(mail *email.Email) error

// SMTPSender sends through the configured server, falling back to no auth
// when the server does not support it.
func SMTPSender(cfg config.EmailConfig) Sender {
	addr := fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort)
	return func(mail *email.Email) error {
		var auth smtp.Auth
		if cfg.Username != "" {
			auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SmtpHost)
		}
		err := mail.Send(addr, auth)
		if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
			err = mail.Send(addr, nil)
		}
		return err
	}
}

// Email mails the events of a cycle, optionally only those of systems on
// a watchlist.
type Email struct {
	cfg  config.EmailConfig
	send Sender
	tel  telemetry.API
}

func NewEmail(cfg config.EmailConfig, send Sender, tel telemetry.API) *Email {
	return &Email{
		cfg:  cfg,
		send: send,
		tel:  telemetry.NewScopedAPI("sinks", tel),
	}
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

func normalizeName(name string) string {
	name = strings.ToLower(name)
	return whitespaceRegex.ReplaceAllString(name, "")
}

// Watched reports whether a system is on the watchlist, an empty watchlist
// watches everything.
func (e *Email) Watched(system string) bool {
	if len(e.cfg.Watchlist) == 0 {
		return true
	}
	system = normalizeName(system)
	for _, name := range e.cfg.Watchlist {
		name = normalizeName(name)
		if name == system {
			return true
		}
		similarity := matchr.JaroWinkler(name, system, false)
		if similarity >= e.cfg.WatchlistSimilarity {
			return true
		}
	}
	return false
}

func (e *Email) Cycle(ctx context.Context, cycle watcher.Cycle) {
	var events []signatures.DiffEvent
	for _, event := range cycle.Events {
		if e.Watched(event.System) {
			events = append(events, event)
		}
	}
	if len(events) == 0 {
		return
	}

	mail := email.NewEmail()
	mail.From = e.cfg.From
	if mail.From == "" {
		mail.From = e.cfg.Username
	}
	mail.To = e.cfg.To
	mail.Subject = fmt.Sprintf("sigwatch: %d signature change(s)", len(events))

	var body strings.Builder
	fmt.Fprintf(&body, "Signature changes at %s:\n\n", cycle.Time.UTC().Format(utcFormat))
	for _, event := range events {
		fmt.Fprintf(&body, "%s (%d -> %d)\n", FormatEvent(event), event.PreviousSigs, event.Sigs)
	}
	mail.Text = []byte(body.String())

	err := e.send(mail)
	if err != nil {
		e.tel.ReportBroken(report_email_send, err, telemetry.KV{Key: "events", Value: len(events)})
		return
	}
	e.tel.ReportDebug(report_email_send, telemetry.KV{Key: "events", Value: len(events)})
}

// Diagnostic is not mailed.
func (e *Email) Diagnostic(ctx context.Context, diagnostic watcher.Diagnostic) {}
