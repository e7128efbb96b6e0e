// Package smtp_client delivers the portal's outgoing HTML mails through a
// set of pooled SMTP relays.
package smtp_client

import (
	"errors"
	"log/slog"
	"net/textproto"

	"github.com/knadh/smtppool"
)

// Mailer rotates sends over the configured relays. A relay that fails a send
// is reconnected in place so one flaky connection does not disable it for
// good.
type Mailer struct {
	cfg    MailerConfig
	relays []*relayPool
	next   uint64
}

type relayPool struct {
	relay Relay
	pool  *smtppool.Pool
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	m := &Mailer{cfg: cfg}
	for _, relay := range cfg.Relays {
		pool, err := relay.connect()
		if err != nil {
			slog.Error("cannot connect to smtp relay", slog.String("relay", relay.Address()), slog.String("error", err.Error()))
			continue
		}
		m.relays = append(m.relays, &relayPool{relay: relay, pool: pool})
	}
	if len(m.relays) < 1 {
		return nil, errors.New("no usable smtp relay")
	}
	return m, nil
}

// buildEmail assembles the message with the envelope identity from the
// config. Send timeouts are handled by the pool itself.
func (m *Mailer) buildEmail(to []string, subject string, htmlContent string) smtppool.Email {
	return smtppool.Email{
		To:      to,
		From:    m.cfg.From,
		Sender:  m.cfg.Sender,
		ReplyTo: m.cfg.ReplyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	}
}

func (m *Mailer) SendMail(to []string, subject string, htmlContent string) error {
	rp := m.relays[m.next%uint64(len(m.relays))]
	m.next += 1

	if err := rp.pool.Send(m.buildEmail(to, subject, htmlContent)); err != nil {
		slog.Error("error when trying to send email", slog.String("relay", rp.relay.Address()), slog.String("error", err.Error()))
		rp.reconnect()
		return err
	}
	return nil
}

func (rp *relayPool) reconnect() {
	pool, err := rp.relay.connect()
	if err != nil {
		slog.Error("cannot reconnect smtp relay", slog.String("relay", rp.relay.Address()), slog.String("error", err.Error()))
		return
	}
	slog.Info("reconnected smtp relay", slog.String("relay", rp.relay.Address()))
	rp.pool = pool
}
