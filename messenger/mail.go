// @license
// Copyright (C) 2025  Dinko Korunic
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package messenger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dkorunic/untis-bot/format"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/queue"
	"github.com/dkorunic/untis-bot/sqlitedb"
	"github.com/dkorunic/untis-bot/version"
	mail "github.com/wneessen/go-mail"
	"go.uber.org/ratelimit"
)

const (
	MailSendLimit   = 20 // 20 emails per 1 hour
	MailWindow      = 1 * time.Hour
	MailMinDelay    = MailWindow / MailSendLimit
	MailSubject     = "WebUntis timetable change"
	MailQueue       = "mail-queue"
	MailDefaultPort = 587
)

var (
	ErrMailInvalidPort     = errors.New("invalid or missing SMTP port, will try with default 587/tcp")
	ErrMailDialer          = errors.New("failed to create mail delivery client")
	ErrMailSendingMessages = errors.New("error sending mail messages")

	MailQueueName = []byte(MailQueue)
	MailVersion   = version.ReadVersion("github.com/wneessen/go-mail")
)

// MailConfig holds SMTP delivery settings.
type MailConfig struct {
	Server   string
	Port     string
	Username string
	Password string
	From     string
	Subject  string
	To       []string
}

// Mail sends alerts received on ch as multipart (plain and HTML) e-mails. Queued alerts from a previous run are sent
// first, and alerts that could not be delivered are queued again.
func Mail(ctx context.Context, store *sqlitedb.Store, ch <-chan msgtypes.Message, cfg MailConfig, retries uint) error {
	logger.Debug().Msgf("Started e-mail messenger (%v)", MailVersion)

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		logger.Warn().Msgf("%v: %v", ErrMailInvalidPort, cfg.Port)

		port = MailDefaultPort
	}

	rl := ratelimit.New(MailSendLimit, ratelimit.Per(MailWindow))

	// process all failed messages
	for _, g := range queue.FetchFailedMsgs(ctx, store, MailQueueName) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			processMail(ctx, store, g, cfg, port, rl, retries)
		}
	}

	// process all messages
	for g := range ch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			processMail(ctx, store, g, cfg, port, rl, retries)
		}
	}

	return nil
}

// processMail sends one alert to all recipients in a single SMTP session, queueing it on failure.
func processMail(ctx context.Context, store *sqlitedb.Store, g msgtypes.Message, cfg MailConfig, port int,
	rl ratelimit.Limiter, retries uint,
) {
	plainContent := format.PlainMsg(g.Username, g.Subject, g.Code, g.Descriptions, g.Fields)
	htmlContent := format.HTMLMsg(g.Username, g.Subject, g.Code, g.Descriptions, g.Fields)

	d, err := mail.NewClient(cfg.Server,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		logger.Error().Msgf("%v: %v", ErrMailDialer, err)

		return
	}

	subject := cfg.Subject
	if subject == "" {
		subject = MailSubject
	}

	messages := make([]*mail.Msg, 0, len(cfg.To))

	for _, u := range cfg.To {
		m := mail.NewMsg()

		_ = m.From(cfg.From)
		_ = m.To(u)

		m.SetMessageID()
		m.SetDate()
		m.SetBulk()
		m.Subject(subject)
		m.SetBodyString(mail.TypeTextPlain, plainContent)
		m.AddAlternativeString(mail.TypeTextHTML, htmlContent)

		messages = append(messages, m)
	}

	rl.Take()

	// retryable and cancellable attempt to send a message
	err = retry.Do(
		func() error {
			return d.DialAndSend(messages...)
		},
		retry.Attempts(retries),
		retry.Context(ctx),
		retry.Delay(MailMinDelay),
	)
	if err != nil {
		logger.Error().Msgf("%v: %v", ErrMailSendingMessages, err)

		if err := queue.StoreFailedMsgs(ctx, store, MailQueueName, g); err != nil {
			logger.Error().Msgf("%v: %v", queue.ErrQueueing, err)
		}
	}
}
