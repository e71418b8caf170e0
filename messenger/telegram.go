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
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dkorunic/untis-bot/format"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/queue"
	"github.com/dkorunic/untis-bot/sqlitedb"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/ratelimit"
)

const (
	TelegramAPILimit   = 20 // 20 API req/min per user
	TelegramWindow     = 1 * time.Minute
	TelegramMinDelay   = TelegramWindow / TelegramAPILimit
	TelegramQueue      = "telegram-queue"
	TelegramMaxMessage = 4096
)

var (
	ErrTelegramSession        = errors.New("error creating Telegram session")
	ErrTelegramEmptyAPIKey    = errors.New("empty Telegram API key")
	ErrTelegramEmptyUserIDs   = errors.New("empty list of Telegram Chat IDs")
	ErrTelegramInvalidChatID  = errors.New("invalid Telegram Chat ID")
	ErrTelegramSendingMessage = errors.New("error sending Telegram message")

	TelegramQueueName = []byte(TelegramQueue)
	telegramCli       *bot.Bot
)

// Telegram sends alerts received on ch to all chatIDs through the Telegram Bot API. Alerts that could not be
// delivered are queued in store and resent on the next start.
func Telegram(ctx context.Context, store *sqlitedb.Store, ch <-chan msgtypes.Message, apiKey string, chatIDs []string,
	retries uint,
) error {
	if apiKey == "" {
		return fmt.Errorf("%w", ErrTelegramEmptyAPIKey)
	}

	if len(chatIDs) == 0 {
		return fmt.Errorf("%w", ErrTelegramEmptyUserIDs)
	}

	if err := telegramInit(ctx, apiKey); err != nil {
		return err
	}

	logger.Debug().Msg("Started Telegram messenger")

	rl := ratelimit.New(TelegramAPILimit, ratelimit.Per(TelegramWindow))

	// process all failed messages
	for _, g := range queue.FetchFailedMsgs(ctx, store, TelegramQueueName) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			processTelegram(ctx, store, g, chatIDs, rl, retries)
		}
	}

	// process all messages
	for g := range ch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			processTelegram(ctx, store, g, chatIDs, rl, retries)
		}
	}

	return nil
}

// processTelegram sends a single alert formatted as HTML to every chat ID, queueing it on the first failure.
func processTelegram(ctx context.Context, store *sqlitedb.Store, g msgtypes.Message, chatIDs []string,
	rl ratelimit.Limiter, retries uint,
) {
	m := truncateWithEllipsis(format.HTMLMsg(g.Username, g.Subject, g.Code, g.Descriptions, g.Fields),
		TelegramMaxMessage)

	for _, u := range chatIDs {
		chatID, err := strconv.ParseInt(u, 10, 64)
		if err != nil {
			logger.Error().Msgf("%v: %v", ErrTelegramInvalidChatID, err)

			continue
		}

		msg := bot.SendMessageParams{
			ChatID:    chatID,
			Text:      m,
			ParseMode: models.ParseModeHTML,
		}

		rl.Take()

		// retryable and cancellable attempt to send a message
		err = retry.Do(
			func() error {
				_, err := telegramCli.SendMessage(ctx, &msg)

				return err
			},
			retry.Attempts(retries),
			retry.Context(ctx),
			retry.Delay(TelegramMinDelay),
		)
		if err != nil {
			logger.Error().Msgf("%v: %v", ErrTelegramSendingMessage, err)

			if err := queue.StoreFailedMsgs(ctx, store, TelegramQueueName, g); err != nil {
				logger.Error().Msgf("%v: %v", queue.ErrQueueing, err)
			}

			return
		}
	}
}

// telegramInit creates the Telegram bot session once and starts its update loop.
func telegramInit(ctx context.Context, apiKey string, opts ...bot.Option) error {
	if telegramCli != nil {
		return nil
	}

	b, err := bot.New(apiKey, opts...)
	if err != nil {
		logger.Error().Msgf("%v: %v", ErrTelegramSession, err)

		return fmt.Errorf("%w: %w", ErrTelegramSession, err)
	}

	telegramCli = b

	// needs a separate goroutine
	go telegramCli.Start(ctx)

	return nil
}
