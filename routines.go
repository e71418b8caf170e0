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

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blang/semver/v4"
	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/format"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/messenger"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/poll"
	"github.com/dkorunic/untis-bot/sqlitedb"
	"github.com/dkorunic/untis-bot/untis"
	"github.com/dkorunic/untis-bot/version"
	"github.com/google/go-github/v75/github"
	"github.com/teivah/broadcast"
	"github.com/tj/go-spin"
)

const (
	broadcastBufLen    = 10                     // events buffered per messenger
	spinnerRotateDelay = 100 * time.Millisecond // spinner delay
	githubOrg          = "dkorunic"
	githubRepo         = "untis-bot"
)

var (
	ErrPollingUser = errors.New("error polling timetable for user")
	ErrTelegram    = errors.New("Telegram messenger issue") //nolint:stylecheck
	ErrMail        = errors.New("Mail messenger issue")     //nolint:stylecheck
)

// pollers fetch timetables for every configured user, sending alerts to a channel and exporting timetables when
// enabled.
func pollers(ctx context.Context, wgPoll *sync.WaitGroup, alertsPolled chan<- msgtypes.Message, cfg config.TomlConfig) {
	logger.Debug().Msg("Starting pollers")

	clientName := version.ClientName(untis.DefaultClientName, GitTag)

	for _, u := range cfg.User {
		wgPoll.Add(1)

		go func() {
			defer wgPoll.Done()

			entries, err := poll.GetTimetableAlerts(ctx, alertsPolled, cfg.School, u, *weeks, *retries,
				untis.WithClientName(clientName))
			if err != nil {
				logger.Warn().Msgf("%v %v: %v", ErrPollingUser, u.Username, err)
				exitWithError.Store(true)

				return
			}

			if cfg.ExportEnabled {
				if err := exportTimetable(cfg.Export, u.Username, entries); err != nil {
					logger.Warn().Msgf("%v", err)
					exitWithError.Store(true)
				}
			}
		}()
	}
}

// msgSend relays alerts to every enabled messenger. Each messenger gets its own listener and resends its queued
// failed alerts before processing new ones.
func msgSend(ctx context.Context, store *sqlitedb.Store, wgMsg *sync.WaitGroup, alertsMsg <-chan msgtypes.Message,
	cfg config.TomlConfig,
) {
	relay := broadcast.NewRelay[msgtypes.Message]()

	// Telegram sender
	if cfg.TelegramEnabled {
		l := relay.Listener(broadcastBufLen)

		wgMsg.Add(1)

		go func() {
			defer wgMsg.Done()
			logger.Debug().Msg("Telegram messenger started")

			err := messenger.Telegram(ctx, store, l.Ch(), cfg.Telegram.Token, cfg.Telegram.ChatIDs, *retries)
			if err != nil {
				logger.Warn().Msgf("%v: %v", ErrTelegram, err)
				exitWithError.Store(true)
				drain(l.Ch())
			}
		}()
	}

	// Mail sender
	if cfg.MailEnabled {
		l := relay.Listener(broadcastBufLen)

		wgMsg.Add(1)

		go func() {
			defer wgMsg.Done()
			logger.Debug().Msg("Mail messenger started")

			err := messenger.Mail(ctx, store, l.Ch(), messenger.MailConfig{
				Server:   cfg.Mail.Server,
				Port:     cfg.Mail.Port,
				Username: cfg.Mail.Username,
				Password: cfg.Mail.Password,
				From:     cfg.Mail.From,
				Subject:  cfg.Mail.Subject,
				To:       cfg.Mail.To,
			}, *retries)
			if err != nil {
				logger.Warn().Msgf("%v: %v", ErrMail, err)
				exitWithError.Store(true)
				drain(l.Ch())
			}
		}()
	}

	// broadcast regular incoming messages
	wgMsg.Add(1)

	go func() {
		defer wgMsg.Done()
		defer relay.Close()

		for g := range alertsMsg {
			select {
			case <-ctx.Done():
				return
			default:
				relay.Notify(g)
			}
		}
	}()
}

// drain consumes a listener channel of a stopped messenger so the relay never blocks on it.
func drain(ch <-chan msgtypes.Message) {
	for range ch {
	}
}

// msgDedup passes through only alerts not seen before. On a freshly created database all alerts are only recorded,
// and alerts about lessons on past days are dropped.
func msgDedup(ctx context.Context, store *sqlitedb.Store, wgFilter *sync.WaitGroup, alertsPolled <-chan msgtypes.Message,
	alertsMsg chan<- msgtypes.Message,
) {
	wgFilter.Add(1)

	go func() {
		defer wgFilter.Done()
		defer close(alertsMsg)

		if !store.Existing() {
			logger.Info().Msg("Newly initialized database, won't sent alerts in this run")
		}

		y, m, d := time.Now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)

		for g := range alertsPolled {
			select {
			case <-ctx.Done():
				return
			default:
				if *debugEvents {
					logger.Debug().Msgf("Received event for: %v/%v: %+v", g.Username, g.Subject, g)
				}

				found, err := store.CheckAndFlagTTL(ctx, g.Username, fmt.Sprintf("%v/%v", g.Code, g.Subject), g.Fields)
				if err != nil {
					logger.Fatal().Msgf("Problem with database, cannot continue: %v", err)
				}

				if found || !store.Existing() {
					continue
				}

				if len(g.Fields) > 0 {
					if t, err := time.ParseInLocation(format.DateLayout, g.Fields[0], time.Local); err == nil &&
						t.Before(today) {
						logger.Debug().Msgf("Ignoring change in a past lesson: %v/%v: %+v", g.Username, g.Subject, g)

						continue
					}
				}

				logger.Info().Msgf("New alert for: %v/%v: %+v", g.Username, g.Subject, g)
				alertsMsg <- g
			}
		}
	}()
}

// spinner shows a spiffy terminal spinner while waiting endlessly.
func spinner() {
	s := spin.New()

	for {
		fmt.Printf("\rWaiting... %v", s.Next())
		time.Sleep(spinnerRotateDelay)
	}
}

// versionCheck logs an informational message when a newer release than the running one is available on GitHub.
func versionCheck(ctx context.Context, wgVersion *sync.WaitGroup) {
	wgVersion.Add(1)

	go func() {
		defer wgVersion.Done()

		// no tag or a local source-build, nothing to compare
		if GitTag == "" || GitDirty != "" {
			return
		}

		currentTag, err := parseTag(GitTag)
		if err != nil {
			logger.Error().Msgf("Unable to parse current version of untis-bot: %v", err)

			return
		}

		client := github.NewClient(nil)

		latestRelease, _, err := client.Repositories.GetLatestRelease(ctx, githubOrg, githubRepo)
		if err != nil {
			logger.Error().Msgf("Unable to check latest version of untis-bot: %v", err)

			return
		}

		latestTag, err := parseTag(latestRelease.GetTagName())
		if err != nil {
			logger.Error().Msgf("Unable to parse latest version of untis-bot: %v", err)

			return
		}

		if latestTag.GT(currentTag) {
			logger.Info().Msgf("Newer version of untis-bot is available: %v", latestTag)
		}
	}()
}

// parseTag semver-parses a release tag with an optional "v" prefix.
func parseTag(tag string) (semver.Version, error) {
	if len(tag) > 0 && tag[0] == 'v' {
		tag = tag[1:]
	}

	return semver.Parse(tag)
}
