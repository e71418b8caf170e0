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
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/hako/durafmt"
	sysdnotify "github.com/iguanesolutions/go-systemd/v6/notify"
)

const (
	chanBufLen      = 500             // alert channel buffer length
	exitDelay       = 5 * time.Second // sleep time before giving up on cancellation
	firstRunDelay   = 1 * time.Second
	testUsername    = "student@test.example"
	testSubject     = "Test subject"
	testDescription = "Date"
	testField       = "Mon 2024-01-15"
	scheduledActive = "Scheduled run in progress"
	scheduledSleep  = "Scheduled run completed, will sleep now"
)

var (
	exitWithError atomic.Bool
	GitTag        = ""
	GitCommit     = ""
	GitDirty      = ""
	BuildTime     = ""
)

// fatalIfErrors exits with a non-zero code when any routine flagged an error during the run.
func fatalIfErrors() {
	if exitWithError.Load() {
		logger.Fatal().Msg("Exiting, during run some errors were encountered.")
	}

	logger.Info().Msg("Exiting with a success.")
}

// main parses flags and configuration, then polls timetables once or, in daemon mode, on every tick.
func main() {
	parseFlags()

	initLog()

	logger.Info().Msgf("untis-bot %v %v%v, built on %v, with %v", GitTag, GitCommit, GitDirty,
		BuildTime, runtime.Version())

	setMemLimit()

	if sysdnotify.IsEnabled() {
		logger.Debug().Msg("Detected and enabled systemd notify support")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*confFile)
	if err != nil {
		logger.Fatal().Msgf("Error loading configuration: %v", err)
	}

	checkExport(&cfg)

	stopProfiling := startProfiling()
	defer stopProfiling()

	if *emulation {
		testSingleRun(ctx, cfg)

		return
	}

	serve(ctx, stop, cfg)
}

// serve runs polls on a ticker until the context is cancelled, or just once when not in daemon mode.
func serve(ctx context.Context, stop context.CancelFunc, cfg config.TomlConfig) {
	ticker := time.NewTicker(firstRunDelay)
	defer ticker.Stop()

	switch {
	case !*daemon:
		logger.Info().Msg("Service is not enabled, doing just a single run")
	case *jitter:
		logger.Info().Msgf("Service started, will poll timetables every %v (with random jitter up to +-10%%)",
			durafmt.Parse(tickInterval))
	default:
		logger.Info().Msgf("Service started, will poll timetables every %v", durafmt.Parse(tickInterval))
	}

	_ = sysdnotify.Ready()

	startSystemdWatchdog(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Received stop signal, asking all routines to stop")
			ticker.Stop()

			_ = sysdnotify.Stopping()

			go stop()

			if isTerminal() {
				go spinner()
			}

			time.Sleep(exitDelay)
			fatalIfErrors()

			return
		case <-ticker.C:
			if *jitter {
				ticker.Reset(durationRandJitter(tickInterval))
			} else {
				ticker.Reset(tickInterval)
			}

			runOnce(ctx, cfg)

			if !*daemon {
				fatalIfErrors()

				return
			}
		}
	}
}

// runOnce wires pollers, the dedup filter and messengers for a single poll of every user and waits for all of them.
func runOnce(ctx context.Context, cfg config.TomlConfig) {
	logger.Info().Msg(scheduledActive)
	_ = sysdnotify.Status(scheduledActive)

	exitWithError.Store(false)

	alertsPolled := make(chan msgtypes.Message, chanBufLen)
	alertsMsg := make(chan msgtypes.Message, chanBufLen)

	var wgVersion, wgPoll, wgFilter, wgMsg sync.WaitGroup

	versionCheck(ctx, &wgVersion)

	store := openDB(ctx, *dbFile)

	pollers(ctx, &wgPoll, alertsPolled, cfg)
	msgDedup(ctx, store, &wgFilter, alertsPolled, alertsMsg)
	msgSend(ctx, store, &wgMsg, alertsMsg, cfg)

	wgPoll.Wait()
	close(alertsPolled)

	wgFilter.Wait()
	wgMsg.Wait()
	wgVersion.Wait()

	closeDB(store)

	logger.Info().Msg(scheduledSleep)
	_ = sysdnotify.Status(scheduledSleep)
}

// testSingleRun sends a single test alert to every configured messenger and exits.
func testSingleRun(ctx context.Context, cfg config.TomlConfig) {
	logger.Info().Msg("Emulation/testing mode enabled, will try to send a test alert")
	signal.Reset()

	alertsMsg := make(chan msgtypes.Message, 1)
	alertsMsg <- msgtypes.Message{
		Timestamp:    time.Now(),
		Code:         msgtypes.Cancelled,
		Username:     testUsername,
		Subject:      testSubject,
		Descriptions: []string{testDescription},
		Fields:       []string{testField},
	}

	close(alertsMsg)

	var wgMsg sync.WaitGroup

	store := openDB(ctx, *dbFile)

	msgSend(ctx, store, &wgMsg, alertsMsg, cfg)
	wgMsg.Wait()

	closeDB(store)

	logger.Info().Msg("Exiting with a success from the emulation.")
}

// durationRandJitter returns x scaled by a random factor in the range [0.9, 1.1].
func durationRandJitter(x time.Duration) time.Duration {
	//nolint:gosec,mnd
	return time.Duration(int64(x) / 100 * (rand.Int64N(21) + 90))
}
