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
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dustin/go-humanize"
	sysdwatchdog "github.com/iguanesolutions/go-systemd/v6/notify/watchdog"
)

const maxMemRatio = 0.9

// setMemLimit sets GOMEMLIMIT to 90% of the cgroup or system memory.
func setMemLimit() {
	limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(maxMemRatio),
		memlimit.WithProvider(
			memlimit.ApplyFallback(
				memlimit.FromCgroup,
				memlimit.FromSystem,
			),
		),
	)
	if err != nil {
		logger.Warn().Msgf("Unable to get/set GOMEMLIMIT: %v", err)

		return
	}

	logger.Debug().Msgf("GOMEMLIMIT is set to: %v", humanize.Bytes(uint64(limit))) //nolint:gosec
	logger.Debug().Msgf("GOMAXPROCS limit is set to: %v", runtime.GOMAXPROCS(0))
}

// startProfiling starts CPU profiling when requested and returns a function writing out the CPU and heap profiles.
func startProfiling() func() {
	var stops []func()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			logger.Fatal().Msgf("Error creating CPU profile: %v", err)
		}

		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal().Msgf("Error starting CPU profile: %v", err)
		}

		stops = append(stops, func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			logger.Fatal().Msgf("Error trying to create memory profile: %v", err)
		}

		stops = append(stops, func() {
			defer f.Close()

			runtime.GC()

			if err := pprof.WriteHeapProfile(f); err != nil {
				logger.Error().Msgf("Error writing memory profile: %v", err)
			}
		})
	}

	return func() {
		for _, s := range stops {
			s()
		}
	}
}

// startSystemdWatchdog sends periodic heartbeats to systemd until the context is cancelled.
func startSystemdWatchdog(ctx context.Context) {
	watchdog, _ := sysdwatchdog.New()
	if watchdog == nil {
		return
	}

	logger.Debug().Msg("Detected and enabled systemd watchdog support")

	go func() {
		ticker := watchdog.NewTicker()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = watchdog.SendHeartbeat()
			case <-ctx.Done():
				return
			}
		}
	}()
}
