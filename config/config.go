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

package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/dkorunic/untis-bot/logger"
)

const DefaultExportDir = "exports"

var (
	ErrNoUsers          = errors.New("no users defined")
	ErrUserCredentials  = errors.New("user requires username and password")
	ErrNoSchool         = errors.New("school requires either search or server and loginname")
	ErrSchoolServer     = errors.New("school server is not a valid hostname")
	ErrTelegramToken    = errors.New("invalid Telegram token")
	ErrTelegramNoChats  = errors.New("no Telegram chat IDs defined")
	ErrTelegramChatID   = errors.New("invalid Telegram chat ID")
	ErrMailNoRecipients = errors.New("no e-Mail to addresses defined")
	ErrMailAddress      = errors.New("e-Mail address is not valid")
	ErrMailPort         = errors.New("e-Mail port is not a number")
)

// LoadConfig loads and decodes a TOML configuration file, does a sanity check of every block and flags which
// messengers and exports are enabled.
func LoadConfig(file string) (TomlConfig, error) {
	var config TomlConfig
	if _, err := toml.DecodeFile(file, &config); err != nil {
		return config, err
	}

	checks := []func(*TomlConfig) error{
		checkSchoolConf,
		checkUserConf,
		checkTelegramConf,
		checkMailConf,
		checkExportConf,
	}

	for _, check := range checks {
		if err := check(&config); err != nil {
			return config, fmt.Errorf("configuration error: %w", err)
		}
	}

	return config, nil
}

// checkSchoolConf ensures a school is selected either by search term or by a valid server hostname and login name.
func checkSchoolConf(config *TomlConfig) error {
	s := config.School

	switch {
	case s.Server != "" && s.LoginName != "":
		if !isValidHostname(s.Server) {
			return fmt.Errorf("%w: %q", ErrSchoolServer, s.Server)
		}

		if s.Search != "" {
			logger.Warn().Msg("Configuration issue: school search ignored, server and loginname are set")
		}
	case s.Search != "":
	default:
		return ErrNoSchool
	}

	return nil
}

// checkUserConf ensures at least one user is defined and all users have both username and password.
func checkUserConf(config *TomlConfig) error {
	if len(config.User) == 0 {
		return ErrNoUsers
	}

	for _, u := range config.User {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("%w: %q", ErrUserCredentials, u.Username)
		}
	}

	return nil
}

// checkTelegramConf validates the Telegram token and chat IDs, enabling the Telegram messenger when a token is
// present.
func checkTelegramConf(config *TomlConfig) error {
	if config.Telegram.Token == "" {
		return nil
	}

	if !isValidTelegramToken(config.Telegram.Token) {
		return ErrTelegramToken
	}

	if len(config.Telegram.ChatIDs) == 0 {
		return ErrTelegramNoChats
	}

	for _, c := range config.Telegram.ChatIDs {
		if !isValidTelegramChatID(c) {
			return fmt.Errorf("%w: %q", ErrTelegramChatID, c)
		}
	}

	logger.Info().Msg("Configuration: Telegram messenger enabled")

	config.TelegramEnabled = true

	return nil
}

// checkMailConf validates recipients and port, enabling the e-Mail messenger when a server is present.
func checkMailConf(config *TomlConfig) error {
	if config.Mail.Server == "" {
		return nil
	}

	if len(config.Mail.To) == 0 {
		return ErrMailNoRecipients
	}

	if config.Mail.Port != "" && !isValidID(config.Mail.Port) {
		return fmt.Errorf("%w: %q", ErrMailPort, config.Mail.Port)
	}

	// no need to check FROM since it can be anything
	for _, t := range config.Mail.To {
		if !isValidMail(t) {
			return fmt.Errorf("%w: %q", ErrMailAddress, t)
		}
	}

	logger.Info().Msg("Configuration: e-Mail messenger enabled")

	config.MailEnabled = true

	return nil
}

// checkExportConf enables timetable exports when at least one format is requested.
func checkExportConf(config *TomlConfig) error {
	if !config.Export.ICal && !config.Export.XLSX {
		return nil
	}

	if config.Export.Dir == "" {
		config.Export.Dir = DefaultExportDir
	}

	logger.Info().Msgf("Configuration: timetable export to %v enabled", config.Export.Dir)

	config.ExportEnabled = true

	return nil
}
