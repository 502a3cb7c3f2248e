/*
 * Copyright (c) 2021-Present, OneLogin, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/onelogin/onelogin-aws-cli/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

const (
	// Version app version
	Version = "2.0.0"

	// AWSCredentialsFormat format const
	AWSCredentialsFormat = "aws-credentials"
	// EnvVarFormat format const
	EnvVarFormat = "env-var"
	// ProcessCredentialsFormat format const
	ProcessCredentialsFormat = "process-credentials"

	// ConfigNameFlag cli flag const
	ConfigNameFlag = "config-name"
	// ProfileFlag cli flag const
	ProfileFlag = "profile"
	// UsernameFlag cli flag const
	UsernameFlag = "username"
	// RegionFlag cli flag const
	RegionFlag = "region"
	// RoleARNFlag cli flag const
	RoleARNFlag = "role-arn"
	// DurationSecondsFlag cli flag const
	DurationSecondsFlag = "duration-seconds"
	// AWSCredentialsFlag cli flag const
	AWSCredentialsFlag = "aws-credentials"
	// WriteAWSCredentialsFlag cli flag const
	WriteAWSCredentialsFlag = "write-aws-credentials"
	// FormatFlag cli flag const
	FormatFlag = "format"
	// DebugAPICallsFlag cli flag const
	DebugAPICallsFlag = "debug-api-calls"
	// ExecFlag cli flag const
	ExecFlag = "exec"

	// ConfigNameEnvVar env var const
	ConfigNameEnvVar = "ONELOGIN_AWS_CLI_CONFIG_NAME"
	// ConfigFileEnvVar env var const, overrides the settings file path
	ConfigFileEnvVar = "ONELOGIN_AWS_CLI_CONFIG_FILE"
	// ProfileEnvVar env var const
	ProfileEnvVar = "ONELOGIN_AWS_CLI_PROFILE"
	// UsernameEnvVar env var const
	UsernameEnvVar = "ONELOGIN_AWS_CLI_USERNAME"
	// PasswordEnvVar env var const
	PasswordEnvVar = "ONELOGIN_AWS_CLI_PASSWORD"
	// OTPEnvVar env var const
	OTPEnvVar = "ONELOGIN_AWS_CLI_OTP"
	// DurationSecondsEnvVar env var const
	DurationSecondsEnvVar = "ONELOGIN_AWS_CLI_DURATION_SECONDS"
	// AWSSharedCredentialsFileEnvVar env var const, the AWS CLI's own override
	AWSSharedCredentialsFileEnvVar = "AWS_SHARED_CREDENTIALS_FILE"

	// defaultsSection base section of ~/.onelogin-aws.config every named
	// config inherits from
	defaultsSection = "defaults"

	configFileName     = ".onelogin-aws.config"
	awsCredentialsPath = ".aws/credentials"
)

// Clock Allows the injection of fake timestamps in tests
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Now The real clock's now
func (realClock) Now() time.Time { return time.Now() }

// Logger minimal interface of the stdout/stderr logger the CLI carries around
type Logger interface {
	Info(format string, a ...any) (int, error)
	Warn(format string, a ...any) (int, error)
}

// Attributes config construction attributes, resolved by EvaluateSettings or
// handed in directly by tests.
type Attributes struct {
	BaseURI             string
	Subdomain           string
	ClientID            string
	ClientSecret        string
	Username            string
	Password            string
	OTP                 string
	OTPDeviceID         int
	AWSAppID            string
	Profile             string
	RoleARN             string
	Region              string
	DurationSeconds     int64
	AWSCredentials      string
	Format              string
	WriteAWSCredentials bool
	DebugAPICalls       bool
	Exec                bool
}

// Config A config object for the CLI. Immutable once constructed except for
// the operator supplied secrets (username, password, OTP) that may be
// collected interactively after settings resolution.
type Config struct {
	baseURI             string
	subdomain           string
	clientID            string
	clientSecret        string
	username            string
	password            string
	otp                 string
	otpDeviceID         int
	awsAppID            string
	profile             string
	roleARN             string
	region              string
	durationSeconds     int64
	awsCredentials      string
	format              string
	writeAWSCredentials bool
	debugAPICalls       bool
	exec                bool
	httpClient          *http.Client
	clock               Clock
	// Logger conversational and result output
	Logger Logger
}

// NewConfig Creates a new config from attributes, applying defaults.
func NewConfig(attrs *Attributes) (*Config, error) {
	cfg := &Config{
		baseURI:             attrs.BaseURI,
		subdomain:           attrs.Subdomain,
		clientID:            attrs.ClientID,
		clientSecret:        attrs.ClientSecret,
		username:            attrs.Username,
		password:            attrs.Password,
		otp:                 attrs.OTP,
		otpDeviceID:         attrs.OTPDeviceID,
		awsAppID:            attrs.AWSAppID,
		profile:             attrs.Profile,
		roleARN:             attrs.RoleARN,
		region:              attrs.Region,
		durationSeconds:     attrs.DurationSeconds,
		awsCredentials:      attrs.AWSCredentials,
		format:              attrs.Format,
		writeAWSCredentials: attrs.WriteAWSCredentials,
		debugAPICalls:       attrs.DebugAPICalls,
		exec:                attrs.Exec,
		clock:               realClock{},
		Logger:              logger.NewFullLogger(),
	}
	if cfg.durationSeconds == 0 {
		cfg.durationSeconds = 3600
	}
	if cfg.format == "" {
		cfg.format = AWSCredentialsFormat
	}
	if cfg.writeAWSCredentials {
		// writing aws creds option implies "aws-credentials" format
		cfg.format = AWSCredentialsFormat
	}
	if cfg.awsCredentials == "" {
		cfg.awsCredentials = defaultAWSCredentialsPath()
	}
	if cfg.durationSeconds < 900 || cfg.durationSeconds > 43200 {
		return nil, fmt.Errorf("duration seconds must be between 900 and 43200, got %d", cfg.durationSeconds)
	}
	cfg.httpClient = &http.Client{
		Transport: newConfigTransport(cfg.debugAPICalls),
		Timeout:   time.Second * time.Duration(60),
	}
	return cfg, nil
}

// EvaluateSettings Creates a config gathering values in ascending order of
// precedence:
//  1. ~/.onelogin-aws.config "defaults" section, then the named section
//  2. CLI flags (already bound into Viper by the flag package)
//  3. ONELOGIN_AWS_CLI_* environment variables
func EvaluateSettings() (*Config, error) {
	attrs := &Attributes{}

	configName := viper.GetString(ConfigNameFlag)
	if name := os.Getenv(ConfigNameEnvVar); name != "" {
		configName = name
	}
	if err := applyConfigFile(attrs, configName); err != nil {
		return nil, err
	}

	applyFlags(attrs)
	applyEnvVars(attrs)

	if err := checkRequiredSettings(attrs); err != nil {
		return nil, err
	}

	return NewConfig(attrs)
}

// applyConfigFile layers the defaults section and then the named section of
// ~/.onelogin-aws.config onto attrs. A missing file is only an error when a
// named configuration was explicitly requested.
func applyConfigFile(attrs *Attributes, configName string) error {
	file, err := ini.Load(ConfigFile())
	if err != nil {
		if os.IsNotExist(err) && configName == "" {
			return nil
		}
		return fmt.Errorf("loading config file %q: %w", ConfigFile(), err)
	}

	applyConfigSection(attrs, file, defaultsSection)
	if configName != "" && configName != defaultsSection {
		if _, err := file.GetSection(configName); err != nil {
			return fmt.Errorf("config name %q does not exist in %q", configName, ConfigFile())
		}
		applyConfigSection(attrs, file, configName)
	}
	return nil
}

func applyConfigSection(attrs *Attributes, file *ini.File, name string) {
	section, err := file.GetSection(name)
	if err != nil {
		return
	}
	setString := func(dst *string, key string) {
		if section.HasKey(key) {
			*dst = section.Key(key).String()
		}
	}
	setString(&attrs.BaseURI, "base_uri")
	setString(&attrs.Subdomain, "subdomain")
	setString(&attrs.Username, "username")
	setString(&attrs.ClientID, "client_id")
	setString(&attrs.ClientSecret, "client_secret")
	setString(&attrs.Profile, "profile")
	setString(&attrs.AWSAppID, "aws_app_id")
	setString(&attrs.RoleARN, "role_arn")
	setString(&attrs.Region, "region")
	if section.HasKey("otp_device_id") {
		attrs.OTPDeviceID, _ = section.Key("otp_device_id").Int()
	}
	if section.HasKey("duration_seconds") {
		attrs.DurationSeconds, _ = section.Key("duration_seconds").Int64()
	}
}

func applyFlags(attrs *Attributes) {
	setString := func(dst *string, flag string) {
		if v := viper.GetString(flag); v != "" {
			*dst = v
		}
	}
	setString(&attrs.Profile, ProfileFlag)
	setString(&attrs.Username, UsernameFlag)
	setString(&attrs.Region, RegionFlag)
	setString(&attrs.RoleARN, RoleARNFlag)
	setString(&attrs.AWSCredentials, AWSCredentialsFlag)
	setString(&attrs.Format, FormatFlag)
	if v := viper.GetInt64(DurationSecondsFlag); v != 0 {
		attrs.DurationSeconds = v
	}
	if viper.GetBool(WriteAWSCredentialsFlag) {
		attrs.WriteAWSCredentials = true
	}
	if viper.GetBool(DebugAPICallsFlag) {
		attrs.DebugAPICalls = true
	}
	if viper.GetBool(ExecFlag) {
		attrs.Exec = true
	}
}

func applyEnvVars(attrs *Attributes) {
	setString := func(dst *string, envVar string) {
		if v := os.Getenv(envVar); v != "" {
			*dst = v
		}
	}
	setString(&attrs.Profile, ProfileEnvVar)
	setString(&attrs.Username, UsernameEnvVar)
	setString(&attrs.Password, PasswordEnvVar)
	setString(&attrs.OTP, OTPEnvVar)
	if v := os.Getenv(DurationSecondsEnvVar); v != "" {
		if d, err := strconv.ParseInt(v, 10, 64); err == nil {
			attrs.DurationSeconds = d
		}
	}
	setString(&attrs.AWSCredentials, AWSSharedCredentialsFileEnvVar)
}

func checkRequiredSettings(attrs *Attributes) error {
	missing := []string{}
	if attrs.BaseURI == "" {
		missing = append(missing, "base_uri")
	}
	if attrs.Subdomain == "" {
		missing = append(missing, "subdomain")
	}
	if attrs.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if attrs.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if attrs.AWSAppID == "" {
		missing = append(missing, "aws_app_id")
	}
	if len(missing) > 0 {
		return &MissingSettingsError{Settings: missing}
	}
	return nil
}

// ConfigFile Path of the OneLogin settings file, $HOME/.onelogin-aws.config
// unless overridden by env var.
func ConfigFile() string {
	if path := os.Getenv(ConfigFileEnvVar); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(homeDir, configFileName)
}

// ConfigNames Section names of the settings file, for the configs-list
// subcommand.
func ConfigNames() ([]string, error) {
	file, err := ini.Load(ConfigFile())
	if err != nil {
		return nil, fmt.Errorf("loading config file %q: %w", ConfigFile(), err)
	}
	names := []string{}
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		names = append(names, section.Name())
	}
	return names, nil
}

func defaultAWSCredentialsPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return awsCredentialsPath
	}
	return filepath.Join(homeDir, awsCredentialsPath)
}

// BaseURI The region scoped OneLogin API base URI, e.g.
// https://api.us.onelogin.com
func (c *Config) BaseURI() string { return c.baseURI }

// APIRegion The region segment of the base URI host ("us" of
// api.us.onelogin.com). Empty when the base URI is unparseable.
func (c *Config) APIRegion() string {
	u, err := url.Parse(c.baseURI)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Hostname(), ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Subdomain The OneLogin account subdomain
func (c *Config) Subdomain() string { return c.subdomain }

// ClientID The OneLogin API client id
func (c *Config) ClientID() string { return c.clientID }

// ClientSecret The OneLogin API client secret
func (c *Config) ClientSecret() string { return c.clientSecret }

// Username The OneLogin user
func (c *Config) Username() string { return c.username }

// SetUsername Set the OneLogin user after an interactive ask
func (c *Config) SetUsername(username string) { c.username = username }

// Password The OneLogin user's password
func (c *Config) Password() string { return c.password }

// SetPassword Set the password after an interactive ask
func (c *Config) SetPassword(password string) { c.password = password }

// OTP A pre-supplied one time passcode, may be empty
func (c *Config) OTP() string { return c.otp }

// SetOTP Set the OTP after an interactive ask
func (c *Config) SetOTP(otp string) { c.otp = otp }

// OTPDeviceID A pre-selected MFA device id, 0 when unset
func (c *Config) OTPDeviceID() int { return c.otpDeviceID }

// AWSAppID The OneLogin AWS application id
func (c *Config) AWSAppID() string { return c.awsAppID }

// Profile The AWS profile name to write credentials under, may be empty
func (c *Config) Profile() string { return c.profile }

// SetProfile Set the fallback profile name when none was configured
func (c *Config) SetProfile(profile string) { c.profile = profile }

// RoleARN A pre-configured IAM role ARN, may be empty
func (c *Config) RoleARN() string { return c.roleARN }

// Region The AWS region for the STS call, may be empty
func (c *Config) Region() string { return c.region }

// DurationSeconds Requested AWS session duration
func (c *Config) DurationSeconds() int64 { return c.durationSeconds }

// AWSCredentials Path of the AWS credentials file
func (c *Config) AWSCredentials() string { return c.awsCredentials }

// Format The output format for established credentials
func (c *Config) Format() string { return c.format }

// WriteAWSCredentials Whether to persist credentials to the AWS credentials
// file
func (c *Config) WriteAWSCredentials() bool { return c.writeAWSCredentials }

// DebugAPICalls Whether full HTTP requests and responses are dumped
func (c *Config) DebugAPICalls() bool { return c.debugAPICalls }

// Exec Whether a subcommand is run with the credentials in its environment
func (c *Config) Exec() bool { return c.exec }

// HTTPClient The client for all OneLogin API calls
func (c *Config) HTTPClient() *http.Client { return c.httpClient }

// Clock The config's clock
func (c *Config) Clock() Clock { return c.clock }

// SetClock Set the config's clock
func (c *Config) SetClock(clock Clock) { c.clock = clock }

// UserAgent User agent value for API calls
func (c *Config) UserAgent() string {
	return fmt.Sprintf("onelogin-aws-cli/%s", Version)
}

// MissingSettingsError Error for required settings that resolved empty
type MissingSettingsError struct {
	Settings []string
}

// Error Error interface error message
func (e *MissingSettingsError) Error() string {
	return fmt.Sprintf("missing required settings: %s", strings.Join(e.Settings, ", "))
}
