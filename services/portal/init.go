package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/gin-gonic/gin"

	"github.com/accounts-portal/accounts-portal/pkg/db"
	accountsDB "github.com/accounts-portal/accounts-portal/pkg/db/accounts"
	"github.com/accounts-portal/accounts-portal/pkg/messaging"
	"github.com/accounts-portal/accounts-portal/pkg/metrics"
	"github.com/accounts-portal/accounts-portal/pkg/session"
	smtpclient "github.com/accounts-portal/accounts-portal/pkg/smtp-client"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/pwhash"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/resettoken"
	umUtils "github.com/accounts-portal/accounts-portal/pkg/user-management/utils"
	"github.com/accounts-portal/accounts-portal/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	ENV_GIN_DEBUG_MODE     = "GIN_DEBUG_MODE"
	ENV_PORTAL_LISTEN_PORT = "PORTAL_LISTEN_PORT"

	ENV_SESSION_JWT_SIGN_KEY = "SESSION_JWT_SIGN_KEY"
	ENV_RESET_TOKEN_SECRET   = "RESET_TOKEN_SECRET"

	ENV_ACCOUNT_DB_CONNECTION_STR = "ACCOUNT_DB_CONNECTION_STR"
	ENV_ACCOUNT_DB_USERNAME       = "ACCOUNT_DB_USERNAME"
	ENV_ACCOUNT_DB_PASSWORD       = "ACCOUNT_DB_PASSWORD"

	ENV_SMTP_USERNAME = "SMTP_USERNAME"
	ENV_SMTP_PASSWORD = "SMTP_PASSWORD"
)

var (
	conf             PortalConfig
	accountDBService *accountsDB.AccountDBService
	sessionManager   *session.Manager
	resetTokens      *resettoken.Generator
	emailService     *messaging.EmailService
)

type PortalConfig struct {
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
	} `json:"gin_config" yaml:"gin_config"`

	// External URL prefix used when building links in emails
	BaseURL string `json:"base_url" yaml:"base_url"`

	TemplatesPath        string `json:"templates_path" yaml:"templates_path"`
	StaticPath           string `json:"static_path" yaml:"static_path"`
	BlockedPasswordsPath string `json:"blocked_passwords_path" yaml:"blocked_passwords_path"`

	Session struct {
		JWTSignKey   string `json:"jwt_sign_key" yaml:"jwt_sign_key"`
		ExpiresIn    string `json:"expires_in" yaml:"expires_in"`
		CookieName   string `json:"cookie_name" yaml:"cookie_name"`
		SecureCookie bool   `json:"secure_cookie" yaml:"secure_cookie"`
	} `json:"session" yaml:"session"`

	ResetToken struct {
		Secret    string `json:"secret" yaml:"secret"`
		ExpiresIn string `json:"expires_in" yaml:"expires_in"`
	} `json:"reset_token" yaml:"reset_token"`

	Argon2 struct {
		Memory      uint32 `json:"memory" yaml:"memory"`
		Iterations  uint32 `json:"iterations" yaml:"iterations"`
		Parallelism uint8  `json:"parallelism" yaml:"parallelism"`
	} `json:"argon2" yaml:"argon2"`

	AccountDBConfig db.DBConfigYaml `json:"account_db_config" yaml:"account_db_config"`

	SMTPServerConfigPath string `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`
}

func init() {
	conf = initConfig()

	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	pwhash.InitArgonParams(conf.Argon2.Memory, conf.Argon2.Iterations, conf.Argon2.Parallelism)

	if conf.BlockedPasswordsPath != "" {
		if err := umUtils.LoadBlockedPasswords(conf.BlockedPasswordsPath); err != nil {
			slog.Error("Error loading blocked passwords list", slog.String("error", err.Error()))
			panic(err)
		}
	}

	initDBs()
	initSessionManager()
	initResetTokens()
	initMessaging()
}

func initConfig() PortalConfig {
	conf := PortalConfig{}

	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		fmt.Println("Error reading config file: " + err.Error())
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		fmt.Println("Error parsing config file: " + err.Error())
		panic(err)
	}

	// Secrets may be overridden through env variables
	if v := os.Getenv(ENV_GIN_DEBUG_MODE); v != "" {
		conf.GinConfig.DebugMode = v == "true"
	}
	if v := os.Getenv(ENV_PORTAL_LISTEN_PORT); v != "" {
		conf.GinConfig.Port = v
	}
	if v := os.Getenv(ENV_SESSION_JWT_SIGN_KEY); v != "" {
		conf.Session.JWTSignKey = v
	}
	if v := os.Getenv(ENV_RESET_TOKEN_SECRET); v != "" {
		conf.ResetToken.Secret = v
	}
	if v := os.Getenv(ENV_ACCOUNT_DB_CONNECTION_STR); v != "" {
		conf.AccountDBConfig.ConnectionStr = v
	}
	if v := os.Getenv(ENV_ACCOUNT_DB_USERNAME); v != "" {
		conf.AccountDBConfig.Username = v
	}
	if v := os.Getenv(ENV_ACCOUNT_DB_PASSWORD); v != "" {
		conf.AccountDBConfig.Password = v
	}

	if conf.Session.JWTSignKey == "" {
		panic("Session JWT sign key not set")
	}
	if conf.ResetToken.Secret == "" {
		panic("Reset token secret not set")
	}
	return conf
}

func initDBs() {
	var err error
	accountDBService, err = accountsDB.NewAccountDBService(db.DBConfigFromYamlObj(conf.AccountDBConfig))
	if err != nil {
		slog.Error("Error connecting to Account DB", slog.String("error", err.Error()))
		panic(err)
	}

	count, err := accountDBService.CountAccounts()
	if err != nil {
		slog.Error("Error counting accounts", slog.String("error", err.Error()))
		return
	}
	metrics.SetAccountCount(count)
	slog.Info("Connected to Account DB", slog.Int64("accounts", count))
}

func initSessionManager() {
	ttl := parseDuration(conf.Session.ExpiresIn, time.Hour*24)
	cookieName := conf.Session.CookieName
	if cookieName == "" {
		cookieName = session.DefaultCookieName
	}
	sessionManager = session.NewManager(
		accountDBService,
		conf.Session.JWTSignKey,
		ttl,
		cookieName,
		conf.Session.SecureCookie,
	)
}

func initResetTokens() {
	ttl := parseDuration(conf.ResetToken.ExpiresIn, time.Hour*24)
	resetTokens = resettoken.NewGenerator(conf.ResetToken.Secret, ttl)
}

func initMessaging() {
	mailerConfig, err := smtpclient.LoadMailerConfig(conf.SMTPServerConfigPath)
	if err != nil {
		slog.Error("Error reading SMTP relay config", slog.String("error", err.Error()))
		panic(err)
	}
	mailerConfig.OverrideCredentials(os.Getenv(ENV_SMTP_USERNAME), os.Getenv(ENV_SMTP_PASSWORD))

	mailer, err := smtpclient.NewMailer(mailerConfig)
	if err != nil {
		slog.Error("Error initializing SMTP mailer", slog.String("error", err.Error()))
		panic(err)
	}

	emailService = messaging.NewEmailService(mailer)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Error("invalid duration in config", slog.String("value", value), slog.String("error", err.Error()))
		panic(err)
	}
	return d
}
