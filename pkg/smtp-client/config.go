package smtp_client

import (
	"crypto/tls"
	"net/smtp"
	"os"
	"strconv"
	"time"

	"github.com/knadh/smtppool"
	"gopkg.in/yaml.v2"
)

// MailerConfig describes the outgoing mail setup: the envelope identity and
// one or more SMTP relays to deliver through.
type MailerConfig struct {
	From    string   `yaml:"from"`
	Sender  string   `yaml:"sender"`
	ReplyTo []string `yaml:"replyTo"`
	Relays  []Relay  `yaml:"relays"`
}

type Relay struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Connections        int    `yaml:"connections"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	AuthData           struct {
		Username string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
	SendTimeout int `yaml:"sendTimeout"`
}

func LoadMailerConfig(fname string) (MailerConfig, error) {
	var cfg MailerConfig
	yamlFile, err := os.ReadFile(fname)
	if err != nil {
		return cfg, err
	}
	err = yaml.UnmarshalStrict(yamlFile, &cfg)
	return cfg, err
}

// OverrideCredentials replaces the auth data of every relay, typically with
// values from environment variables. Empty arguments leave the file values in
// place.
func (cfg *MailerConfig) OverrideCredentials(username string, password string) {
	for i := range cfg.Relays {
		if username != "" {
			cfg.Relays[i].AuthData.Username = username
		}
		if password != "" {
			cfg.Relays[i].AuthData.Password = password
		}
	}
}

func (r *Relay) Address() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

func (r *Relay) sendTimeout() time.Duration {
	return time.Duration(r.SendTimeout) * time.Second
}

func (r *Relay) connect() (*smtppool.Pool, error) {
	var auth smtp.Auth
	if r.AuthData.Username != "" || r.AuthData.Password != "" {
		auth = smtp.PlainAuth("", r.AuthData.Username, r.AuthData.Password, r.Host)
	}

	return smtppool.New(smtppool.Opt{
		Host:            r.Host,
		Port:            r.Port,
		MaxConns:        r.Connections,
		IdleTimeout:     r.sendTimeout(),
		PoolWaitTimeout: r.sendTimeout(),
		TLSConfig: &tls.Config{
			InsecureSkipVerify: r.InsecureSkipVerify,
			ServerName:         r.Host,
		},
		Auth: auth,
	})
}
