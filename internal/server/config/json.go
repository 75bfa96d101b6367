package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/thabitrevor/wedding/internal/flagx"
	"github.com/thabitrevor/wedding/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Duration fields
// accept "5s"-style strings or integer nanoseconds. Fields left out of the
// file keep their previous values.
type JsonConfig struct {
	HTTPAddr           *string         `json:"http_addr"`
	DatabaseDSN        *string         `json:"database_dsn"`
	RedisAddr          *string         `json:"redis_addr"`
	RedisPassword      *string         `json:"redis_password"`
	StoreTimeout       *timex.Duration `json:"store_timeout"`
	NotifyTimeout      *timex.Duration `json:"notify_timeout"`
	NotifyURL          *string         `json:"notify_url"`
	ResendAPIKey       *string         `json:"resend_api_key"`
	ResendEndpoint     *string         `json:"resend_endpoint"`
	MailFrom           *string         `json:"mail_from"`
	MailReplyTo        *string         `json:"mail_reply_to"`
	CoupleNames        *string         `json:"couple_names"`
	SecretKey          *string         `json:"secret_key"`
	AdminPassword      *string         `json:"admin_password"`
	AdminPasswordHash  *string         `json:"admin_password_hash"`
	AdminTokenValidity *timex.Duration `json:"admin_token_validity"`
	AllowedOrigins     []string        `json:"allowed_origins"`
	S3RootUser         *string         `json:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	MaxPhotoSize       *int64          `json:"max_photo_size"`
	PhotoURLExpiry     *timex.Duration `json:"photo_url_expiry"`
	LogFormat          *string         `json:"log_format"`
}

// parseJson overlays values from the file named by -c/-config. Without the
// flag nothing is loaded. Unreadable or malformed files panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := &JsonConfig{}
	if err := json.Unmarshal(file, jc); err != nil {
		panic(err)
	}

	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	setDuration(&cfg.StoreTimeout, jc.StoreTimeout)
	setDuration(&cfg.NotifyTimeout, jc.NotifyTimeout)
	setString(&cfg.NotifyURL, jc.NotifyURL)
	setString(&cfg.ResendAPIKey, jc.ResendAPIKey)
	setString(&cfg.ResendEndpoint, jc.ResendEndpoint)
	setString(&cfg.MailFrom, jc.MailFrom)
	setString(&cfg.MailReplyTo, jc.MailReplyTo)
	setString(&cfg.CoupleNames, jc.CoupleNames)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.AdminPassword, jc.AdminPassword)
	setString(&cfg.AdminPasswordHash, jc.AdminPasswordHash)
	setDuration(&cfg.AdminTokenValidity, jc.AdminTokenValidity)
	if len(jc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = jc.AllowedOrigins
	}
	setString(&cfg.S3RootUser, jc.S3RootUser)
	setString(&cfg.S3RootPassword, jc.S3RootPassword)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	if jc.MaxPhotoSize != nil {
		cfg.MaxPhotoSize = *jc.MaxPhotoSize
	}
	setDuration(&cfg.PhotoURLExpiry, jc.PhotoURLExpiry)
	setString(&cfg.LogFormat, jc.LogFormat)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
