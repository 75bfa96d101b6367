package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognised by parseEnv.
const (
	EnvHTTPAddr           = "WEDDING_HTTP_ADDR"
	EnvDatabaseDSN        = "WEDDING_DATABASE_DSN"
	EnvRedisAddr          = "WEDDING_REDIS_ADDR"
	EnvRedisPassword      = "WEDDING_REDIS_PASSWORD"
	EnvStoreTimeout       = "WEDDING_STORE_TIMEOUT"
	EnvNotifyTimeout      = "WEDDING_NOTIFY_TIMEOUT"
	EnvNotifyURL          = "WEDDING_NOTIFY_URL"
	EnvResendAPIKey       = "WEDDING_RESEND_API_KEY"
	EnvResendEndpoint     = "WEDDING_RESEND_ENDPOINT"
	EnvMailFrom           = "WEDDING_MAIL_FROM"
	EnvMailReplyTo        = "WEDDING_MAIL_REPLY_TO"
	EnvCoupleNames        = "WEDDING_COUPLE_NAMES"
	EnvSecretKey          = "WEDDING_SECRET_KEY"
	EnvAdminPassword      = "WEDDING_ADMIN_PASSWORD"
	EnvAdminPasswordHash  = "WEDDING_ADMIN_PASSWORD_HASH"
	EnvAdminTokenValidity = "WEDDING_ADMIN_TOKEN_VALIDITY"
	EnvAllowedOrigins     = "WEDDING_ALLOWED_ORIGINS"
	EnvS3RootUser         = "WEDDING_S3_ROOT_USER"
	EnvS3RootPassword     = "WEDDING_S3_ROOT_PASSWORD"
	EnvS3Bucket           = "WEDDING_S3_BUCKET"
	EnvS3Region           = "WEDDING_S3_REGION"
	EnvS3BaseEndpoint     = "WEDDING_S3_BASE_ENDPOINT"
	EnvMaxPhotoSize       = "WEDDING_MAX_PHOTO_SIZE"
	EnvPhotoURLExpiry     = "WEDDING_PHOTO_URL_EXPIRY"
	EnvLogFormat          = "WEDDING_LOG_FORMAT"
)

type lookupFunc func(key string) (string, bool)

// parseEnv overlays values from the process environment. Variables defined in
// dotenvPath are used when the process environment does not set them; a
// missing file is not an error.
func parseEnv(cfg *Config, dotenvPath string) {
	fileVars, err := godotenv.Read(dotenvPath)
	if err != nil {
		fileVars = map[string]string{}
	}

	applyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

func applyEnv(cfg *Config, lookup lookupFunc) {
	str := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", key, err))
			}
			*dst = d
		}
	}

	str(&cfg.HTTPAddr, EnvHTTPAddr)
	str(&cfg.DatabaseDSN, EnvDatabaseDSN)
	str(&cfg.RedisAddr, EnvRedisAddr)
	str(&cfg.RedisPassword, EnvRedisPassword)
	dur(&cfg.StoreTimeout, EnvStoreTimeout)
	dur(&cfg.NotifyTimeout, EnvNotifyTimeout)
	str(&cfg.NotifyURL, EnvNotifyURL)
	str(&cfg.ResendAPIKey, EnvResendAPIKey)
	str(&cfg.ResendEndpoint, EnvResendEndpoint)
	str(&cfg.MailFrom, EnvMailFrom)
	str(&cfg.MailReplyTo, EnvMailReplyTo)
	str(&cfg.CoupleNames, EnvCoupleNames)
	str(&cfg.SecretKey, EnvSecretKey)
	str(&cfg.AdminPassword, EnvAdminPassword)
	str(&cfg.AdminPasswordHash, EnvAdminPasswordHash)
	dur(&cfg.AdminTokenValidity, EnvAdminTokenValidity)
	if v, ok := lookup(EnvAllowedOrigins); ok && v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	str(&cfg.S3RootUser, EnvS3RootUser)
	str(&cfg.S3RootPassword, EnvS3RootPassword)
	str(&cfg.S3Bucket, EnvS3Bucket)
	str(&cfg.S3Region, EnvS3Region)
	str(&cfg.S3BaseEndpoint, EnvS3BaseEndpoint)
	if v, ok := lookup(EnvMaxPhotoSize); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvMaxPhotoSize, err))
		}
		cfg.MaxPhotoSize = n
	}
	dur(&cfg.PhotoURLExpiry, EnvPhotoURLExpiry)
	str(&cfg.LogFormat, EnvLogFormat)
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
