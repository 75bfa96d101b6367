package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	applyEnv(&c, mapLookup(map[string]string{
		EnvRedisAddr:          "redis:6379",
		EnvNotifyTimeout:      "45s",
		EnvAllowedOrigins:     "https://a.example, https://b.example,,",
		EnvMaxPhotoSize:       "1024",
		EnvAdminTokenValidity: "1h",
		EnvLogFormat:          "zerolog",
		EnvS3Bucket:           "",
		EnvAdminPasswordHash:  "$2a$10$hash",
	}))

	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 45*time.Second, c.NotifyTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, int64(1024), c.MaxPhotoSize)
	assert.Equal(t, time.Hour, c.AdminTokenValidity)
	assert.Equal(t, "zerolog", c.LogFormat)
	assert.Equal(t, "$2a$10$hash", c.AdminPasswordHash)
	assert.Equal(t, "wedding-photos", c.S3Bucket, "empty values are ignored")
}

func TestApplyEnv_InvalidValuesPanic(t *testing.T) {
	var c Config
	assert.Panics(t, func() { applyEnv(&c, mapLookup(map[string]string{EnvStoreTimeout: "soon"})) })
	assert.Panics(t, func() { applyEnv(&c, mapLookup(map[string]string{EnvMaxPhotoSize: "big"})) })
}
