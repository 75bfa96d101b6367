package config

import (
	"flag"
	"time"

	"github.com/thabitrevor/wedding/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-r string   Redis address for the submission lock
//	-s string   JWT HMAC secret key
//	-n string   confirmation endpoint URL
//	-t int      store call timeout, seconds
//	-b string   S3 bucket name
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log format (json, text, zerolog)
//
// Only the flags above are parsed; flagx.FilterArgs drops everything else so
// -c/-config and foreign flags do not make the FlagSet fail.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-r", "-s", "-n", "-t", "-b", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.StringVar(&cfg.NotifyURL, "n", cfg.NotifyURL, "confirmation endpoint URL")
	storeTimeout := fs.Int("t", int(cfg.StoreTimeout.Seconds()), "store call timeout (in seconds)")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.StoreTimeout = time.Duration(*storeTimeout) * time.Second
}
