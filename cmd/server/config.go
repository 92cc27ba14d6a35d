package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all runtime configuration, derived from flags and an optional
// TOML file. Explicitly set flags win over file values.
type Config struct {
	ListenAddr       string
	Mode             string
	HandshakeTimeout time.Duration
	TextBufSize      int
	AudioChunkSize   int
	MetricsAddr      string
	Debug            bool

	GlobalConnRate  int
	PerHostConnRate int
	PerNameMsgRate  int
	RateBurst       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ConfigFile string
}

var cfg Config

func init() {
	flag.StringVar(&cfg.ListenAddr, "listen", "0.0.0.0:50007", "client listener address")
	flag.StringVar(&cfg.Mode, "mode", "messaging", "server mode: messaging or voice")
	flag.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", 500*time.Second, "time limit for the NAME handshake read")
	flag.IntVar(&cfg.TextBufSize, "text-buf", 4096, "read buffer size for messaging payloads")
	flag.IntVar(&cfg.AudioChunkSize, "audio-chunk", 2048, "read chunk size for voice payloads")
	flag.StringVar(&cfg.MetricsAddr, "metrics", ":9100", "metrics and health listen address")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable debug logs")
	flag.IntVar(&cfg.GlobalConnRate, "conn-rate", 0, "global admission attempts per second, 0 disables")
	flag.IntVar(&cfg.PerHostConnRate, "conn-rate-per-host", 0, "admission attempts per second per remote host, 0 disables")
	flag.IntVar(&cfg.PerNameMsgRate, "msg-rate-per-client", 0, "relayed messages per second per client, 0 disables")
	flag.IntVar(&cfg.RateBurst, "rate-burst", 10, "token bucket burst size")
	flag.StringVar(&cfg.RedisAddr, "redis", "", "redis address for the presence roster mirror, empty disables")
	flag.StringVar(&cfg.RedisPassword, "redis-password", "", "redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database number")
	flag.StringVar(&cfg.ConfigFile, "config", "", "optional TOML config file")
}

// fileConfig mirrors Config for TOML decoding. Durations come in as strings.
type fileConfig struct {
	Listen           string `toml:"listen"`
	Mode             string `toml:"mode"`
	HandshakeTimeout string `toml:"handshake_timeout"`
	TextBuf          int    `toml:"text_buf"`
	AudioChunk       int    `toml:"audio_chunk"`
	Metrics          string `toml:"metrics"`
	Debug            *bool  `toml:"debug"`

	ConnRate        int `toml:"conn_rate"`
	ConnRatePerHost int `toml:"conn_rate_per_host"`
	MsgRatePerName  int `toml:"msg_rate_per_client"`
	RateBurst       int `toml:"rate_burst"`

	Redis         string `toml:"redis"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// applyConfigFile layers file values under any flags the user set explicitly.
func applyConfigFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["listen"] && fc.Listen != "" {
		cfg.ListenAddr = fc.Listen
	}
	if !set["mode"] && fc.Mode != "" {
		cfg.Mode = fc.Mode
	}
	if !set["handshake-timeout"] && fc.HandshakeTimeout != "" {
		d, err := time.ParseDuration(fc.HandshakeTimeout)
		if err != nil {
			return fmt.Errorf("handshake_timeout: %w", err)
		}
		cfg.HandshakeTimeout = d
	}
	if !set["text-buf"] && fc.TextBuf > 0 {
		cfg.TextBufSize = fc.TextBuf
	}
	if !set["audio-chunk"] && fc.AudioChunk > 0 {
		cfg.AudioChunkSize = fc.AudioChunk
	}
	if !set["metrics"] && fc.Metrics != "" {
		cfg.MetricsAddr = fc.Metrics
	}
	if !set["debug"] && fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if !set["conn-rate"] && fc.ConnRate > 0 {
		cfg.GlobalConnRate = fc.ConnRate
	}
	if !set["conn-rate-per-host"] && fc.ConnRatePerHost > 0 {
		cfg.PerHostConnRate = fc.ConnRatePerHost
	}
	if !set["msg-rate-per-client"] && fc.MsgRatePerName > 0 {
		cfg.PerNameMsgRate = fc.MsgRatePerName
	}
	if !set["rate-burst"] && fc.RateBurst > 0 {
		cfg.RateBurst = fc.RateBurst
	}
	if !set["redis"] && fc.Redis != "" {
		cfg.RedisAddr = fc.Redis
	}
	if !set["redis-password"] && fc.RedisPassword != "" {
		cfg.RedisPassword = fc.RedisPassword
	}
	if !set["redis-db"] && fc.RedisDB != 0 {
		cfg.RedisDB = fc.RedisDB
	}
	return nil
}
