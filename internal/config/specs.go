// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"net/url"
	"time"
)

const redacted = "REDACTED"

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint   string  `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint   string  `envconfig:"otel_http_endpoint"`
	TracingEnabled     bool    `envconfig:"tracing_enabled" default:"true"`
	TracingSampleRatio float64 `envconfig:"tracing_sample_ratio" default:"1"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port     int `envconfig:"port" default:"8080"`
	GRPCPort int `envconfig:"grpc_port" default:"50051"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns         int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns         int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime  time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime  time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
	DBStatementTimeout time.Duration `envconfig:"db_statement_timeout" default:"10s"`

	// an empty address selects the in-process cache and event bus
	RedisAddr     string `envconfig:"redis_addr" default:""`
	RedisPassword string `envconfig:"redis_password" default:""`
	RedisDB       int    `envconfig:"redis_db" default:"0"`

	SessionInactivityTimeout time.Duration `envconfig:"session_inactivity_timeout" default:"24h"`
	SessionReissueAge        time.Duration `envconfig:"session_reissue_age" default:"168h"`
	SessionRotationGrace     time.Duration `envconfig:"session_rotation_grace" default:"30s"`
	RememberMeTTL            time.Duration `envconfig:"remember_me_ttl" default:"336h"`
	SessionCookieName        string        `envconfig:"session_cookie_name" default:"inventory_session"`
	SessionCookieSecure      bool          `envconfig:"session_cookie_secure" default:"true"`
	MagicLinkTTL             time.Duration `envconfig:"magic_link_ttl" default:"15m"`

	InvitationLifetime time.Duration `envconfig:"invitation_lifetime" default:"168h"`
	SweepInterval      time.Duration `envconfig:"sweep_interval" default:"24h"`

	PasswordMinLength int `envconfig:"password_min_length" default:"12"`

	LoginRatePerSecond float64 `envconfig:"login_rate_per_second" default:"1"`
	LoginRateBurst     int     `envconfig:"login_rate_burst" default:"5"`

	CacheTTL time.Duration `envconfig:"cache_ttl" default:"30s"`
	// CacheSize bounds the in-process cache, unused with redis
	CacheSize int `envconfig:"cache_size" default:"10000"`

	PublicBaseURL      string   `envconfig:"public_base_url" default:"http://localhost:8080"`
	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`
}

// Redacted returns a copy safe to log: the redis password is masked and so is
// the DSN password, or the whole DSN when it is not in URL form.
func (s EnvSpec) Redacted() EnvSpec {
	out := s

	if out.RedisPassword != "" {
		out.RedisPassword = redacted
	}

	if out.DSN != "" {
		out.DSN = redacted
		if u, err := url.Parse(s.DSN); err == nil && u.Scheme != "" && u.Host != "" {
			if _, ok := u.User.Password(); ok {
				u.User = url.UserPassword(u.User.Username(), redacted)
			}
			u.RawQuery = redactQuery(u.Query())
			out.DSN = u.String()
		}
	}

	return out
}

func redactQuery(q url.Values) string {
	if q.Has("password") {
		q.Set("password", redacted)
	}
	return q.Encode()
}
