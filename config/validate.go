package config

import (
	"fmt"
	"net"
	"strings"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateJwt(&cfg.Jwt); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateScheduler(&cfg.Scheduler); err != nil {
		return fmt.Errorf("scheduler config validation failed: %w", err)
	}
	if err := validateRateLimits(&cfg.RateLimits); err != nil {
		return fmt.Errorf("rate limits config validation failed: %w", err)
	}
	if cfg.Smtp.Enabled {
		if err := validateSmtp(&cfg.Smtp); err != nil {
			return fmt.Errorf("smtp config validation failed: %w", err)
		}
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// If only a port is provided (e.g., ":8080"), it defaults the host to "localhost".
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		if strings.HasPrefix(server.Addr, ":") {
			port = strings.TrimPrefix(server.Addr, ":")
			host = "localhost"
		} else {
			return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
		}
	}

	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	return nil
}

func validateJwt(jwt *Jwt) error {
	if len(jwt.AuthSecret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 characters, got %d", len(jwt.AuthSecret))
	}
	if jwt.AuthTokenDuration.Duration <= 0 {
		return fmt.Errorf("auth token duration must be positive")
	}
	return nil
}

func validateScheduler(s *Scheduler) error {
	if s.Interval.Duration <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if s.MaxJobsPerTick < 1 {
		return fmt.Errorf("max jobs per tick must be at least 1")
	}
	if s.ConcurrencyMultiplier < 1 {
		return fmt.Errorf("concurrency multiplier must be at least 1")
	}
	return nil
}

// validateRateLimits ensures every cooldown window is positive. Cooldown
// bucket computation divides by the window, so a zero or negative value
// would panic at request time.
func validateRateLimits(r *RateLimits) error {
	windows := map[string]Duration{
		"email verification cooldown": r.EmailVerificationCooldown,
		"password reset cooldown":     r.PasswordResetCooldown,
		"magic link cooldown":         r.MagicLinkCooldown,
		"otp cooldown":                r.OtpCooldown,
		"email change cooldown":       r.EmailChangeCooldown,
	}
	for name, d := range windows {
		if d.Duration <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d.Duration)
		}
	}
	return nil
}

func validateSmtp(s *Smtp) error {
	if s.Host == "" {
		return fmt.Errorf("smtp host cannot be empty when smtp is enabled")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", s.Port)
	}
	if s.FromAddress == "" {
		return fmt.Errorf("smtp from address cannot be empty when smtp is enabled")
	}
	return nil
}
