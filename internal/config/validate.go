package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/internal/logging"
)

var log = logging.L("config")

// ErrInvalidListenAddr marks the one validation failure that cannot be
// corrected by clamping.
var ErrInvalidListenAddr = errors.New("invalid listen_addr")

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

const (
	minInjectionTimeout = 10 * time.Millisecond
	maxInjectionTimeout = 5 * time.Second
)

// Validate checks the config for invalid values and returns all errors found.
// Out-of-range numbers are clamped; everything else is reported and left for
// the caller to decide.
func (c *Config) Validate() []error {
	var errs []error

	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		errs = append(errs, fmt.Errorf("%w %q: %v", ErrInvalidListenAddr, c.ListenAddr, err))
	}

	if c.InjectionTimeout < minInjectionTimeout {
		errs = append(errs, fmt.Errorf("injection_timeout %s is below minimum %s, clamping", c.InjectionTimeout, minInjectionTimeout))
		c.InjectionTimeout = minInjectionTimeout
	} else if c.InjectionTimeout > maxInjectionTimeout {
		errs = append(errs, fmt.Errorf("injection_timeout %s exceeds maximum %s, clamping", c.InjectionTimeout, maxInjectionTimeout))
		c.InjectionTimeout = maxInjectionTimeout
	}

	if c.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("queue_size %d is below minimum 1, clamping", c.QueueSize))
		c.QueueSize = 1
	} else if c.QueueSize > 10000 {
		errs = append(errs, fmt.Errorf("queue_size %d exceeds maximum 10000, clamping", c.QueueSize))
		c.QueueSize = 10000
	}

	if c.ReadLimit < 1024 {
		errs = append(errs, fmt.Errorf("read_limit %d is below minimum 1024, clamping", c.ReadLimit))
		c.ReadLimit = 1024
	}

	for _, s := range c.ICEServers {
		if !strings.HasPrefix(s, "stun:") && !strings.HasPrefix(s, "turn:") && !strings.HasPrefix(s, "turns:") {
			errs = append(errs, fmt.Errorf("ice server %q must use a stun:, turn: or turns: scheme", s))
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use console or json)", c.LogFormat))
	}

	for _, err := range errs {
		log.Warn("config validation", zap.Error(err))
	}

	return errs
}
