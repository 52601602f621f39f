// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/newsdesk/internal/model"
)

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login POSTs per second per client IP.
	IPRateLimit float64
	IPBurst     int

	// MaxFailedAttempts within AttemptWindow locks the username.
	MaxFailedAttempts int
	AttemptWindow     time.Duration

	// LockoutDuration doubles with every repeated lockout up to MaxLockout.
	LockoutDuration time.Duration
	MaxLockout      time.Duration

	// Audit receives lockout events. Optional.
	Audit AuditLogger

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		AttemptWindow:     15 * time.Minute,
		LockoutDuration:   15 * time.Minute,
		MaxLockout:        24 * time.Hour,
	}
}

// LoginStatus describes the lockout state of a username.
type LoginStatus struct {
	Locked       bool
	Remaining    time.Duration // time left on the lock, zero when unlocked
	AttemptsLeft int           // failures allowed before the next lock
}

// accountState tracks the recent failures of one username.
type accountState struct {
	failures    []time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection throttles login POSTs per client IP and locks usernames
// after repeated failed sign-ins. Usernames are compared case-insensitively
// so "Rita" and "rita" share one counter.
type LoginProtection struct {
	cfg        LoginProtectionConfig
	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*accountState

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoginProtection creates a LoginProtection and starts its cleanup loop.
// Zero config fields fall back to DefaultLoginProtectionConfig.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.MaxLockout < cfg.LockoutDuration {
		cfg.MaxLockout = max(def.MaxLockout, cfg.LockoutDuration)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	lp := &LoginProtection{
		cfg:        cfg,
		ipLimiters: newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts:   make(map[string]*accountState),
		stop:       make(chan struct{}),
	}
	go lp.cleanupLoop(10 * time.Minute)
	return lp
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (lp *LoginProtection) Stop() {
	lp.stopOnce.Do(func() { close(lp.stop) })
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Status reports whether username is locked and how many failures remain.
func (lp *LoginProtection) Status(username string) LoginStatus {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.statusLocked(lp.accounts[normalizeUsername(username)], lp.cfg.Clock())
}

// statusLocked computes the status of st at now. lp.mu must be held.
func (lp *LoginProtection) statusLocked(st *accountState, now time.Time) LoginStatus {
	if st == nil {
		return LoginStatus{AttemptsLeft: lp.cfg.MaxFailedAttempts}
	}
	if now.Before(st.lockedUntil) {
		return LoginStatus{Locked: true, Remaining: st.lockedUntil.Sub(now)}
	}
	recent := lp.recentFailures(st, now)
	return LoginStatus{AttemptsLeft: max(lp.cfg.MaxFailedAttempts-recent, 0)}
}

// recentFailures drops failures older than the attempt window and returns
// how many are left. lp.mu must be held.
func (lp *LoginProtection) recentFailures(st *accountState, now time.Time) int {
	cutoff := now.Add(-lp.cfg.AttemptWindow)
	kept := st.failures[:0]
	for _, at := range st.failures {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	st.failures = kept
	return len(kept)
}

// Fail records a failed sign-in for username from r and returns the new
// status. Reaching MaxFailedAttempts locks the username and writes an
// audit event.
func (lp *LoginProtection) Fail(r *http.Request, username string) LoginStatus {
	key := normalizeUsername(username)
	now := lp.cfg.Clock()

	lp.mu.Lock()
	st := lp.accounts[key]
	if st == nil {
		st = &accountState{}
		lp.accounts[key] = st
	}
	if now.Before(st.lockedUntil) {
		status := lp.statusLocked(st, now)
		lp.mu.Unlock()
		return status
	}

	st.failures = append(st.failures, now)
	if lp.recentFailures(st, now) < lp.cfg.MaxFailedAttempts {
		status := lp.statusLocked(st, now)
		lp.mu.Unlock()
		return status
	}

	lockFor := lp.lockoutFor(st.lockouts)
	st.lockedUntil = now.Add(lockFor)
	st.lockouts++
	st.failures = st.failures[:0]
	lockouts := st.lockouts
	lp.mu.Unlock()

	lp.recordLockout(r, key, lockFor, lockouts)
	return LoginStatus{Locked: true, Remaining: lockFor}
}

// lockoutFor returns the lock length after n previous lockouts.
func (lp *LoginProtection) lockoutFor(n int) time.Duration {
	d := lp.cfg.LockoutDuration
	for range n {
		d *= 2
		if d >= lp.cfg.MaxLockout {
			return lp.cfg.MaxLockout
		}
	}
	return d
}

func (lp *LoginProtection) recordLockout(r *http.Request, username string, lockFor time.Duration, lockouts int) {
	ip := getClientIP(r)
	slog.Warn("account locked after failed logins",
		"username", username,
		"ip", ip,
		"lockouts", lockouts,
		"duration", lockFor,
	)
	if lp.cfg.Audit == nil {
		return
	}
	_ = lp.cfg.Audit.LogAuthEvent(r.Context(), model.EventLevelWarning, "Account locked after failed logins", nil, ip, map[string]any{
		"username":         username,
		"lockouts":         lockouts,
		"duration_seconds": int64(lockFor.Seconds()),
	})
}

// Succeed clears the failure history of username. Earlier lockouts still
// count towards the backoff while the entry is tracked.
func (lp *LoginProtection) Succeed(username string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if st, ok := lp.accounts[normalizeUsername(username)]; ok {
		st.failures = nil
		if st.lockouts == 0 {
			delete(lp.accounts, normalizeUsername(username))
		}
	}
}

func (lp *LoginProtection) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			lp.prune()
		case <-lp.stop:
			return
		}
	}
}

// prune forgets usernames that are unlocked and have no recent failures,
// and resets the IP limiters once they pile up.
func (lp *LoginProtection) prune() {
	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared login IP rate limiters due to size")
	}

	now := lp.cfg.Clock()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, st := range lp.accounts {
		if now.Before(st.lockedUntil) || now.Sub(st.lockedUntil) < lp.cfg.AttemptWindow {
			continue
		}
		if lp.recentFailures(st, now) == 0 {
			delete(lp.accounts, key)
		}
	}
}

// Middleware rate limits login POSTs per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip)
				retry := max(int(1/lp.cfg.IPRateLimit), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, "Too many login attempts. Please wait a moment and try again.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the client address, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
