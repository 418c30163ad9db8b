package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Strategy identifies how a page was (or should be) acquired.
type Strategy string

const (
	StrategyStatic   Strategy = "static"
	StrategyRendered Strategy = "rendered"
)

// Page is the raw result of fetching one listing page.
type Page struct {
	HTML     string
	Strategy Strategy
	FinalURL string
}

// Fetcher retrieves the HTML of a single URL. Implementations must be
// safe to call sequentially; they are not required to support concurrent
// fetches.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// ErrBlocked signals that the response indicates bot blocking (403/429,
// empty body, or a challenge page) rather than a plain network failure.
var ErrBlocked = errors.New("response indicates blocking")

// Error is the failure type returned by all fetchers. It records which
// strategy failed so callers can decide whether to escalate.
type Error struct {
	URL      string
	Strategy Strategy
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Strategy, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// challengeSignatures are lowercase substrings that mark an anti-bot
// interstitial rather than a real listing page.
var challengeSignatures = []string{
	"cf-challenge",
	"just a moment...",
	"captcha-delivery",
	"geo.captcha-delivery.com",
	"px-captcha",
	"access denied",
	"pardon our interruption",
}

// looksBlocked reports whether a 200-range response body is actually a
// bot-defense challenge page or an empty shell.
func looksBlocked(body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// blockedStatus reports whether an HTTP status code indicates bot blocking.
func blockedStatus(code int) bool {
	return code == 403 || code == 429
}
