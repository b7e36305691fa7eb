// Package batch drives sets of independent generation jobs against a
// rate-limited external API. It owns retry policy, pacing, durable
// progress state, and crash recovery for a run.
package batch

import (
	"context"
	"errors"
	"strings"

	"charsmith/internal/core/domain"
)

// Classify maps a job failure to transient or permanent. Pure and
// deterministic; used by the retry loop and by end-of-batch reporting.
func Classify(err error) domain.ErrorCategory {
	if err == nil {
		return domain.CategoryTransient // should not happen
	}

	// A timed-out attempt is retryable; an operator cancel is not.
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.CategoryTransient
	}
	if errors.Is(err, context.Canceled) {
		return domain.CategoryPermanent
	}

	s := err.Error()
	sLower := strings.ToLower(s)

	// Transient (network and upstream-availability issues)
	if strings.Contains(sLower, "timeout") || strings.Contains(sLower, "timed out") ||
		strings.Contains(sLower, "connection refused") ||
		strings.Contains(sLower, "connection reset") ||
		strings.Contains(sLower, "broken pipe") ||
		strings.Contains(sLower, "temporarily unavailable") ||
		strings.Contains(sLower, "unexpected eof") {
		return domain.CategoryTransient
	}

	// Transient (explicit rate-limit signal)
	if strings.Contains(s, "429") || strings.Contains(sLower, "too many requests") ||
		strings.Contains(sLower, "rate limit") ||
		strings.Contains(sLower, "overloaded") {
		return domain.CategoryTransient
	}

	// Transient (upstream 5xx)
	if strings.Contains(s, "500") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "504") ||
		strings.Contains(sLower, "internal server error") ||
		strings.Contains(sLower, "bad gateway") ||
		strings.Contains(sLower, "service unavailable") {
		return domain.CategoryTransient
	}

	// Default to permanent (auth failures, malformed requests,
	// content validation)
	return domain.CategoryPermanent
}
