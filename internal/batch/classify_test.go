package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"charsmith/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		expect domain.ErrorCategory
	}{
		{errors.New("connection timeout"), domain.CategoryTransient},
		{errors.New("request timed out"), domain.CategoryTransient},
		{errors.New("connection refused"), domain.CategoryTransient},
		{errors.New("connection reset by peer"), domain.CategoryTransient},
		{errors.New("rate limited (429), retry after: 30"), domain.CategoryTransient},
		{errors.New("429 Too Many Requests"), domain.CategoryTransient},
		{errors.New("upstream is overloaded"), domain.CategoryTransient},
		{errors.New("generation API returned 500 Internal Server Error: boom"), domain.CategoryTransient},
		{errors.New("generation API returned 503 Service Unavailable: maintenance"), domain.CategoryTransient},
		{errors.New("service temporarily unavailable"), domain.CategoryTransient},
		{errors.New("unexpected EOF"), domain.CategoryTransient},
		{errors.New("generation API returned 401 Unauthorized: bad key"), domain.CategoryPermanent},
		{errors.New("generation API returned 400 Bad Request: malformed"), domain.CategoryPermanent},
		{errors.New("generation returned no content"), domain.CategoryPermanent},
		{errors.New("empty seed"), domain.CategoryPermanent},
		{context.DeadlineExceeded, domain.CategoryTransient},
		{context.Canceled, domain.CategoryPermanent},
		{fmt.Errorf("generation call: %w", context.DeadlineExceeded), domain.CategoryTransient},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.expect {
			t.Errorf("Classify(%q) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}
