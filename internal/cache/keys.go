package cache

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func JobStatusKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

func CountryCodeKey(place string) string {
	return fmt.Sprintf("geo:cc:%s", strings.ToLower(strings.TrimSpace(place)))
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
