package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber builds a human-readable order identifier of the form
// {PREFIX}-{yyyyMMdd}-{8 uppercase alphanumerics}, e.g. ORD-20250901-3F2A9C1B.
func GenerateOrderNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix)
}

// GenerateCorrelationID returns a random UUID for event payloads.
func GenerateCorrelationID() string {
	return uuid.NewString()
}
