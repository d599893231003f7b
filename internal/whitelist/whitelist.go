package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a caller number belongs to a trusted contact
type Checker struct {
	numbers map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(numbers []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(numbers))
	list := make([]string, 0, len(numbers))
	for _, number := range numbers {
		n := Normalize(number)
		if n == "" {
			continue
		}
		if _, ok := normalized[n]; !ok {
			list = append(list, n)
		}
		normalized[n] = struct{}{}
	}

	if len(list) > 0 && logger != nil {
		logger.Info("Initialized trusted caller list", zap.Strings("callers", list))
	}

	return &Checker{
		numbers: normalized,
		logger:  logger,
	}
}

// IsTrusted checks if the caller is in the whitelist
func (c *Checker) IsTrusted(caller string) bool {
	if len(c.numbers) == 0 {
		return false
	}

	n := Normalize(caller)
	if n == "" {
		return false
	}

	if _, ok := c.numbers[n]; ok {
		if c.logger != nil {
			c.logger.Debug("Caller is trusted", zap.String("caller", caller))
		}
		return true
	}
	return false
}

// Normalize strips formatting from a phone number, keeping digits and a
// leading plus sign
func Normalize(number string) string {
	number = strings.TrimSpace(number)
	var b strings.Builder
	for i, r := range number {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	n := b.String()
	if n == "+" {
		return ""
	}
	return n
}
