package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Order numbers look like NC-20250131-007: a fixed prefix, the calendar date,
// and a 3-digit sequence that resets every day.
const orderNumberPrefix = "NC"

// BuildOrderNumber formats an order number for the given date and sequence.
func BuildOrderNumber(date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", orderNumberPrefix, date.Format("20060102"), seq)
}

// NextSequence derives the next daily sequence from the last assigned order
// number. An empty or malformed previous number falls back to sequence 1.
func NextSequence(lastOrderNumber string) int {
	if lastOrderNumber == "" {
		return 1
	}
	parts := strings.Split(lastOrderNumber, "-")
	lastSeq, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 1
	}
	return lastSeq + 1
}
