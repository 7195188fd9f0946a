package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// TransactionHash derives the deduplication key for an imported transaction.
// Two rows with the same date, amount and description are considered the
// same transaction regardless of source file.
func TransactionHash(date string, amount float64, description string) string {
	h := sha256.New()
	h.Write([]byte(date))
	h.Write([]byte(strconv.FormatFloat(amount, 'f', -1, 64)))
	h.Write([]byte(description))
	return hex.EncodeToString(h.Sum(nil))
}
