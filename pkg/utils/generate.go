package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== PDAO IDENTIFIERS ====================

const (
	UserIDPrefix = "PDAO"

	idSuffixLength = 5
	idAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateUserID returns PDAO-YYYYMMDD-XXXXX for the given day.
func GenerateUserID(now time.Time) string {
	return generatePrefixedID(UserIDPrefix, now)
}

func generatePrefixedID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), randomAlnum(idSuffixLength))
}

func randomAlnum(n int) string {
	max := big.NewInt(int64(len(idAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("read random: %v", err))
		}
		buf[i] = idAlphabet[idx.Int64()]
	}
	return string(buf)
}
