package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomUpper returns n characters drawn uniformly from [A-Z0-9].
func randomUpper(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(upperAlnum)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms
			panic(err)
		}
		b.WriteByte(upperAlnum[idx.Int64()])
	}
	return b.String()
}

// NewReservationID returns RES-<base36 unix millis, upper>-<4 [A-Z0-9]>.
// The id doubles as the payment account number given to the payer.
func NewReservationID(now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "RES-" + ts + "-" + randomUpper(4)
}

// NewRegistrationNumber returns AF-<yyyy>-<6 [A-Z0-9]>.
func NewRegistrationNumber(now time.Time) string {
	return "AF-" + strconv.Itoa(now.Year()) + "-" + randomUpper(6)
}
