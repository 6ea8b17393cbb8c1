package util

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// GenerateOTP returns a six digit code drawn uniformly from
// [100000, 999999]. Codes never carry a leading zero, so the emailed value
// survives any client that strips them.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
