package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	credentialLength = 20

	credUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	credLower  = "abcdefghijkmnpqrstuvwxyz"
	credDigit  = "23456789"
	credSymbol = "!@#$%^&*"
)

// GenerateTemporaryCredential membuat credential sekali-pakai untuk admin
// baru (dikirim out-of-band). Dijamin mengandung huruf besar, kecil, angka,
// dan simbol supaya lolos syarat minimum provider. Jangan pernah di-log.
func GenerateTemporaryCredential() (string, error) {
	classes := []string{credUpper, credLower, credDigit, credSymbol}
	all := credUpper + credLower + credDigit + credSymbol

	buf := make([]byte, 0, credentialLength)

	// satu karakter dari tiap kelas dulu
	for _, class := range classes {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	for len(buf) < credentialLength {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	// fisher-yates biar kelas wajib tidak selalu di depan
	for i := len(buf) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("gagal generate credential: %w", err)
		}
		j := int(jBig.Int64())
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func randomChar(from string) (byte, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(from))))
	if err != nil {
		return 0, fmt.Errorf("gagal generate credential: %w", err)
	}
	return from[idx.Int64()], nil
}
