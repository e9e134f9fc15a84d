package util

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// RandomHex devolve n dígitos hexadecimais aleatórios derivados de um UUID
// v4. n deve estar entre 1 e 32.
func RandomHex(n int) string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:n]
}
