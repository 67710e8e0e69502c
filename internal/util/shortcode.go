package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// DefaultCodeLength длина генерируемого кода по умолчанию.
const DefaultCodeLength = 8

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	alphabetSize = big.NewInt(int64(len(alphabet)))
	customCodeRe = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)
)

// GenerateCode возвращает случайный алфавитно-цифровой код длины n.
// Уникальность не гарантируется, её проверяет хранилище при вставке.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		n = DefaultCodeLength
	}
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// CodeGenerator генерирует коды фиксированной длины.
type CodeGenerator struct {
	Length int
}

// NewCodeGenerator создаёт генератор; длина <= 0 заменяется на DefaultCodeLength.
func NewCodeGenerator(length int) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &CodeGenerator{Length: length}
}

// NewCode генерирует очередной код.
func (g *CodeGenerator) NewCode() (string, error) {
	return GenerateCode(g.Length)
}

// IsValidCustomCode проверяет пользовательский код: 6–8 латинских букв или цифр.
func IsValidCustomCode(code string) bool {
	return customCodeRe.MatchString(code)
}
