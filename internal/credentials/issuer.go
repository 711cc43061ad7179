// Package credentials derives login handles and temporary secrets for newly
// provisioned principals.
package credentials

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	handleMaxLength  = 30
	handleMaxRetries = 100
	secretLength     = 8
)

// Character classes for temporary secrets. Visually ambiguous characters
// (0, 1, O, I, l) are excluded so secrets survive being read over the phone.
const (
	secretUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	secretLower  = "abcdefghijkmnpqrstuvwxyz"
	secretDigits = "23456789"
)

// HandleDirectory is the shared namespace of account handles.
type HandleDirectory interface {
	HandleTaken(ctx context.Context, handle string) (bool, error)
}

// HandleExhaustedError reports that every handle candidate up to the retry
// cap was taken.
type HandleExhaustedError struct {
	Base string
}

func (e *HandleExhaustedError) Error() string {
	return fmt.Sprintf("credentials: no free handle for base %q after %d attempts", e.Base, handleMaxRetries)
}

// Issuer derives unique handles and generates temporary secrets.
type Issuer struct {
	dir HandleDirectory
}

// NewIssuer creates an issuer over the given handle namespace.
func NewIssuer(dir HandleDirectory) *Issuer {
	return &Issuer{dir: dir}
}

// DeriveHandle builds a login handle from a full name: one token stands
// alone, two become first.last, three or more use the first and last token
// only.
func DeriveHandle(fullName string) string {
	normalized := stripDiacritics(strings.ToLower(strings.TrimSpace(fullName)))

	var b strings.Builder
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}

	tokens := strings.Fields(b.String())
	var handle string
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		handle = tokens[0]
	case 2:
		handle = tokens[0] + "." + tokens[1]
	default:
		handle = tokens[0] + "." + tokens[len(tokens)-1]
	}

	if len(handle) > handleMaxLength {
		handle = handle[:handleMaxLength]
	}
	return handle
}

// UniqueHandle returns base, or base with the smallest unused positive
// integer suffix, that is free in the account-handle namespace at call time.
func (i *Issuer) UniqueHandle(ctx context.Context, base string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("credentials: empty handle base")
	}

	for n := 0; n <= handleMaxRetries; n++ {
		candidate := base
		if n > 0 {
			candidate = base + strconv.Itoa(n)
		}
		taken, err := i.dir.HandleTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe handle %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", &HandleExhaustedError{Base: base}
}

// GenerateSecret produces an 8-character temporary secret with at least one
// uppercase letter, one lowercase letter and one digit, drawn from
// crypto/rand. The caller must hash it before storage.
func GenerateSecret() (string, error) {
	chars := make([]byte, 0, secretLength)

	for _, class := range []string{secretUpper, secretLower, secretDigits} {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	all := secretUpper + secretLower + secretDigits
	for len(chars) < secretLength {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Shuffle so the guaranteed classes do not sit in fixed positions.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

func pick(class string) (byte, error) {
	n, err := randInt(len(class))
	if err != nil {
		return 0, err
	}
	return class[n], nil
}

func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("read randomness: %w", err)
	}
	return int(n.Int64()), nil
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
