// Package auth verifies that the invoking caller controls an address.
// The ledger core only ever asks "is the caller this address"; how the
// proof works is the verifier's business.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Domenick1991/flightledger/internal/domain"
)

// Verifier resolves a bearer token to the address its holder controls.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Address, error)
}

type callerKey struct{}

// WithCaller records the authenticated caller on the context.
func WithCaller(ctx context.Context, addr domain.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, addr)
}

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(ctx context.Context) (domain.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(domain.Address)
	return addr, ok
}

// RequireCaller checks that the context was authenticated as addr.
func RequireCaller(ctx context.Context, addr domain.Address) error {
	caller, ok := CallerFrom(ctx)
	if !ok || caller != addr {
		return domain.ErrUnauthorized
	}
	return nil
}

// HMACVerifier accepts tokens of the form "<address>.<hex signature>"
// where the signature is HMAC-SHA256 of the address under a shared
// secret. It stands in for the host's cryptographic identity check.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, token string) (domain.Address, error) {
	addr, sig, found := strings.Cut(token, ".")
	if !found || addr == "" {
		return "", domain.ErrUnauthorized
	}
	want := v.sign(addr)
	got, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(got, want) {
		return "", domain.ErrUnauthorized
	}
	return domain.Address(addr), nil
}

// TokenFor issues a token for addr. Used by tests and local tooling.
func (v *HMACVerifier) TokenFor(addr domain.Address) string {
	return string(addr) + "." + hex.EncodeToString(v.sign(string(addr)))
}

func (v *HMACVerifier) sign(addr string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(addr))
	return mac.Sum(nil)
}

var _ Verifier = (*HMACVerifier)(nil)
