// Package webhook authenticates and decodes GitHub webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v82/github"
)

// Header names carried by every delivery.
const (
	SignatureHeader = gh.SHA256SignatureHeader
	EventHeader     = gh.EventTypeHeader
	DeliveryHeader  = gh.DeliveryIDHeader
)

var (
	// ErrAuthentication is the parent of every signature failure.
	ErrAuthentication = errors.New("webhook authentication failed")

	// ErrMissingSignature indicates the delivery carried no signature header.
	ErrMissingSignature = fmt.Errorf("%w: missing signature", ErrAuthentication)

	// ErrInvalidSignature indicates the signature did not match the body.
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrAuthentication)
)

// Verify checks that signature is the "sha256=<hex>" HMAC of body under secret.
// The digest comparison runs in constant time.
func Verify(body []byte, signature string, secret []byte) error {
	if signature == "" {
		return ErrMissingSignature
	}
	if err := gh.ValidateSignature(signature, body, secret); err != nil {
		return fmt.Errorf("%w (%v)", ErrInvalidSignature, err)
	}
	return nil
}

// Sign returns the signature header value GitHub would send for body.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
