package cookies

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/desertthunder/youtubefy/internal/shared"
)

const testKey = "c648004afc22e25698391a0addc7c3939863f280dcf338b76acf4ae04ca8f228"

func newTestCrypt(t *testing.T) *Crypt {
	t.Helper()
	c, err := New(testKey)
	if err != nil {
		t.Fatalf("failed to create crypt: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	t.Run("ValidHexKey", func(t *testing.T) {
		if _, err := New(testKey); err != nil {
			t.Errorf("expected valid key, got %v", err)
		}
	})

	t.Run("MalformedHex", func(t *testing.T) {
		_, err := New("not-hex")
		if !errors.Is(err, shared.ErrCipherInit) {
			t.Errorf("expected ErrCipherInit, got %v", err)
		}
	})

	t.Run("WrongKeyLength", func(t *testing.T) {
		_, err := New("abcdef")
		if !errors.Is(err, shared.ErrCipherInit) {
			t.Errorf("expected ErrCipherInit, got %v", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	c := newTestCrypt(t)

	t.Run("DefaultEncodings", func(t *testing.T) {
		token := make([]byte, 32)
		rand.Read(token)
		plaintext := hex.EncodeToString(token)

		encrypted, err := c.Encrypt(plaintext, Hex, Base64)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}

		decrypted, err := c.Decrypt(encrypted, Base64, Hex)
		if err != nil {
			t.Fatalf("decrypt failed: %v", err)
		}

		if decrypted != plaintext {
			t.Errorf("round trip mismatch: %s != %s", decrypted, plaintext)
		}
	})

	t.Run("RawEncodings", func(t *testing.T) {
		payload := `{"token":"abc","userUUID":"u-1"}`

		encrypted, err := c.Encrypt(payload, Raw, Base64)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}

		decrypted, err := c.Decrypt(encrypted, Base64, Raw)
		if err != nil {
			t.Fatalf("decrypt failed: %v", err)
		}

		if decrypted != payload {
			t.Errorf("round trip mismatch: %s != %s", decrypted, payload)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := c.Encrypt("deadbeef", Hex, Base64)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}

		second, err := c.Encrypt("deadbeef", Hex, Base64)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}

		if first != second {
			t.Error("fixed-IV encryption should be byte-identical across calls")
		}
	})
}

func TestDecryptFailures(t *testing.T) {
	c := newTestCrypt(t)

	t.Run("MalformedCiphertext", func(t *testing.T) {
		_, err := c.Decrypt("%%%not-base64%%%", Base64, Hex)
		if !errors.Is(err, shared.ErrDecryptFailed) {
			t.Errorf("expected ErrDecryptFailed, got %v", err)
		}
	})

	t.Run("TruncatedCiphertext", func(t *testing.T) {
		_, err := c.Decrypt("YWJj", Base64, Hex)
		if !errors.Is(err, shared.ErrDecryptFailed) {
			t.Errorf("expected ErrDecryptFailed, got %v", err)
		}
	})

	t.Run("WrongKeyIsGenericFailure", func(t *testing.T) {
		encrypted, err := c.Encrypt("deadbeefdeadbeef", Hex, Base64)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}

		otherKey := make([]byte, 32)
		rand.Read(otherKey)
		other, err := NewFromBytes(otherKey)
		if err != nil {
			t.Fatalf("failed to create crypt: %v", err)
		}

		decrypted, err := other.Decrypt(encrypted, Base64, Hex)
		if err == nil && decrypted == "deadbeefdeadbeef" {
			t.Error("wrong key should not recover the plaintext")
		}
		// a padding error is surfaced as the generic decryption failure
		if err != nil && !errors.Is(err, shared.ErrDecryptFailed) {
			t.Errorf("expected ErrDecryptFailed, got %v", err)
		}
	})
}
