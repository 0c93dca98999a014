// package cookies implements the reversible token obfuscation used for cookie
// transport: AES-256-CBC with a fixed key and an all-zero IV.
//
// The scheme is deterministic: identical plaintext under the same key always
// yields identical ciphertext. That is acceptable here only because each
// [Crypt] instance is keyed per logical purpose and only ever encrypts
// short-lived, server-generated random tokens. Do not reuse this package for
// attacker-influenced plaintext; those need a random IV per message.
package cookies

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/desertthunder/youtubefy/internal/shared"
)

// Encoding names a text encoding applied to cipher input or output.
type Encoding string

const (
	Hex    Encoding = "hex"
	Base64 Encoding = "base64"
	Raw    Encoding = "raw"
)

const ivSize = 16

// Crypt encrypts and decrypts short tokens under a fixed 32-byte key.
type Crypt struct {
	key []byte
}

// New creates a [Crypt] from a 32-byte key given as a 64-character hex string.
func New(hexKey string) (*Crypt, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: cookie key is not valid hex: %v", shared.ErrCipherInit, err)
	}
	return NewFromBytes(key)
}

// NewFromBytes creates a [Crypt] from raw key bytes. Used for the one-time
// handshake key, which is generated as bytes rather than provisioned as hex.
func NewFromBytes(key []byte) (*Crypt, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: expected 32-byte key, got %d bytes", shared.ErrCipherInit, len(key))
	}
	return &Crypt{key: key}, nil
}

// Encrypt runs AES-256-CBC over input, reading it as from and rendering the
// ciphertext as to. Defaults in the session layer are hex in, base64 out.
func (c *Crypt) Encrypt(input string, from, to Encoding) (string, error) {
	plaintext, err := decode(input, from)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCipherInput, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCipherInit, err)
	}

	padded := pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, make([]byte, ivSize)).CryptBlocks(out, padded)

	return encode(out, to), nil
}

// Decrypt is the symmetric inverse of Encrypt. Wrong keys and malformed
// ciphertext both surface as a generic decryption failure; the cause is never
// distinguished for the caller.
func (c *Crypt) Decrypt(input string, from, to Encoding) (string, error) {
	ciphertext, err := decode(input, from)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrDecryptFailed, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCipherInit, err)
	}

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block-aligned", shared.ErrDecryptFailed)
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, make([]byte, ivSize)).CryptBlocks(out, ciphertext)

	unpadded, err := unpad(out, block.BlockSize())
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrDecryptFailed, err)
	}

	return encode(unpadded, to), nil
}

func decode(input string, enc Encoding) ([]byte, error) {
	switch enc {
	case Hex:
		return hex.DecodeString(input)
	case Base64:
		return base64.StdEncoding.DecodeString(input)
	case Raw:
		return []byte(input), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
}

func encode(data []byte, enc Encoding) string {
	switch enc {
	case Hex:
		return hex.EncodeToString(data)
	case Base64:
		return base64.StdEncoding.EncodeToString(data)
	default:
		return string(data)
	}
}

// pad applies PKCS#7 padding.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad strips PKCS#7 padding, rejecting malformed trailers.
func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}

	return data[:len(data)-n], nil
}
