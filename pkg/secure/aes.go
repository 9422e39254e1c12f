package secure

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/msn-network/msn-go/pkg/mac"
)

// Frame layout sizes.
const (
	// KeySize is the length of a network key.
	KeySize = 16

	nonceSize = 4
	crcSize   = 2
	ivPrefix  = aes.BlockSize - nonceSize
)

const kdfInfo = "msn-payload-aes128-ctr"

// AESFramer encrypts payloads with AES-128-CTR and appends a CRC-16.
type AESFramer struct {
	block    cipher.Block
	prefix   [ivPrefix]byte
	maxFrame int
	rand     io.Reader
}

var _ Framer = (*AESFramer)(nil)

// NewAESFramer derives the payload key for pan from networkKey. maxFrame
// bounds the sealed frame length; zero selects mac.MaxMACPayloadSize.
func NewAESFramer(networkKey []byte, pan mac.PanID, maxFrame int) (*AESFramer, error) {
	if len(networkKey) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(networkKey), KeySize)
	}
	if maxFrame <= 0 {
		maxFrame = mac.MaxMACPayloadSize
	}

	var salt [2]byte
	binary.BigEndian.PutUint16(salt[:], uint16(pan))
	kdf := hkdf.New(sha256.New, networkKey, salt[:], []byte(kdfInfo))

	material := make([]byte, KeySize+ivPrefix)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, fmt.Errorf("derive payload key: %w", err)
	}

	block, err := aes.NewCipher(material[:KeySize])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	f := &AESFramer{block: block, maxFrame: maxFrame, rand: rand.Reader}
	copy(f.prefix[:], material[KeySize:])
	return f, nil
}

// Overhead returns the nonce and checksum length.
func (f *AESFramer) Overhead() int { return nonceSize + crcSize }

// Seal encrypts payload under a fresh nonce.
func (f *AESFramer) Seal(payload []byte) ([]byte, error) {
	if len(payload)+f.Overhead() > f.maxFrame {
		return nil, fmt.Errorf("%w: %d+%d > %d", ErrMaxSizeExceeded, len(payload), f.Overhead(), f.maxFrame)
	}

	frame := make([]byte, nonceSize+len(payload)+crcSize)
	if _, err := io.ReadFull(f.rand, frame[:nonceSize]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	f.stream(frame[:nonceSize]).XORKeyStream(frame[nonceSize:nonceSize+len(payload)], payload)

	body := frame[:nonceSize+len(payload)]
	binary.LittleEndian.PutUint16(frame[len(body):], CRC16(body))
	return frame, nil
}

// Open verifies the checksum of frame and decrypts it.
func (f *AESFramer) Open(frame []byte) ([]byte, error) {
	if len(frame) < f.Overhead() {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptData, len(frame))
	}

	body := frame[:len(frame)-crcSize]
	want := binary.LittleEndian.Uint16(frame[len(body):])
	if got := CRC16(body); got != want {
		return nil, fmt.Errorf("%w: checksum 0x%04X, want 0x%04X", ErrCorruptData, got, want)
	}

	payload := make([]byte, len(body)-nonceSize)
	f.stream(body[:nonceSize]).XORKeyStream(payload, body[nonceSize:])
	return payload, nil
}

func (f *AESFramer) stream(nonce []byte) cipher.Stream {
	var iv [aes.BlockSize]byte
	copy(iv[:ivPrefix], f.prefix[:])
	copy(iv[ivPrefix:], nonce)
	return cipher.NewCTR(f.block, iv[:])
}
