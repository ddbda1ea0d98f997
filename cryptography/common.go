package cryptography

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// the key is fresh for every call because of the salt, so a constant
// counter start never repeats a key+iv pair.
var zeroIV = make([]byte, aes.BlockSize)

/*
 * Encrypt data with a key derived from password.
 * Output format: salt || AES-CTR(data)
 */
func Encrypt(data []byte, password string) ([]byte, error) {
	salt, err := GenRandom(SaltSize)
	if err != nil {
		return nil, err
	}
	stream, err := newStream(password, salt)
	if err != nil {
		return nil, err
	}
	out := make([]byte, SaltSize+len(data))
	copy(out, salt)
	stream.XORKeyStream(out[SaltSize:], data)
	return out, nil
}

// reverse function. CTR has no padding and no tag, so the only detectable
// failure is a message too short to hold the salt.
func Decrypt(data []byte, password string) ([]byte, error) {
	if len(data) < SaltSize {
		return nil, fmt.Errorf("ciphertext of %d bytes is shorter than the salt", len(data))
	}
	stream, err := newStream(password, data[:SaltSize])
	if err != nil {
		return nil, err
	}
	pt := make([]byte, len(data)-SaltSize)
	stream.XORKeyStream(pt, data[SaltSize:])
	return pt, nil
}

func newStream(password string, salt []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(DeriveKey([]byte(password), salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewCTR(block, zeroIV), nil
}

// derive encryption key from password.
func DeriveKey(password, saltBytes []byte) []byte {
	return pbkdf2.Key(password, saltBytes, KDFIterations, SymKeySize, sha1.New)
}

// generate a random amount of bytes
func GenRandom(size uint) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("[cryptography/common.go] GenRandom: Invalid size of random data")
	}
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return nil, err
	}
	return data, nil
}

// PasswordSeed turns a password into the 64 bit seed of the shuffling PRNG.
func PasswordSeed(password string) int64 {
	digest := md5.Sum([]byte(password))
	return int64(binary.BigEndian.Uint64(digest[:8]))
}
