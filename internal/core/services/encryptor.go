package services

import "profiled/internal/core/ports"

// NoopEncryptor is the placeholder Encryptor: it stores secret header values
// as-is. It keeps the encryption seam in place so a real cipher can be
// swapped in behind the same interface.
type NoopEncryptor struct{}

// NewNoopEncryptor returns the passthrough encryptor.
func NewNoopEncryptor() ports.Encryptor {
	return NoopEncryptor{}
}

func (NoopEncryptor) Encrypt(plaintext string) (string, error) {
	return plaintext, nil
}

func (NoopEncryptor) Decrypt(ciphertext string) (string, error) {
	return ciphertext, nil
}
