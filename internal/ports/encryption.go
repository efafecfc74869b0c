package ports

// EncryptionService encrypts access tokens before storage and decrypts
// them after retrieval.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
