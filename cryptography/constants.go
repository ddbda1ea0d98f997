package cryptography

const (
	// bytes of random salt prepended to every ciphertext
	SaltSize = 16

	// AES-128, derived with PBKDF2-HMAC-SHA1
	SymKeySize    = 16
	KDFIterations = 65536
)
