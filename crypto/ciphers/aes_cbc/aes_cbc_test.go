package aes_cbc_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/mxmauro/cryptoservice/crypto/ciphers/aes_cbc"
	"github.com/mxmauro/cryptoservice/models"
)

// -----------------------------------------------------------------------------

var (
	testKey = []byte("0123456789ABCDEF")
	testIV  = []byte("0123456789ABCDEF")

	testPlainText = []byte("Hello world!")
)

// -----------------------------------------------------------------------------

func TestAesCbc(t *testing.T) {
	t.Log("Creating cipher")
	c, err := aes_cbc.NewFromKey(testKey, testIV)
	if err != nil {
		t.Fatal(err)
	}
	if c.KeyLen() != 16 {
		t.Fatalf("unexpected key length %d", c.KeyLen())
	}

	t.Log("Encrypting 'Hello world!'")
	encryptedData, err := c.Encrypt(testPlainText)
	if err != nil {
		t.Fatal(err)
	}
	if len(encryptedData) != aes_cbc.BlockSize {
		t.Fatalf("unexpected ciphertext length %d", len(encryptedData))
	}

	t.Log("Decrypting encrypted data")
	decryptedData, err := c.Decrypt(encryptedData)
	if err != nil {
		t.Fatal(err)
	}

	t.Log("Verifying if decrypted data matches")
	if !bytes.Equal(decryptedData, testPlainText) {
		t.Fatalf("decrypted data does not match test plain text")
	}
}

func TestKnownVectors(t *testing.T) {
	vectors := []struct {
		name      string
		key       string
		plaintext string
		expected  string
	}{
		{
			name:     "AES-128 empty plaintext",
			key:      "0123456789ABCDEF",
			expected: "12e26d8e62f7fe20f61d87d1d52c8eea",
		},
		{
			name:      "AES-128 block aligned plaintext",
			key:       "0123456789ABCDEF",
			plaintext: "0123456789abcdef",
			expected:  "b241d7578a3b5dfb6824d2eb09f1d6facb902ba36a0a4b384d81b13c5df4b0eb",
		},
		{
			name:      "AES-192",
			key:       "0123456789ABCDEF01234567",
			plaintext: "Hello Gamers!!!",
			expected:  "1fe3e9913836913b2a23f6c212b6660f",
		},
		{
			name:      "AES-256",
			key:       "0123456789ABCDEF0123456789ABCDEF",
			plaintext: "Hello Gamers!!!",
			expected:  "281f1c825defe726aa1d01885ad7abfb",
		},
	}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			c, err := aes_cbc.NewFromKey([]byte(v.key), testIV)
			if err != nil {
				t.Fatal(err)
			}

			encryptedData, err := c.Encrypt([]byte(v.plaintext))
			if err != nil {
				t.Fatal(err)
			}
			if hex.EncodeToString(encryptedData) != v.expected {
				t.Fatalf("unexpected ciphertext %x", encryptedData)
			}

			decryptedData, err := c.Decrypt(encryptedData)
			if err != nil {
				t.Fatal(err)
			}
			if string(decryptedData) != v.plaintext {
				t.Fatalf("decrypted data does not match plain text")
			}
		})
	}
}

func TestBlockAlignment(t *testing.T) {
	c, err := aes_cbc.NewFromKey(testKey, testIV)
	if err != nil {
		t.Fatal(err)
	}

	t.Log("Encrypting plaintexts from 0 to 100 bytes long")
	for size := 0; size <= 100; size++ {
		plaintext := bytes.Repeat([]byte{byte(size)}, size)

		encryptedData, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatal(err)
		}
		if len(encryptedData)%aes_cbc.BlockSize != 0 {
			t.Fatalf("ciphertext of %d bytes is not block aligned", size)
		}
		if len(encryptedData) < size+1 || len(encryptedData) > size+aes_cbc.BlockSize {
			t.Fatalf("unexpected ciphertext length %d for %d bytes", len(encryptedData), size)
		}

		decryptedData, err := c.Decrypt(encryptedData)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decryptedData, plaintext) {
			t.Fatalf("round trip of %d bytes failed", size)
		}
	}
	t.Log("    Success!")
}

func TestInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
		iv   []byte
	}{
		{name: "15 bytes key", key: make([]byte, 15), iv: testIV},
		{name: "17 bytes key", key: make([]byte, 17), iv: testIV},
		{name: "nil key", key: nil, iv: testIV},
		{name: "15 bytes iv", key: testKey, iv: make([]byte, 15)},
		{name: "nil iv", key: testKey, iv: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := aes_cbc.NewFromKey(tt.key, tt.iv)
			if err == nil {
				t.Fatal("unexpected success")
			}
			if !errors.Is(err, models.ErrInvalidParameters) {
				t.Fatal("unexpected error:", err)
			}
		})
	}
}

func TestMisalignedCiphertext(t *testing.T) {
	c, err := aes_cbc.NewFromKey(testKey, testIV)
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range []int{0, 1, 15, 17, 31} {
		_, err = c.Decrypt(make([]byte, size))
		if err == nil {
			t.Fatalf("unexpected success decrypting %d bytes", size)
		}
		if !errors.Is(err, models.ErrInvalidParameters) {
			t.Fatal("unexpected error:", err)
		}
	}
}

func TestBadPadding(t *testing.T) {
	c, err := aes_cbc.NewFromKey(testKey, testIV)
	if err != nil {
		t.Fatal(err)
	}

	lastBlocks := [][]byte{
		// Padding length 0.
		make([]byte, aes_cbc.BlockSize),
		// Padding length 17.
		bytes.Repeat([]byte{0x11}, aes_cbc.BlockSize),
		// Inconsistent padding bytes.
		append(bytes.Repeat([]byte{'A'}, 13), 0x03, 0x02, 0x03),
		// Full block of padding with a wrong first byte.
		append([]byte{'A'}, bytes.Repeat([]byte{0x10}, 15)...),
	}

	for idx, lastBlock := range lastBlocks {
		// Encrypt without padding so the decrypted block is exactly lastBlock.
		block, _ := aes.NewCipher(testKey)
		ciphertext := make([]byte, len(lastBlock))
		cipher.NewCBCEncrypter(block, testIV).CryptBlocks(ciphertext, lastBlock)

		_, err = c.Decrypt(ciphertext)
		if err == nil {
			t.Fatalf("unexpected success on case #%d", idx)
		}
		if !errors.Is(err, models.ErrServiceError) {
			t.Fatalf("unexpected error on case #%d: %v", idx, err)
		}
	}
}

func TestRandomIV(t *testing.T) {
	t.Log("Creating cipher with a deterministic random source")
	c, err := aes_cbc.NewWithRandomIV(testKey, bytes.NewReader([]byte("fedcba9876543210")))
	if err != nil {
		t.Fatal(err)
	}

	encryptedData, err := c.Encrypt([]byte("hello world!!"))
	if err != nil {
		t.Fatal(err)
	}
	if hex.EncodeToString(encryptedData) != hex.EncodeToString([]byte("fedcba9876543210"))+"47004fa6efa341e2b544086f7a6cb758" {
		t.Fatalf("unexpected envelope %x", encryptedData)
	}

	decryptedData, err := c.Decrypt(encryptedData)
	if err != nil {
		t.Fatal(err)
	}
	if string(decryptedData) != "hello world!!" {
		t.Fatal("decrypted data does not match plain text")
	}

	t.Log("Checking the random source is exhausted")
	_, err = c.Encrypt(testPlainText)
	if !errors.Is(err, models.ErrServiceError) {
		t.Fatal("unexpected error:", err)
	}

	t.Log("Checking a single block envelope is rejected")
	_, err = c.Decrypt(encryptedData[:aes_cbc.BlockSize])
	if !errors.Is(err, models.ErrInvalidParameters) {
		t.Fatal("unexpected error:", err)
	}
}

func TestRandomIVProducesDistinctCiphertexts(t *testing.T) {
	c, err := aes_cbc.NewWithRandomIV(testKey, nil)
	if err != nil {
		t.Fatal(err)
	}

	encryptedData1, err := c.Encrypt(testPlainText)
	if err != nil {
		t.Fatal(err)
	}
	encryptedData2, err := c.Encrypt(testPlainText)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(encryptedData1, encryptedData2) {
		t.Fatal("ciphertexts must differ")
	}

	for _, encryptedData := range [][]byte{encryptedData1, encryptedData2} {
		decryptedData, err := c.Decrypt(encryptedData)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decryptedData, testPlainText) {
			t.Fatal("decrypted data does not match test plain text")
		}
	}
}

func TestNewFromParameters(t *testing.T) {
	_, err := aes_cbc.NewFromParameters(models.CipherParameters{
		Key:      testKey,
		IV:       testIV,
		RandomIV: true,
	})
	if !errors.Is(err, models.ErrInvalidParameters) {
		t.Fatal("unexpected error:", err)
	}

	c, err := aes_cbc.NewFromParameters(models.CipherParameters{
		Key: testKey,
		IV:  testIV,
	})
	if err != nil {
		t.Fatal(err)
	}
	encryptedData, err := c.Encrypt(nil)
	if err != nil {
		t.Fatal(err)
	}
	if hex.EncodeToString(encryptedData) != "12e26d8e62f7fe20f61d87d1d52c8eea" {
		t.Fatalf("unexpected ciphertext %x", encryptedData)
	}
}

func TestKeyIsCopied(t *testing.T) {
	key := []byte("0123456789ABCDEF")
	iv := []byte("0123456789ABCDEF")

	c, err := aes_cbc.NewFromKey(key, iv)
	if err != nil {
		t.Fatal(err)
	}

	// Mutating the caller buffers must not affect the engine.
	key[0] = 'X'
	iv[0] = 'X'

	encryptedData, err := c.Encrypt(nil)
	if err != nil {
		t.Fatal(err)
	}
	if hex.EncodeToString(encryptedData) != "12e26d8e62f7fe20f61d87d1d52c8eea" {
		t.Fatalf("unexpected ciphertext %x", encryptedData)
	}
}

func TestConcurrentUse(t *testing.T) {
	c, err := aes_cbc.NewFromKey(testKey, testIV)
	if err != nil {
		t.Fatal(err)
	}

	expected, err := c.Encrypt(testPlainText)
	if err != nil {
		t.Fatal(err)
	}

	wg := sync.WaitGroup{}
	errCh := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				encryptedData, err := c.Encrypt(testPlainText)
				if err != nil {
					errCh <- err
					return
				}
				if !bytes.Equal(encryptedData, expected) {
					errCh <- errors.New("ciphertext mismatch")
					return
				}
				if _, err = c.Decrypt(encryptedData); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err = range errCh {
		t.Fatal(err)
	}
}
