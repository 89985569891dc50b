// Package secrets реализует симметричное шифрование SMTP-паролей для хранения в базе.
//
// Формат хранения: hex(iv) + ":" + hex(ciphertext), AES-256-CBC.
// Ключ — 64 hex-символа (256 бит) из конфигурации процесса.
// Пустая строка проходит без шифрования: Encrypt("") == "" и Decrypt("") == "".
package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Box хранит ключ шифрования и выполняет операции Encrypt/Decrypt.
type Box struct {
	key []byte
}

// NewBox создает Box из hex-ключа. Ключ должен содержать ровно 64 hex-символа.
func NewBox(hexKey string) (*Box, error) {
	const op = "secrets.NewBox"
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s: key must be 32 bytes, got %d", op, len(key))
	}
	return &Box{key: key}, nil
}

// Encrypt шифрует plaintext и возвращает строку вида hex(iv):hex(ciphertext).
// IV генерируется случайно, поэтому повторное шифрование одного и того же
// текста дает разный результат.
func (b *Box) Encrypt(plaintext string) (string, error) {
	const op = "secrets.Encrypt"
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt расшифровывает строку формата hex(iv):hex(ciphertext).
// Строка без ровно одного разделителя ":" считается некорректной.
func (b *Box) Decrypt(stored string) (string, error) {
	const op = "secrets.Decrypt"
	if stored == "" {
		return "", nil
	}

	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%s: invalid ciphertext format", op)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%s: invalid iv length %d", op, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%s: invalid ciphertext length %d", op, len(ciphertext))
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded data length %d", len(data))
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("broken padding")
		}
	}
	return data[:len(data)-padding], nil
}
