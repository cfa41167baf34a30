package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/pbkdf2"
)

// desktopSessionKey reads the Claude desktop app's session cookie. The app is
// Chromium-based: cookies live in a sqlite DB encrypted with a key derived
// from a password stored in the macOS keychain.
func desktopSessionKey() (string, error) {
	if runtime.GOOS != "darwin" {
		return "", fmt.Errorf("desktop cookie extraction only supported on macOS")
	}

	key, err := desktopEncryptionKey()
	if err != nil {
		return "", err
	}

	dbPath := filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Claude", "Cookies")
	if _, err := os.Stat(dbPath); err != nil {
		return "", fmt.Errorf("Claude desktop cookie DB not found: %w", err)
	}

	// The app may hold the DB open; query a private copy.
	tmp, err := copyToTemp(dbPath)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	db, err := sql.Open("sqlite3", tmp+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("opening cookie DB: %w", err)
	}
	defer db.Close()

	var encrypted []byte
	err = db.QueryRow(
		`SELECT encrypted_value FROM cookies WHERE host_key LIKE '%claude.ai%' AND name = 'sessionKey'`,
	).Scan(&encrypted)
	if err != nil {
		return "", fmt.Errorf("sessionKey cookie not found (is the desktop app logged in?): %w", err)
	}

	value, err := decryptCookie(encrypted, key)
	if err != nil {
		return "", fmt.Errorf("decrypting sessionKey: %w", err)
	}
	if !looksLikeSessionKey(value) {
		return "", fmt.Errorf("decrypted cookie does not look like a session key")
	}
	return value, nil
}

func desktopEncryptionKey() ([]byte, error) {
	out, err := exec.Command("security", "find-generic-password", "-w",
		"-s", "Claude Safe Storage", "-a", "Claude").Output()
	if err != nil {
		return nil, fmt.Errorf("keychain lookup failed: %w", err)
	}
	password := strings.TrimSpace(string(out))

	// Chromium's fixed KDF parameters for macOS safe storage.
	return pbkdf2.Key([]byte(password), []byte("saltysalt"), 1003, 16, sha1.New), nil
}

func copyToTemp(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading cookie DB: %w", err)
	}
	f, err := os.CreateTemp("", "tokenmeter-cookies-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp DB: %w", err)
	}
	name := f.Name()
	f.Close()
	if err := os.WriteFile(name, data, 0o600); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("writing temp DB: %w", err)
	}
	return name, nil
}

// decryptCookie undoes Chromium's v10 AES-128-CBC cookie encryption: a
// fixed all-spaces IV, PKCS7 padding, and a 32-byte integrity prefix on the
// plaintext.
func decryptCookie(encrypted, key []byte) (string, error) {
	if len(encrypted) < 3 || string(encrypted[:3]) != "v10" {
		return "", fmt.Errorf("unexpected cookie encryption version")
	}
	ciphertext := encrypted[3:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext not aligned to block size")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating AES cipher: %w", err)
	}

	iv := []byte("                ") // 16 spaces
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	if len(plaintext) == 0 {
		return "", fmt.Errorf("empty plaintext")
	}
	padLen := int(plaintext[len(plaintext)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(plaintext) {
		return "", fmt.Errorf("invalid PKCS7 padding")
	}
	plaintext = plaintext[:len(plaintext)-padLen]

	const integrityPrefixLen = 32
	if len(plaintext) <= integrityPrefixLen {
		return "", fmt.Errorf("decrypted value too short")
	}
	return string(plaintext[integrityPrefixLen:]), nil
}
