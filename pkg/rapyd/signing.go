package rapyd

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const saltLength = 12

// signRequest produces the Rapyd HMAC signature for a request. The scheme is
// method + path + salt + timestamp + access_key + secret_key + body, HMAC-SHA256
// keyed with the secret, hex encoded, then base64 encoded.
func signRequest(method, path, salt, timestamp, accessKey, secretKey, body string) string {
	toSign := method + path + salt + timestamp + accessKey + secretKey + body
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(toSign))
	hexDigest := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(hexDigest))
}

func newSalt() (string, error) {
	buf := make([]byte, saltLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func unixTimestamp(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10)
}
