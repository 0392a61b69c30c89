package hunyuan

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// TC3-HMAC-SHA256 request signing for Tencent Cloud APIs.
// https://cloud.tencent.com/document/api/1668/88065

const (
	signAlgorithm = "TC3-HMAC-SHA256"
	signService   = "aiart"
	signedHeaders = "content-type;host;x-tc-action"
	contentType   = "application/json; charset=utf-8"
)

// authorization computes the Authorization header for one API call.
func authorization(secretID, secretKey, host, action string, payload []byte, now time.Time) string {
	date := now.UTC().Format("2006-01-02")

	canonicalHeaders := strings.Join([]string{
		"content-type:" + contentType,
		"host:" + host,
		"x-tc-action:" + strings.ToLower(action),
	}, "\n") + "\n"
	hashedPayload := hexSHA256(payload)
	canonicalRequest := strings.Join([]string{
		"POST",
		"/",
		"",
		canonicalHeaders,
		signedHeaders,
		hashedPayload,
	}, "\n")

	credentialScope := fmt.Sprintf("%s/%s/tc3_request", date, signService)
	stringToSign := strings.Join([]string{
		signAlgorithm,
		fmt.Sprintf("%d", now.Unix()),
		credentialScope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	secretDate := hmacSHA256([]byte("TC3"+secretKey), date)
	secretService := hmacSHA256(secretDate, signService)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signAlgorithm, secretID, credentialScope, signedHeaders, signature)
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}
