package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the webhook signature header name. The value carries a
// unix timestamp and an HMAC-SHA256 of "<timestamp>.<body>" keyed with the
// endpoint secret: "t=1693526400,v1=5257a86..."
const SignatureHeader = "X-Payment-Signature"

func ComputeSignature(secret []byte, t int64, body []byte) string {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(strconv.FormatInt(t, 10)))
	m.Write([]byte("."))
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}

func BuildSignatureHeader(secret []byte, t int64, body []byte) string {
	return "t=" + strconv.FormatInt(t, 10) + ",v1=" + ComputeSignature(secret, t, body)
}

// VerifySignature checks the signature header against the raw body. The
// timestamp bound rejects replayed deliveries outside maxSkew.
func VerifySignature(secret []byte, header string, body []byte, now time.Time, maxSkew time.Duration) error {
	t, sig, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	ts := time.Unix(t, 0)
	skew := now.Sub(ts)
	if skew < 0 {
		skew = -skew
	}
	if maxSkew > 0 && skew > maxSkew {
		return ErrSignatureInvalid
	}

	expected := ComputeSignature(secret, t, body)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrSignatureInvalid
	}
	return nil
}

func parseSignatureHeader(header string) (int64, string, error) {
	var (
		t   int64
		sig string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", ErrSignatureInvalid
			}
			t = parsed
		case "v1":
			sig = v
		}
	}
	if t == 0 || sig == "" {
		return 0, "", ErrSignatureInvalid
	}
	return t, sig, nil
}
