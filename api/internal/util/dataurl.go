package util

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// DefaultImageMIME is used when neither the data URL nor the bytes tell us the type.
const DefaultImageMIME = "image/jpeg"

// MakeDataURL builds data:<mime>;base64,<payload>.
func MakeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImageDataURL encodes raw image bytes, sniffing the MIME type.
func ImageDataURL(data []byte) string {
	return MakeDataURL(PickMIME("", "", data), data)
}

// DecodeBase64MaybeDataURL decodes base64. For a data: URI it also returns the MIME from the prefix.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, "", fmt.Errorf("data url without payload")
		}
		meta := s[len("data:"):idx] // "<mime>;base64"
		if semi := strings.IndexByte(meta, ';'); semi >= 0 {
			hintMIME = meta[:semi]
		} else {
			hintMIME = meta
		}
		s = s[idx+1:]
	}
	if s == "" {
		return nil, "", fmt.Errorf("empty image payload")
	}
	// standard first, then URL-safe and unpadded variants
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, hintMIME, nil
		}
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return nil, "", err
}

// PickMIME prefers the explicit MIME, then the data URL hint, then sniffs the bytes.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if len(data) > 0 {
		if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") || ct == "application/pdf" {
			return ct
		}
	}
	return DefaultImageMIME
}
