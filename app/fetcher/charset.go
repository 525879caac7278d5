package fetcher

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// DecodeHTML converts an HTML body to UTF-8 using the Content-Type header,
// a BOM or <meta charset>, in that order.
func DecodeHTML(body []byte, contentType string) ([]byte, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return body, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s page: %w", name, err)
	}

	return decoded, nil
}
