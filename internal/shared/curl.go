// Utilities for lifting a session out of a cURL command copied from the browser.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlURLRe    = regexp.MustCompile(`curl\s+(?:'([^']+)'|"([^"]+)"|(https?://\S+))`)
)

// CurlRequest holds the request URL and headers found in a cURL command.
//
// Header keys are lower-cased.
type CurlRequest struct {
	URL     string
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts the request.
func ParseCurlFile(path string) (*CurlRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts its URL and headers.
func ParseCurlCommand(cmd string) (*CurlRequest, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}

	if m := curlURLRe.FindStringSubmatch(cmd); m != nil {
		req.URL = firstNonEmpty(m[1:]...)
	}

	for _, m := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstNonEmpty(m[1:]...), ":")
		if !ok {
			continue
		}
		req.Headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if len(req.Headers) == 0 {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return req, nil
}

// BearerToken returns the token carried by the Authorization header.
func (r *CurlRequest) BearerToken() (string, error) {
	auth, ok := r.Headers["authorization"]
	if !ok {
		return "", fmt.Errorf("%w: no authorization header", ErrTokenNotFound)
	}

	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: authorization header is not a bearer token", ErrTokenNotFound)
	}
	return strings.TrimSpace(token), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
