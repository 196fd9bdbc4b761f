package preprocess

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// metaLead starts every marker so the decode pass can tell meta lines from
// host code.
const metaLead = "@@"

// marker is the self-delimited encoding of one construct. Payloads are hex
// encoded so the comment and layout passes never see quotes, comment starters
// or newlines inside them.
type marker string

// sentinel returns the payload-less marker for name.
func sentinel(name string) string {
	return metaLead + name + metaLead
}

// prefix is the leading part every marker of this kind starts with.
func (m marker) prefix() string {
	return metaLead + string(m) + "["
}

func (m marker) encode(payload string) string {
	return m.prefix() + hex.EncodeToString([]byte(payload)) + "]" + metaLead
}

func (m marker) decode(line string) (string, error) {
	line = strings.TrimSpace(line)
	body := strings.TrimPrefix(line, m.prefix())
	if body == line || !strings.HasSuffix(body, "]"+metaLead) {
		return "", fmt.Errorf("malformed %s marker %q", string(m), line)
	}
	raw, err := hex.DecodeString(strings.TrimSuffix(body, "]"+metaLead))
	if err != nil {
		return "", fmt.Errorf("malformed %s marker %q: %w", string(m), line, err)
	}
	return string(raw), nil
}
