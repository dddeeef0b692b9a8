package entity

import (
	"fmt"
	"strings"
)

// Credential is one account's login pair. Both fields are secrets; only
// the masked identifier is ever printed.
type Credential struct {
	Identifier string
	Secret     string
}

func (c Credential) Masked() string {
	return MaskIdentifier(c.Identifier)
}

func (c Credential) String() string {
	return c.Masked()
}

func (c Credential) GoString() string {
	return fmt.Sprintf("entity.Credential{Identifier: %q}", c.Masked())
}

const maskVisiblePrefix = 3

// MaskIdentifier keeps a short prefix and the @domain part, if any.
func MaskIdentifier(identifier string) string {
	if identifier == "" {
		return "***"
	}

	local, domain := identifier, ""
	if at := strings.LastIndex(identifier, "@"); at > 0 {
		local, domain = identifier[:at], identifier[at:]
	}

	runes := []rune(local)
	keep := maskVisiblePrefix
	if len(runes) <= keep {
		keep = 1
	}

	return string(runes[:keep]) + "***" + domain
}

// ParseCredentials reads "id1:secret1,id2:secret2". Each entry is split on
// its first colon, so identifiers cannot contain ':' while secrets can.
// Entries without a colon or with an empty side are skipped.
func ParseCredentials(raw string) []Credential {
	var creds []Credential
	for _, entry := range strings.Split(raw, ",") {
		id, secret, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		id, secret = strings.TrimSpace(id), strings.TrimSpace(secret)
		if id == "" || secret == "" {
			continue
		}
		creds = append(creds, Credential{Identifier: id, Secret: secret})
	}
	return creds
}
