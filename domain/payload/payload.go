// Package payload builds the content strings encoded into QR symbols.
//
// A Payload is one of URL, WiFi, VCard or SMS. Format turns a payload into
// the text a phone's camera app understands: the raw URL, a WIFI: network
// string, a vCard 3.0 block, or an SMSTO: message.
package payload

import (
	"errors"
	"strings"
)

// Kind names a payload variant
type Kind string

const (
	KindURL   Kind = "url"
	KindWiFi  Kind = "wifi"
	KindVCard Kind = "vcard"
	KindSMS   Kind = "sms"
)

// ErrUnknownKind is returned for a missing or unsupported payload variant
var ErrUnknownKind = errors.New("unknown payload kind")

// ParseKind maps a wire name to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindURL, KindWiFi, KindVCard, KindSMS:
		return k, nil
	default:
		return "", ErrUnknownKind
	}
}

// Payload is implemented only by the variants in this package.
type Payload interface {
	Kind() Kind
	// Validate reports shape problems as a *ValidationError, or nil.
	Validate() error

	sealed()
}

// Encryption is the Wi-Fi authentication token placed in the T: field
type Encryption string

const (
	EncryptionWPA  Encryption = "WPA"
	EncryptionWEP  Encryption = "WEP"
	EncryptionNone Encryption = "nopass"
)

// URL encodes a link
type URL struct {
	URL string
}

// WiFi encodes network credentials
type WiFi struct {
	SSID       string
	Password   string
	Encryption Encryption
}

// VCard encodes a contact. Empty optional fields are left out.
type VCard struct {
	Name         string
	Phone        string
	Email        string
	Organization string
	Title        string
}

// SMS encodes a prefilled text message
type SMS struct {
	Phone   string
	Message string
}

func (URL) Kind() Kind   { return KindURL }
func (WiFi) Kind() Kind  { return KindWiFi }
func (VCard) Kind() Kind { return KindVCard }
func (SMS) Kind() Kind   { return KindSMS }

func (URL) sealed()   {}
func (WiFi) sealed()  {}
func (VCard) sealed() {}
func (SMS) sealed()   {}
