package payload

import (
	"errors"
	"strings"
	"testing"

	"github.com/prasetyowira/qrlink/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_URLUnchanged(t *testing.T) {
	urls := []string{
		"https://example.com",
		"https://example.com/path?q=1&r=a%20b#frag",
		"http://localhost:8080/",
		"mailto:someone@example.com",
	}
	for _, u := range urls {
		got, err := Format(URL{URL: u})
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
}

func TestFormat_WiFi(t *testing.T) {
	// Arrange
	p := WiFi{SSID: "Home", Password: "secret1", Encryption: EncryptionWPA}

	// Act
	got, err := Format(p)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "WIFI:T:WPA;S:Home;P:secret1;;", got)
}

func TestFormat_WiFiNoPass(t *testing.T) {
	for _, password := range []string{"", "ignored"} {
		got, err := Format(WiFi{SSID: "Cafe", Password: password, Encryption: EncryptionNone})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "WIFI:T:nopass;"), got)
	}
}

func TestFormat_WiFiWEP(t *testing.T) {
	got, err := Format(WiFi{SSID: "Old", Password: "abc", Encryption: EncryptionWEP})
	require.NoError(t, err)
	assert.Equal(t, "WIFI:T:WEP;S:Old;P:abc;;", got)
}

func TestFormat_VCardNameOnly(t *testing.T) {
	got, err := Format(VCard{Name: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nEND:VCARD", got)
}

func TestFormat_VCardPhoneAndEmail(t *testing.T) {
	got, err := Format(VCard{Name: "Jane Doe", Phone: "+15555550100", Email: "jane@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nTEL:+15555550100\nEMAIL:jane@example.com\nEND:VCARD", got)
	assert.Less(t, strings.Index(got, "TEL:"), strings.Index(got, "EMAIL:"))
	assert.NotContains(t, got, "ORG:")
	assert.NotContains(t, got, "TITLE:")
}

func TestFormat_VCardAllFields(t *testing.T) {
	got, err := Format(VCard{
		Name:         "Jane Doe",
		Phone:        "+15555550100",
		Email:        "jane@example.com",
		Organization: "Acme",
		Title:        "Engineer",
	})
	require.NoError(t, err)

	want := strings.Join([]string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:Jane Doe",
		"ORG:Acme",
		"TITLE:Engineer",
		"TEL:+15555550100",
		"EMAIL:jane@example.com",
		"END:VCARD",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormat_SMS(t *testing.T) {
	got, err := Format(SMS{Phone: "+15555550100"})
	require.NoError(t, err)
	assert.Equal(t, "SMSTO:+15555550100:", got)

	got, err = Format(SMS{Phone: "+15555550100", Message: "on my way"})
	require.NoError(t, err)
	assert.Equal(t, "SMSTO:+15555550100:on my way", got)
}

func TestFormat_Pointers(t *testing.T) {
	got, err := Format(&SMS{Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, "SMSTO:1:", got)

	var nilCard *VCard
	_, err = Format(nilCard)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFormat_Nil(t *testing.T) {
	_, err := Format(nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFormat_Idempotent(t *testing.T) {
	payloads := []Payload{
		URL{URL: "https://example.com"},
		WiFi{SSID: "Home", Password: "pw", Encryption: EncryptionWPA},
		VCard{Name: "Jane", Email: "j@example.com"},
		SMS{Phone: "123", Message: "hi"},
	}
	for _, p := range payloads {
		first, err := Format(p)
		require.NoError(t, err)
		second, err := Format(p)
		require.NoError(t, err)
		assert.Equal(t, first, second, p.Kind())
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"url":    KindURL,
		"WiFi":   KindWiFi,
		" vcard": KindVCard,
		"SMS":    KindSMS,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "email", "geo"} {
		_, err := ParseKind(in)
		assert.ErrorIs(t, err, ErrUnknownKind, in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		field   string
		message string
	}{
		{"empty url", URL{}, "url", constant.MsgURLEmpty},
		{"relative url", URL{URL: "/just/a/path"}, "url", constant.MsgURLInvalid},
		{"no scheme", URL{URL: "example.com"}, "url", constant.MsgURLInvalid},
		{"bad url", URL{URL: "http://exa mple.com"}, "url", constant.MsgURLInvalid},
		{"empty ssid", WiFi{Encryption: EncryptionWPA}, "ssid", constant.MsgSSIDEmpty},
		{"bad encryption", WiFi{SSID: "x", Encryption: "WPA3"}, "encryption", constant.MsgEncryptionInvalid},
		{"empty name", VCard{Phone: "1"}, "name", constant.MsgNameEmpty},
		{"empty phone", SMS{Message: "hi"}, "phone", constant.MsgPhoneEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
			assert.Equal(t, tt.message, ve.Message(tt.field))
		})
	}
}

func TestValidate_OK(t *testing.T) {
	valid := []Payload{
		URL{URL: "https://example.com"},
		WiFi{SSID: "Home", Encryption: EncryptionNone},
		VCard{Name: "Jane"},
		SMS{Phone: "+1"},
	}
	for _, p := range valid {
		assert.NoError(t, p.Validate(), p.Kind())
	}
}

func TestValidationError_Merge(t *testing.T) {
	ve := &ValidationError{}
	assert.Nil(t, ve.OrNil())

	assert.True(t, ve.Merge(nil))
	assert.True(t, ve.Merge(SMS{}.Validate()))
	assert.False(t, ve.Merge(errors.New("other")))

	require.Error(t, ve.OrNil())
	assert.Equal(t, "validation failed: phone: Phone number cannot be empty.", ve.Error())
}
