package payload

import "strings"

// Format returns the QR content string for p. It never fails for the
// variants defined in this package; a nil payload yields ErrUnknownKind.
// Field values are written verbatim, without escaping.
func Format(p Payload) (string, error) {
	switch v := p.(type) {
	case URL:
		return v.URL, nil
	case WiFi:
		return "WIFI:T:" + string(v.Encryption) + ";S:" + v.SSID + ";P:" + v.Password + ";;", nil
	case VCard:
		return formatVCard(v), nil
	case SMS:
		return "SMSTO:" + v.Phone + ":" + v.Message, nil
	case *URL:
		if v != nil {
			return Format(*v)
		}
	case *WiFi:
		if v != nil {
			return Format(*v)
		}
	case *VCard:
		if v != nil {
			return Format(*v)
		}
	case *SMS:
		if v != nil {
			return Format(*v)
		}
	}
	return "", ErrUnknownKind
}

func formatVCard(v VCard) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + v.Name,
	}
	optional := []struct{ tag, value string }{
		{"ORG", v.Organization},
		{"TITLE", v.Title},
		{"TEL", v.Phone},
		{"EMAIL", v.Email},
	}
	for _, o := range optional {
		if o.value != "" {
			lines = append(lines, o.tag+":"+o.value)
		}
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}
