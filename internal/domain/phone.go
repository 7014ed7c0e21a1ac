package domain

import (
	"fmt"
	"strings"
)

// Серверы WhatsApp, адресующие пользователя по номеру телефона
const (
	jidUserServer   = "s.whatsapp.net"
	jidLegacyServer = "c.us"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// NormalizePhone приводит номер к каноническому виду "+<цифры>"
// Пробелы, скобки и дефисы отбрасываются
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", NewValidationError(fmt.Sprintf("unexpected character %q in phone", r), "phoneNumber")
		}
	}

	digits := b.String()
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", NewValidationError("phone must contain 10-15 digits", "phoneNumber")
	}
	return "+" + digits, nil
}

// PhoneFromJID извлекает номер отправителя из адреса транспорта
// "77011234567@s.whatsapp.net" и "77011234567:12@s.whatsapp.net" дают "+77011234567".
// Группы, рассылки и скрытые идентификаторы номера не содержат.
func PhoneFromJID(jid string) (string, error) {
	user, server, ok := strings.Cut(jid, "@")
	if !ok {
		return NormalizePhone(jid)
	}
	if server != jidUserServer && server != jidLegacyServer {
		return "", NewValidationError("address is not phone based: "+server, "sender")
	}

	// отбрасываем номер устройства и агента
	if i := strings.IndexAny(user, ":."); i >= 0 {
		user = user[:i]
	}
	return NormalizePhone(user)
}

// PhoneDigits номер без плюса, как его ожидает транспорт
func PhoneDigits(phone string) string {
	return strings.TrimPrefix(phone, "+")
}

// PlaceholderEmail адрес-заглушка для клиента без email
func PlaceholderEmail(phone string) string {
	return "client-" + PhoneDigits(phone) + "@" + PlaceholderEmailDomain
}
