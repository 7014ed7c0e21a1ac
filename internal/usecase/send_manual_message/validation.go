package send_manual_message

import (
	"strings"
	"unicode/utf8"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (phone, text string, err error) {
	var fields []string

	phone, err = domain.NormalizePhone(req.Phone)
	if err != nil {
		fields = append(fields, "phoneNumber")
	}

	text = strings.TrimSpace(req.Text)
	if text == "" || utf8.RuneCountInString(text) > domain.MaxManualMessageLength {
		fields = append(fields, "text")
	}

	if req.HandleID != nil && *req.HandleID <= 0 {
		fields = append(fields, "handleId")
	}

	if len(fields) > 0 {
		return "", "", domain.NewValidationError("invalid manual message", fields...)
	}
	return phone, text, nil
}
