package helpdeskquery

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrMalformedToken = errors.New("повреждённый токен запроса")

// TokenPattern - допустимый вид токена в URL (base64, включая URL-безопасный алфавит).
var TokenPattern = regexp.MustCompile(`^(?:[A-Za-z0-9+/_-]{4})*(?:[A-Za-z0-9+/_-]{2}==|[A-Za-z0-9+/_-]{3}=)?$`)

func IsValidToken(token string) bool {
	return token != "" && TokenPattern.MatchString(token)
}

// Encode сериализует параметры в JSON и кодирует URL-безопасным base64.
func Encode(params QueryParams) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("не удалось сериализовать параметры запроса: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// Decode - обратная операция к Encode. Принимает и стандартный алфавит base64.
func Decode(token string) (QueryParams, error) {
	var params QueryParams

	normalized := strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimSpace(token))
	raw, err := base64.URLEncoding.DecodeString(normalized)
	if err != nil && !strings.Contains(normalized, "=") {
		raw, err = base64.RawURLEncoding.DecodeString(normalized)
	}
	if err != nil {
		return params, fmt.Errorf("%w: base64: %v", ErrMalformedToken, err)
	}

	if err := json.Unmarshal(raw, &params); err != nil {
		return params, fmt.Errorf("%w: json: %v", ErrMalformedToken, err)
	}
	return params, nil
}

// DecodeStored раскодирует токен из сохранённого запроса. Старые записи
// хранятся в виде b'...', обёртку отрезаем.
func DecodeStored(stored string) (QueryParams, error) {
	if strings.HasPrefix(stored, "b'") && len(stored) >= 3 {
		stored = stored[2 : len(stored)-1]
	}
	return Decode(stored)
}
