package upload

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// maxDataURLLen limita a string data_url crua, antes de qualquer
// decodificação, contra abuso por amplificação.
const maxDataURLLen = 50 << 20

var dataURLRe = regexp.MustCompile(`^data:([\w.+/-]+);base64,(.+)$`)

// allowedMIMEs mapeia cada MIME aceito para a extensão canônica.
var allowedMIMEs = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AllowedMIMETypes devolve os MIMEs aceitos em ordem estável.
func AllowedMIMETypes() []string {
	mimes := make([]string, 0, len(allowedMIMEs))
	for mime := range allowedMIMEs {
		mimes = append(mimes, mime)
	}
	sort.Strings(mimes)
	return mimes
}

// ExtForMIME devolve a extensão canônica de um MIME permitido.
func ExtForMIME(mime string) (string, bool) {
	ext, ok := allowedMIMEs[mime]
	return ext, ok
}

// DecodeDataURL valida e decodifica uma data URL base64, devolvendo o MIME
// normalizado e os bytes da imagem. maxBytes limita o tamanho decodificado.
// Função pura, sem efeitos colaterais.
func DecodeDataURL(dataURL string, maxBytes int64) (string, []byte, error) {
	if len(dataURL) > maxDataURLLen {
		return "", nil, fmt.Errorf("%w ou muito grande", ErrInvalidEncoding)
	}

	m := dataURLRe.FindStringSubmatch(dataURL)
	if m == nil {
		return "", nil, ErrInvalidEncoding
	}

	mime := strings.ToLower(m[1])
	if _, ok := allowedMIMEs[mime]; !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mime)
	}

	b64 := m[2]
	// O decodificador padrão ignora CR/LF; aqui nenhum caractere fora do
	// alfabeto base64 é tolerado.
	if strings.ContainsAny(b64, "\r\n") {
		return "", nil, fmt.Errorf("%w: base64 inválido", ErrInvalidEncoding)
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: base64 inválido", ErrInvalidEncoding)
	}

	if int64(len(raw)) > maxBytes {
		return "", nil, fmt.Errorf("%w (%d bytes)", ErrPayloadTooLarge, len(raw))
	}

	return mime, raw, nil
}
