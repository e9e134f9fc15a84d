package upload

import "errors"

var (
	// ErrMissingInput indica requisição sem filename ou data_url.
	ErrMissingInput = errors.New("filename e data_url são obrigatórios")
	// ErrInvalidEncoding indica data URL malformada ou base64 inválido.
	ErrInvalidEncoding = errors.New("data_url inválido")
	// ErrUnsupportedMediaType indica MIME fora da lista permitida.
	ErrUnsupportedMediaType = errors.New("mime não permitido")
	// ErrPayloadTooLarge indica imagem acima do tamanho máximo configurado.
	ErrPayloadTooLarge = errors.New("arquivo excede o tamanho máximo")
	// ErrInvalidIdentifier indica registro ou ponto inválido.
	ErrInvalidIdentifier = errors.New("identificador inválido")
	// ErrStorageWriteFailed indica falha de E/S ao persistir a imagem.
	ErrStorageWriteFailed = errors.New("erro ao salvar arquivo")
)
