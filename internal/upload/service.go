package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/vistoriafacil/imagens/internal/storage"
	"github.com/vistoriafacil/imagens/internal/util"
)

// miscDir agrupa uploads sem registro conhecido.
const miscDir = "misc"

// publicPrefix é o prefixo sob o qual o exportador estático serve a raiz.
const publicPrefix = "/imagens"

// Input é o corpo aceito pelo POST /upload. Registro e Ponto são opcionais;
// quando ausentes podem ser recuperados do próprio nome do arquivo.
type Input struct {
	Filename string `json:"filename"`
	DataURL  string `json:"data_url"`
	Registro *int   `json:"registro"`
	Ponto    *int   `json:"ponto"`
}

// Result descreve o arquivo persistido e o link público correspondente.
type Result struct {
	Link     string `json:"link"`
	Mime     string `json:"mime"`
	Size     int    `json:"size"`
	Registro *int   `json:"registro"`
	Ponto    *int   `json:"ponto"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// Service orquestra a admissão de uploads: valida o corpo, decodifica o data
// URL, resolve diretório e nome sequencial e grava o arquivo no disco.
type Service struct {
	store    *storage.Disk
	maxBytes int64
}

// NewService monta o orquestrador sobre o armazenamento dado. maxBytes limita
// o tamanho da imagem decodificada.
func NewService(store *storage.Disk, maxBytes int64) *Service {
	return &Service{store: store, maxBytes: maxBytes}
}

// Process executa o pipeline completo para uma requisição de upload e devolve
// o resultado com o link absoluto construído sobre origin. Erros são sempre um
// dos sentinelas deste pacote ou storage.ErrNameSpaceExhausted.
func (s *Service) Process(ctx context.Context, origin string, in Input) (*Result, error) {
	if in.Filename == "" || in.DataURL == "" {
		return nil, ErrMissingInput
	}

	mime, data, err := DecodeDataURL(in.DataURL, s.maxBytes)
	if err != nil {
		return nil, err
	}
	ext, _ := ExtForMIME(mime)

	registro := in.Registro
	ponto := in.Ponto
	safeName := SanitizeFilename(in.Filename, ext)
	if reg, pt, ok := ExtractIDs(safeName); ok {
		// identificadores do corpo têm precedência sobre os do nome
		if registro == nil {
			registro = &reg
		}
		if ponto == nil {
			ponto = &pt
		}
	}
	if (registro != nil && *registro < 0) || (ponto != nil && *ponto < 0) {
		return nil, ErrInvalidIdentifier
	}

	var dir, prefix string
	if registro != nil {
		dir = strconv.Itoa(*registro)
		prefix = dir
	} else {
		dir = miscDir
		prefix = randomPrefix()
	}
	if err := s.store.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}

	var name string
	if ponto != nil {
		// honra o ponto pedido quando o nome exato ainda está livre
		tentative := fmt.Sprintf("%s-%d.%s", prefix, *ponto, ext)
		switch err := s.store.CreateNew(dir, tentative, data); {
		case err == nil:
			name = tentative
		case errors.Is(err, fs.ErrExist):
			name, err = s.allocateAndWrite(dir, prefix, ext, *ponto+1, data)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
		}
	} else {
		name, err = s.allocateAndWrite(dir, prefix, ext, 1, data)
		if err != nil {
			return nil, err
		}
	}

	relPath := path.Join(publicPrefix, dir, name)
	log.Info().
		Str("path", relPath).
		Str("link", origin+relPath).
		Str("mime", mime).
		Int("size", len(data)).
		Msg("upload: arquivo salvo")

	return &Result{
		Link:     origin + relPath,
		Mime:     mime,
		Size:     len(data),
		Registro: registro,
		Ponto:    ponto,
		Path:     relPath,
		Filename: name,
	}, nil
}

// allocateAndWrite aloca o próximo nome sequencial livre e grava com
// create-exclusive. Outro processo pode tomar o nome entre a sonda e a
// gravação; nesse caso o arquivo dele já ocupa o nome e a nova sonda segue
// adiante, então o laço sempre progride.
func (s *Service) allocateAndWrite(dir, prefix, ext string, start int, data []byte) (string, error) {
	for {
		name, err := s.store.NextSequentialName(dir, prefix, ext, start)
		if err != nil {
			return "", err
		}
		err = s.store.CreateNew(dir, name, data)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
		}
	}
}

// randomPrefix devolve oito dígitos hexadecimais aleatórios usados para
// agrupar uploads sem registro dentro de misc/.
func randomPrefix() string {
	return util.RandomHex(8)
}
