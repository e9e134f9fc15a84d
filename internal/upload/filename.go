package upload

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^\w\-.]`)
	filenameIDs = regexp.MustCompile(`^(\d+)-(\d+)\.(jpg|jpeg|png|webp)$`)
)

// SanitizeFilename reduz o nome enviado pelo cliente ao último segmento do
// caminho e remove todo caractere fora de [A-Za-z0-9_.-]. Resultado vazio cai
// no nome padrão com a extensão derivada do MIME.
func SanitizeFilename(name, ext string) string {
	if name == "" {
		return "upload." + ext
	}
	name = unsafeChars.ReplaceAllString(filepath.Base(name), "")
	if name == "" {
		return "upload." + ext
	}
	return name
}

// ExtractIDs reconhece nomes no padrão <registro>-<ponto>.<ext> e devolve os
// dois identificadores. Nomes fora do padrão não produzem nada; a função nunca
// falha e não faz E/S.
func ExtractIDs(name string) (int, int, bool) {
	m := filenameIDs.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, 0, false
	}
	registro, errReg := strconv.Atoi(m[1])
	ponto, errPonto := strconv.Atoi(m[2])
	if errReg != nil || errPonto != nil {
		return 0, 0, false
	}
	return registro, ponto, true
}
