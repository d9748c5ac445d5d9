package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultWindow)

	tests := []struct {
		name string
		text string
		want DocumentType
	}{
		{"petition by keyword", "PETIÇÃO INICIAL\nAutor: Fulano", TypePeticaoInicial},
		{"petition by salutation", "Excelentíssimo Senhor Doutor Juiz de Direito", TypePeticaoInicial},
		{"defense", "CONTESTAÇÃO\nO réu vem apresentar", TypeContestacao},
		{"ruling", "Vistos.\nSENTENÇA\nJulgo procedente", TypeSentenca},
		{"decision", "DECISÃO INTERLOCUTÓRIA", TypeDecisao},
		{"dispatch", "DESPACHO\nIntime-se", TypeDespacho},
		{"cite-se is a dispatch", "Cite-se o réu.", TypeDespacho},
		{"appellate ruling", "ACÓRDÃO\nVistos, relatados e discutidos", TypeAcordao},
		{"fallback", "Certidão de intimação", TypeDocumento},
		{"empty", "", TypeDocumento},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	c := NewClassifier(DefaultWindow)

	// 请愿规则优先于判决
	assert.Equal(t, TypePeticaoInicial, c.Classify("SENTENÇA\nem resposta à petição"))
	assert.Equal(t, TypeContestacao, c.Classify("DESPACHO sobre a CONTESTAÇÃO"))
	assert.Equal(t, TypeSentenca, c.Classify("ACÓRDÃO que manteve a SENTENÇA"))
}

func TestClassifyWindow(t *testing.T) {
	c := NewClassifier(DefaultWindow)

	padding := strings.Repeat("x", DefaultWindow)
	assert.Equal(t, TypeDocumento, c.Classify(padding+"SENTENÇA"))

	// 窗口按字符计，多字节字符不会提前截断
	accented := strings.Repeat("ç", DefaultWindow-len([]rune("SENTENÇA")))
	assert.Equal(t, TypeSentenca, c.Classify(accented+"SENTENÇA"))

	small := NewClassifier(5)
	assert.Equal(t, TypeDocumento, small.Classify("abc DESPACHO"))
}

func TestNewClassifierDefault(t *testing.T) {
	assert.Equal(t, DefaultWindow, NewClassifier(0).Window)
}
