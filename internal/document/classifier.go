package document

import "strings"

// DefaultWindow 分类时检查的前缀字符数（按rune计）
const DefaultWindow = 500

// DocumentType 文书类型
type DocumentType string

const (
	TypePeticaoInicial DocumentType = "PETIÇÃO INICIAL"
	TypeContestacao    DocumentType = "CONTESTAÇÃO"
	TypeSentenca       DocumentType = "SENTENÇA"
	TypeDecisao        DocumentType = "DECISÃO"
	TypeDespacho       DocumentType = "DESPACHO"
	TypeAcordao        DocumentType = "ACÓRDÃO"
	TypeDocumento      DocumentType = "DOCUMENTO"
)

// classRule 分类规则，任一关键词命中即归为该类型
type classRule struct {
	keywords []string
	docType  DocumentType
}

// classRules 按优先级排列，先命中者生效
var classRules = []classRule{
	{keywords: []string{"PETIÇÃO", "EXCELENTÍSSIMO"}, docType: TypePeticaoInicial},
	{keywords: []string{"CONTESTAÇÃO"}, docType: TypeContestacao},
	{keywords: []string{"SENTENÇA"}, docType: TypeSentenca},
	{keywords: []string{"DECISÃO"}, docType: TypeDecisao},
	{keywords: []string{"DESPACHO", "CITE-SE"}, docType: TypeDespacho},
	{keywords: []string{"ACÓRDÃO"}, docType: TypeAcordao},
}

// Classifier 基于关键词的文书分类器
type Classifier struct {
	Window int
}

// NewClassifier 创建分类器，window<=0时使用默认值
func NewClassifier(window int) *Classifier {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Classifier{Window: window}
}

// Classify 根据文本开头判断文书类型
func (c *Classifier) Classify(text string) DocumentType {
	head := strings.ToUpper(prefixRunes(text, c.Window))
	for _, rule := range classRules {
		for _, kw := range rule.keywords {
			if strings.Contains(head, kw) {
				return rule.docType
			}
		}
	}
	return TypeDocumento
}

// prefixRunes 返回前n个字符
func prefixRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
