package document

import (
	"math"
	"regexp"
	"sort"
	"unicode/utf8"
)

const (
	SystemGeneric = "GENERIC_JUDICIAL"
	SystemUnknown = "UNKNOWN"

	// minDetectableLength 文本短于该长度时不做识别
	minDetectableLength = 100
	// minConfidence 低于该置信度视为未识别
	minConfidence = 40
	// genericConfidence 仅检测到ICP-Brasil签名时的置信度
	genericConfidence = 50
)

// systemProfile 电子诉讼系统的特征
type systemProfile struct {
	Code        string
	Name        string
	Priority    int
	MinMatches  int
	Description string
	signatures  []*regexp.Regexp
}

// SystemScore 单个系统的评分
type SystemScore struct {
	System        string `json:"system"`
	Name          string `json:"name"`
	Confidence    int    `json:"confidence"`
	Matches       int    `json:"matches"`
	TotalPatterns int    `json:"total_patterns"`
}

// SystemDetection 识别结果
type SystemDetection struct {
	System     string        `json:"system"`
	Name       string        `json:"name"`
	Confidence int           `json:"confidence"`
	Reason     string        `json:"reason,omitempty"`
	ICPMatches int           `json:"icp_matches,omitempty"`
	Candidates []SystemScore `json:"candidates,omitempty"`
}

func mustCompileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile("(?i)" + e)
	}
	return out
}

// systemProfiles 按声明顺序参与评分，同分时靠前者优先
var systemProfiles = []systemProfile{
	{
		Code: "STF", Name: "STF (Supremo Tribunal Federal)", Priority: 1, MinMatches: 2,
		Description: "e-STF com assinatura PKCS7",
		signatures: mustCompileAll(
			`supremo\s+tribunal\s+federal`,
			`e-stf`,
			`portal\.stf\.jus\.br`,
			`peticionamento\s+eletr[oô]nico\s+stf`,
			`resolu[cç][aã]o\s+stf\s+693`,
			`pkcs\s*[#]?\s*7`,
			`projeto\s+victor`,
		),
	},
	{
		Code: "STJ", Name: "STJ (Superior Tribunal de Justiça)", Priority: 1, MinMatches: 2,
		Description: "e-STJ com elementos de validação",
		signatures: mustCompileAll(
			`superior\s+tribunal\s+de\s+justi[cç]a`,
			`e-stj`,
			`www\.stj\.jus\.br`,
			`central\s+do\s+processo\s+eletr[oô]nico`,
			`resolu[cç][aã]o\s+stj/gp\s+10`,
			`autentique\s+em:\s*https?://www\.stj\.jus\.br/validar`,
		),
	},
	{
		Code: "PJE", Name: "PJE (Processo Judicial Eletrônico)", Priority: 2, MinMatches: 2,
		Description: "PJE com códigos de verificação alfanuméricos",
		signatures: mustCompileAll(
			`processo\s+judicial\s+eletr[oô]nico`,
			`\bpje\b`,
			`resolu[cç][aã]o\s+cnj\s+281`,
			`documento\s+assinado\s+por.*e\s+certificado\s+digitalmente\s+por`,
			`c[oó]digo\s+de\s+verifica[cç][aã]o:\s*[A-Z0-9]{4}\.[0-9]{4}\.[0-9]X{2}[0-9]\.[X0-9]{4}`,
			`este\s+documento\s+foi\s+gerado\s+pelo\s+usu[aá]rio\s+\d{3}\.\d{3}\.\d{3}-\d{2}`,
			`trt\d+\.jus\.br/pje`,
			`trf\d+\.jus\.br/pje`,
		),
	},
	{
		Code: "ESAJ", Name: "ESAJ (Sistema de Automação da Justiça)", Priority: 2, MinMatches: 2,
		Description: "ESAJ com selo lateral e QR code",
		signatures: mustCompileAll(
			`e-saj`,
			`\besaj\b`,
			`softplan`,
			`portal\s+e-saj`,
			`confer[eê]ncia\s+de\s+documento\s+digital`,
			`tjsp\.jus\.br.*esaj`,
			`tjce\.jus\.br.*esaj`,
			`tjam\.jus\.br.*esaj`,
			`tjms\.jus\.br.*esaj`,
			`resolu[cç][aã]o\s+.*552/11`,
		),
	},
	{
		Code: "EPROC", Name: "EPROC (Sistema de Processo Eletrônico)", Priority: 2, MinMatches: 2,
		Description: "EPROC com assinatura destacada (.p7s)",
		signatures: mustCompileAll(
			`\beproc\b`,
			`sistema\s+de\s+processo\s+eletr[oô]nico`,
			`trf4\.jus\.br.*eproc`,
			`trf2\.jus\.br.*eproc`,
			`trf6\.jus\.br.*eproc`,
			`tjrs\.jus\.br.*eproc`,
			`tjsc\.jus\.br.*eproc`,
			`\.p7s`,
			`cades`,
			`assinatura\s+destacada`,
		),
	},
	{
		Code: "PROJUDI", Name: "PROJUDI (Processo Judicial Digital)", Priority: 3, MinMatches: 2,
		Description: "PROJUDI com variações regionais",
		signatures: mustCompileAll(
			`projudi`,
			`processo\s+judicial\s+digital`,
			`tjba\.jus\.br.*projudi`,
			`tjce\.jus\.br.*projudi`,
			`tjpr\.jus\.br.*projudi`,
			`tjmg\.jus\.br.*projudi`,
			`vers[aã]o\s+1\.\d+`,
			`assinador\s+livre`,
			`universidade\s+federal\s+de\s+campina\s+grande`,
		),
	},
}

// icpBrasilSignatures ICP-Brasil通用签名特征，不指向具体系统
var icpBrasilSignatures = mustCompileAll(
	`icp-brasil`,
	`certificado\s+digital`,
	`assinado\s+digitalmente`,
	`pades|cades|xades`,
	`ac\s+[a-z]+`,
	`iti\s+-\s+instituto\s+nacional\s+de\s+tecnologia\s+da\s+informa[cç][aã]o`,
)

// SystemDetector 识别生成PDF的电子诉讼系统
// 结果仅作为元数据，不影响分段与清洗
type SystemDetector struct{}

// NewSystemDetector 创建系统识别器
func NewSystemDetector() *SystemDetector {
	return &SystemDetector{}
}

// Detect 根据全文特征识别系统
func (d *SystemDetector) Detect(text string) SystemDetection {
	if utf8.RuneCountInString(text) < minDetectableLength {
		return SystemDetection{
			System: SystemUnknown,
			Name:   "Sistema Desconhecido",
			Reason: "text too short for detection",
		}
	}

	scores := make([]SystemScore, 0, len(systemProfiles))
	for _, p := range systemProfiles {
		scores = append(scores, scoreProfile(p, text))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Confidence > scores[j].Confidence
	})

	top := scores[0]
	if top.Confidence < minConfidence {
		if icp := countMatches(icpBrasilSignatures, text); icp >= 2 {
			return SystemDetection{
				System:     SystemGeneric,
				Name:       "Sistema Judicial Genérico (ICP-Brasil)",
				Confidence: genericConfidence,
				Reason:     "ICP-Brasil signatures found without a specific system",
				ICPMatches: icp,
				Candidates: scores,
			}
		}
		return SystemDetection{
			System:     SystemUnknown,
			Name:       "Sistema Desconhecido",
			Reason:     "no judicial system signature detected",
			Candidates: scores,
		}
	}

	if len(scores) > 3 {
		scores = scores[:3]
	}
	return SystemDetection{
		System:     top.System,
		Name:       top.Name,
		Confidence: top.Confidence,
		Candidates: scores,
	}
}

// SupportedSystems 返回支持识别的系统代码
func SupportedSystems() []string {
	codes := make([]string, len(systemProfiles))
	for i, p := range systemProfiles {
		codes[i] = p.Code
	}
	return codes
}

func scoreProfile(p systemProfile, text string) SystemScore {
	matches := countMatches(p.signatures, text)
	total := len(p.signatures)

	confidence := 0.0
	if matches >= p.MinMatches {
		confidence = 40 + float64(matches)/float64(total)*60
		if p.Priority == 1 {
			confidence = math.Min(100, confidence+10)
		}
		if matches > p.MinMatches {
			confidence = math.Min(100, confidence+float64(matches-p.MinMatches)*5)
		}
	}

	return SystemScore{
		System:        p.Code,
		Name:          p.Name,
		Confidence:    int(math.Round(confidence)),
		Matches:       matches,
		TotalPatterns: total,
	}
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	count := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			count++
		}
	}
	return count
}
