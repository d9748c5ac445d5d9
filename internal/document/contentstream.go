package document

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// pdfName 内容流中的名字对象（/F1 等）
type pdfName string

// kerningSpaceThreshold TJ数组中小于该值的位移视为单词间隔（千分之一文字空间单位）
const kerningSpaceThreshold = -200

// textState 文本绘制状态，只跟踪判断换行所需的纵坐标
type textState struct {
	curY         float64
	shownY       float64
	shown        bool
	pendingNL    bool
	pendingSpace bool
}

// decodeContentStream 解释PDF内容流中的文本操作符，返回保留换行的文本
// 支持 Tj TJ ' " T* Td TD Tm，纵坐标变化即视为换行
func decodeContentStream(data []byte) string {
	var sb strings.Builder
	var st textState
	var operands []interface{}

	show := func(raw []byte) {
		if st.shown {
			if st.pendingNL || st.curY != st.shownY {
				sb.WriteByte('\n')
			} else if st.pendingSpace {
				sb.WriteByte(' ')
			}
		}
		st.pendingNL, st.pendingSpace = false, false
		sb.WriteString(decodeWinAnsi(raw))
		st.shown = true
		st.shownY = st.curY
	}

	lex := &csLexer{data: data}
	for {
		value, op, ok := lex.next()
		if !ok {
			break
		}
		if op == "" {
			operands = append(operands, value)
			continue
		}

		switch op {
		case "BT":
			st.curY = 0
		case "Td", "TD":
			tx, ty := numberAt(operands, 2), numberAt(operands, 1)
			if ty != 0 {
				st.curY += ty
			} else if tx != 0 {
				st.pendingSpace = true
			}
		case "Tm":
			st.curY = numberAt(operands, 1)
		case "T*":
			st.pendingNL = true
		case "Tj":
			if s, ok := lastOperand(operands).([]byte); ok {
				show(s)
			}
		case "'":
			st.pendingNL = true
			if s, ok := lastOperand(operands).([]byte); ok {
				show(s)
			}
		case "\"":
			st.pendingNL = true
			if s, ok := lastOperand(operands).([]byte); ok {
				show(s)
			}
		case "TJ":
			if arr, ok := lastOperand(operands).([]interface{}); ok {
				for _, item := range arr {
					switch v := item.(type) {
					case []byte:
						show(v)
					case float64:
						if v < kerningSpaceThreshold {
							st.pendingSpace = true
						}
					}
				}
			}
		case "ID":
			lex.skipInlineImage()
		}
		operands = operands[:0]
	}

	return sb.String()
}

// decodeWinAnsi 按WinAnsi（cp1252）解码字符串字节
func decodeWinAnsi(raw []byte) string {
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func lastOperand(operands []interface{}) interface{} {
	if len(operands) == 0 {
		return nil
	}
	return operands[len(operands)-1]
}

// numberAt 返回倒数第n个操作数的数值
func numberAt(operands []interface{}, n int) float64 {
	if len(operands) < n {
		return 0
	}
	if v, ok := operands[len(operands)-n].(float64); ok {
		return v
	}
	return 0
}

// csLexer 内容流词法分析器
type csLexer struct {
	data []byte
	pos  int
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isPDFDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

// next 返回下一个操作数或操作符，op非空表示操作符
func (l *csLexer) next() (interface{}, string, bool) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.data) {
		return nil, "", false
	}

	c := l.data[l.pos]
	switch {
	case c == '(':
		return l.readLiteralString(), "", true
	case c == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.skipDict()
			return nil, "", true
		}
		return l.readHexString(), "", true
	case c == '[':
		l.pos++
		return l.readArray(), "", true
	case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
		l.pos++
		return nil, "", true
	case c == '/':
		l.pos++
		return pdfName(l.readRegular()), "", true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		word := l.readRegular()
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return f, "", true
		}
		return nil, word, true
	default:
		word := l.readRegular()
		if word == "" {
			l.pos++
			return nil, "", true
		}
		return nil, word, true
	}
}

func (l *csLexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isPDFSpace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *csLexer) readRegular() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// readLiteralString 读取(...)字符串，处理嵌套括号与转义
func (l *csLexer) readLiteralString() []byte {
	l.pos++ // (
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r', '\n':
				// 行连接
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// readHexString 读取<...>十六进制字符串
func (l *csLexer) readHexString() []byte {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isPDFSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// readArray 读取[...]数组，遇到操作符时忽略
func (l *csLexer) readArray() []interface{} {
	var items []interface{}
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.data) {
			return items
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return items
		}
		value, op, ok := l.next()
		if !ok {
			return items
		}
		if op == "" && value != nil {
			items = append(items, value)
		}
	}
}

// skipDict 跳过<<...>>字典
func (l *csLexer) skipDict() {
	depth := 0
	for l.pos+1 < len(l.data) {
		switch {
		case l.data[l.pos] == '<' && l.data[l.pos+1] == '<':
			depth++
			l.pos += 2
		case l.data[l.pos] == '>' && l.data[l.pos+1] == '>':
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
		case l.data[l.pos] == '(':
			l.readLiteralString()
		default:
			l.pos++
		}
	}
	l.pos = len(l.data)
}

// skipInlineImage 跳过内联图像数据直到EI
func (l *csLexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isPDFSpace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isPDFSpace(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}
