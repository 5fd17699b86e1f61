package service

import (
	"regexp"
	"strings"
)

// ParsedSubjectRow 科目解析的瞬态输出行（仅在一次导入会话内存在）
type ParsedSubjectRow struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ── 科目行解析词表与模式 ──

// 整行噪音词表（大小写不敏感，精确匹配）
var subjectNoiseLines = map[string]struct{}{
	"study type":           {},
	"status":               {},
	"assessor":             {},
	"completed studies":    {},
	"no completed studies": {},
	"kpl":                  {},
	"course category":      {},
	"course implementations": {},
	"course progress":      {},
	"course name":          {},
	"other":                {},
}

// 课程代码形态：
//   - 两位以上字母数字 + 两位以上数字 + 若干字母数字（5G00DL86、NN00FC85）
//   - 或 一位数字 + 七位字母数字（5G00DL86 的另一种命中路径）
//   - 可选 -3014 形式的实施批次后缀
//
// 有效长度 5~16 字符（含后缀）。
var subjectCodeRegex = regexp.MustCompile(`(?i)\b(?:[A-Z0-9]{2,}\d{2,}[A-Z0-9]+|\d[A-Z0-9]{7})(?:-\d{3,5})?\b`)

// 续行起始连接词：以这些词开头的无代码短行视为上一行名称的延续
var continuationConnectors = map[string]struct{}{
	"and": {}, "or": {}, "of": {}, "to": {}, "for": {},
	"in": {}, "on": {}, "with": {}, "the": {}, "a": {}, "an": {},
}

var (
	// 进度标记探测：百分比、complete/completed（续行判定用，位置不限）
	progressMarkerRegex = regexp.MustCompile(`(?i)\b\d{1,3}\s*%(\s*complete[d]?)?\b|\bcomplete[d]?\b`)
	// 名称清洗只剥离末尾的进度标记，"Complete Analysis" 这类课程名不受影响
	trailingProgressRegex = regexp.MustCompile(`(?i)(?:(?:\b\d{1,3}\s*%(?:\s*complete[d]?)?|\bcomplete[d]?)[\s\-~@]*)+$`)
	// 多列续行按 2 个以上空格分列
	columnGapRegex = regexp.MustCompile(`\s{2,}`)
	// 字母探测（区分 CODE NAME 与 NAME CODE 布局）
	letterRegex = regexp.MustCompile(`[A-Za-z]`)
)

// subjectParser 科目行解析状态机：
// 单趟前向扫描，仅回看上一次发射的行（续行合并）。
type subjectParser struct {
	rows []ParsedSubjectRow
	// 上一个代码行发射的行数（多列续行需要按列右对齐回填）
	lastEmitCount int
}

// ParseSubjectsFromText 从粘贴文本提取科目 (name, code) 行。
// 兼容 \n 与 \r\n 换行；任何输入都不会失败，最差情况返回空结果。
func ParseSubjectsFromText(input string) []ParsedSubjectRow {
	p := &subjectParser{}
	for _, line := range splitLines(input) {
		p.feed(line)
	}
	return dedupeSubjectRows(p.rows)
}

func splitLines(input string) []string {
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	return strings.Split(normalized, "\n")
}

func (p *subjectParser) feed(rawLine string) {
	line := strings.TrimSpace(rawLine)
	if line == "" {
		return
	}
	if _, noise := subjectNoiseLines[strings.ToLower(line)]; noise {
		return
	}

	codes := findSubjectCodes(line)
	switch len(codes) {
	case 0:
		p.feedCodeless(line)
	case 1:
		p.emit(p.pairSingleCode(line, codes[0]))
		p.lastEmitCount = 1
	default:
		pairs := p.pairMultiCode(line, codes)
		for _, row := range pairs {
			p.emit(row)
		}
		p.lastEmitCount = len(pairs)
	}
}

// codeMatch 行内的一处代码命中及其位置
type codeMatch struct {
	code  string
	start int
	end   int
}

func findSubjectCodes(line string) []codeMatch {
	locs := subjectCodeRegex.FindAllStringIndex(line, -1)
	matches := make([]codeMatch, 0, len(locs))
	for _, loc := range locs {
		token := line[loc[0]:loc[1]]
		if len(token) < 5 || len(token) > 16 {
			continue
		}
		matches = append(matches, codeMatch{
			code:  strings.ToUpper(token),
			start: loc[0],
			end:   loc[1],
		})
	}
	return matches
}

// feedCodeless 处理无代码行：多列续行回填 → 单行续行合并 → 首行名称兜底 → 丢弃
func (p *subjectParser) feedCodeless(line string) {
	// 上一个代码行发射了多行时，按视觉列间隙切分并右对齐回填
	if p.lastEmitCount > 1 && p.appendMultiColumnContinuation(line) {
		return
	}

	if len(p.rows) > 0 && looksLikeNameFragment(line) {
		last := len(p.rows) - 1
		merged := p.rows[last].Name + " " + line
		p.rows[last].Name = collapseSpaces(merged)
		return
	}

	if len(p.rows) == 0 {
		name := cleanSubjectName(line)
		if len(name) > 3 {
			p.rows = append(p.rows, ParsedSubjectRow{Name: name, Code: ""})
			p.lastEmitCount = 1
		}
		return
	}
	// 既不是续行也不是首行名称，丢弃
}

// appendMultiColumnContinuation 多列表格的折行：
// 切分出的 ≤k 个块按右对齐追加到末尾 k 行的名称上。
// 超过 k 个块说明不是续行，返回 false 交由常规路径处理。
func (p *subjectParser) appendMultiColumnContinuation(line string) bool {
	chunks := columnGapRegex.Split(line, -1)
	cleaned := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 || len(cleaned) > p.lastEmitCount {
		return false
	}

	offset := p.lastEmitCount - len(cleaned)
	base := len(p.rows) - p.lastEmitCount
	for i, chunk := range cleaned {
		idx := base + offset + i
		if idx < 0 || idx >= len(p.rows) {
			continue
		}
		p.rows[idx].Name = collapseSpaces(p.rows[idx].Name + " " + chunk)
	}
	return true
}

// looksLikeNameFragment 续行判定：短（≤4 词）、以大写字母或连接词开头
func looksLikeNameFragment(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	if progressMarkerRegex.MatchString(line) {
		return false
	}
	first := words[0]
	if _, ok := continuationConnectors[strings.ToLower(first)]; ok {
		return true
	}
	r := rune(first[0])
	return r >= 'A' && r <= 'Z'
}

func (p *subjectParser) emit(row ParsedSubjectRow) {
	p.rows = append(p.rows, row)
}

// pairSingleCode 单代码行布局判定：
// 代码前有有意义文本（含字母且长度 > 2）→ NAME CODE，否则 CODE NAME。
func (p *subjectParser) pairSingleCode(line string, m codeMatch) ParsedSubjectRow {
	before := strings.TrimSpace(line[:m.start])
	after := strings.TrimSpace(line[m.end:])

	var name string
	if isMeaningfulText(before) {
		name = before
	} else {
		name = after
	}
	return ParsedSubjectRow{Name: cleanSubjectName(name), Code: m.code}
}

// pairMultiCode 多代码表格行的按位配对：
//   - NAME CODE 布局：代码 i 的名称取 [代码 i−1 末尾, 代码 i 起始)
//   - CODE NAME 布局：代码 i 的名称取 (代码 i 末尾, 代码 i+1 起始]
func (p *subjectParser) pairMultiCode(line string, codes []codeMatch) []ParsedSubjectRow {
	nameFirst := isMeaningfulText(strings.TrimSpace(line[:codes[0].start]))
	rows := make([]ParsedSubjectRow, 0, len(codes))

	for i, m := range codes {
		var segment string
		if nameFirst {
			segStart := 0
			if i > 0 {
				segStart = codes[i-1].end
			}
			segment = line[segStart:m.start]
		} else {
			segEnd := len(line)
			if i+1 < len(codes) {
				segEnd = codes[i+1].start
			}
			segment = line[m.end:segEnd]
		}
		rows = append(rows, ParsedSubjectRow{
			Name: cleanSubjectName(segment),
			Code: m.code,
		})
	}
	return rows
}

func isMeaningfulText(s string) bool {
	return len(s) > 2 && letterRegex.MatchString(s)
}

// cleanSubjectName 名称清洗：去尾部进度标记、折叠空白、去首尾分隔符
func cleanSubjectName(raw string) string {
	name := collapseSpaces(raw)
	name = trailingProgressRegex.ReplaceAllString(name, "")
	name = strings.Trim(name, "-~@ \t")
	return collapseSpaces(name)
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// dedupeSubjectRows 终局去重：
// 规范化名称为空或 "unknown subject" 的行原样保留；
// 其余行同名（仅名称，代码不参与）保留首个。
func dedupeSubjectRows(rows []ParsedSubjectRow) []ParsedSubjectRow {
	seen := make(map[string]struct{}, len(rows))
	out := make([]ParsedSubjectRow, 0, len(rows))
	for _, row := range rows {
		key := NormalizeName(row.Name)
		if key == "" || key == "unknown subject" {
			out = append(out, row)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}
