package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParsedAssignmentRow 作业解析的瞬态输出行。
// 字段为空串表示缺失（无科目上下文 / 无截止日期）。
type ParsedAssignmentRow struct {
	Title       string `json:"title"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	DueDate     string `json:"due_date"` // ISO YYYY-MM-DD
}

const untitledAssignment = "Untitled assignment"

// ── 日历块模式（主模式）──

const activityEventMarker = "activity event"

// 科目标记行特征
var subjectMarkerPhrases = []string{"assignment is due", "file requires action"}

const middleDot = "·"

// 严格的"CODE NAME"科目段：6~10 位字母数字，可选 -批次 后缀
var strictSubjectRegex = regexp.MustCompile(`^([A-Za-z0-9]{6,10})(?:-\d+)?\s+(.+)$`)

// 周几开头的长日期："Tuesday, 3 March 2026"
var longDateRegex = regexp.MustCompile(`(?i)^(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday),?\s+(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})$`)

var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ── 传统行模式（块外回退）──

var assignmentKeywords = []string{"assignment", "exercise", "task", "project", "tehtävä", "harjoitus"}

var dueKeywords = []string{"due", "deadline", "palautus"}

// 短格式数字日期：DD.MM.YYYY 或 YYYY-M-D
var shortDateRegex = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b|\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)

// 标题清洗用的日期/截止关键词
var dueKeywordRegex = regexp.MustCompile(`(?i)\b(due|deadline|palautus(?:päivä)?|date)\b[:\-]?`)

var assignmentNoiseHeaders = map[string]struct{}{
	"study type": {}, "status": {}, "assessor": {},
	"completed studies": {}, "no completed studies": {}, "kpl": {},
}

// assignmentParser 作业解析状态机。
//
// 两种模式协作：
//   - 日历块模式："Activity event" 行触发；块的截止日期在触发时
//     从全局日期快照（该格式下日期标题行作用于其后的所有块）。
//   - 传统行模式：块外逐行匹配关键词/日期，维护"当前科目"上下文。
//
// 任何行都不会导致解析失败，最差情况字段留空交由审核阶段处理。
type assignmentParser struct {
	rows []ParsedAssignmentRow

	// 全局截止日期（周几长日期行更新，ISO 格式）
	globalDueDate string

	// 日历块状态
	inBlock  bool
	block    ParsedAssignmentRow
	titleSet bool

	// 传统行模式的当前科目上下文
	currentSubjectCode string
	currentSubjectName string
}

// ParseAssignmentsFromText 从粘贴文本提取作业行
func ParseAssignmentsFromText(input string) []ParsedAssignmentRow {
	p := &assignmentParser{}
	for _, line := range splitLines(input) {
		p.feed(line)
	}
	p.flushBlock()
	return p.rows
}

func (p *assignmentParser) feed(rawLine string) {
	line := strings.TrimSpace(rawLine)
	if line == "" {
		return
	}

	// 日期标题行在块内块外都更新全局日期，本身不再参与其他解析
	if iso, ok := parseLongDate(line); ok {
		p.globalDueDate = iso
		return
	}

	if strings.ToLower(line) == activityEventMarker {
		p.flushBlock()
		p.inBlock = true
		p.block = ParsedAssignmentRow{DueDate: p.globalDueDate}
		p.titleSet = false
		return
	}

	if p.inBlock {
		p.feedBlockLine(line)
		return
	}
	p.feedLegacyLine(line)
}

// flushBlock 结束当前块并发射（标题缺省为占位值）
func (p *assignmentParser) flushBlock() {
	if !p.inBlock {
		return
	}
	if !p.titleSet {
		p.block.Title = untitledAssignment
	}
	p.rows = append(p.rows, p.block)
	p.inBlock = false
	p.block = ParsedAssignmentRow{}
	p.titleSet = false
}

// feedBlockLine 块内行：科目标记行 → 提取科目；否则首个非空行作为标题
func (p *assignmentParser) feedBlockLine(line string) {
	if isSubjectMarkerLine(line) {
		code, name := parseSubjectMarker(line)
		if code != "" {
			p.block.SubjectCode = code
		}
		if name != "" {
			p.block.SubjectName = name
		}
		return
	}
	if !p.titleSet {
		p.block.Title = line
		p.titleSet = true
	}
}

func isSubjectMarkerLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range subjectMarkerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return strings.Contains(line, middleDot)
}

// parseSubjectMarker 从标记行提取 (code, name)：
// 取中点分隔符之后的段，先试严格 CODE NAME 模式，失败则回退通用代码正则；
// 段内无代码时整段视为科目名（仅限含中点分隔符的行）。
// 无中点的标记行先剥掉标记短语本身，"Assignment" 这类词形
// 恰好落在严格模式的代码长度区间内，不剥会被误当课程代码。
func parseSubjectMarker(line string) (code, name string) {
	segment := line
	hasDot := false
	if idx := strings.LastIndex(line, middleDot); idx >= 0 {
		segment = line[idx+len(middleDot):]
		hasDot = true
	} else {
		segment = stripMarkerPhrases(line)
	}
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "", ""
	}

	if m := strictSubjectRegex.FindStringSubmatch(segment); m != nil {
		return strings.ToUpper(m[1]), collapseSpaces(m[2])
	}

	// 回退：通用代码正则（与科目解析共用），其余文本作为名称
	if codes := findSubjectCodes(segment); len(codes) > 0 {
		first := codes[0]
		rest := strings.TrimSpace(segment[:first.start] + " " + segment[first.end:])
		return baseCode(first.code), collapseSpaces(rest)
	}
	if hasDot {
		return "", collapseSpaces(segment)
	}
	return "", ""
}

// stripMarkerPhrases 去除行内的标记短语（大小写不敏感）
func stripMarkerPhrases(s string) string {
	lower := strings.ToLower(s)
	for _, phrase := range subjectMarkerPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			s = s[:idx] + " " + s[idx+len(phrase):]
			lower = strings.ToLower(s)
		}
	}
	return collapseSpaces(s)
}

// baseCode 去除 -3012 形式的实施批次后缀
func baseCode(code string) string {
	if idx := strings.Index(code, "-"); idx >= 0 {
		return code[:idx]
	}
	return code
}

// parseLongDate 解析 "Tuesday, 3 March 2026" 形式的日期标题行
func parseLongDate(line string) (string, bool) {
	m := longDateRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, ok := monthNames[strings.ToLower(m[2])]
	if !ok || day < 1 || day > 31 {
		return "", false
	}
	year, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// feedLegacyLine 传统行模式：
// 代码行更新科目上下文；关键词/日期命中视为作业候选。
func (p *assignmentParser) feedLegacyLine(line string) {
	lower := strings.ToLower(line)
	if _, noise := assignmentNoiseHeaders[lower]; noise {
		return
	}

	// 含代码的行视为课程标题行，仅更新上下文
	if codes := findSubjectCodes(line); len(codes) > 0 {
		first := codes[0]
		p.currentSubjectCode = baseCode(first.code)
		p.currentSubjectName = collapseSpaces(line[:first.start])
		return
	}

	hasKeyword := containsAny(lower, assignmentKeywords)
	hasDueKeyword := containsAny(lower, dueKeywords)
	dateMatch := shortDateRegex.FindStringSubmatch(line)

	if !hasKeyword && !hasDueKeyword && dateMatch == nil {
		return
	}

	title := line
	dueDate := ""
	if dateMatch != nil {
		dueDate = normalizeShortDate(dateMatch)
		title = strings.Replace(title, dateMatch[0], "", 1)
		title = dueKeywordRegex.ReplaceAllString(title, "")
		title = strings.Trim(collapseSpaces(title), "-:.,~ ")
	}
	if title == "" {
		title = untitledAssignment
	}

	// 纯噪音（占位标题且无日期）不发射
	if title == untitledAssignment && dueDate == "" {
		return
	}

	p.rows = append(p.rows, ParsedAssignmentRow{
		Title:       title,
		SubjectCode: p.currentSubjectCode,
		SubjectName: p.currentSubjectName,
		DueDate:     dueDate,
	})
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// normalizeShortDate 将 DD.MM.YYYY / YYYY-M-D 规范化为 YYYY-MM-DD
func normalizeShortDate(m []string) string {
	if m[1] != "" {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%04d-%02d-%02d", y, mo, d)
	}
	y, _ := strconv.Atoi(m[4])
	mo, _ := strconv.Atoi(m[5])
	d, _ := strconv.Atoi(m[6])
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d)
}
