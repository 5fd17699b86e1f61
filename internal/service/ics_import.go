package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 作业导入解析器 ──────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为作业预览行，
// 供日历导出（课程平台的 deadline 日历）走与粘贴文本相同的
// 审核-提交流程。
//
// 设计决策：
//   - VTODO 优先取 DUE，VEVENT 取 DTSTART，只保留日期部分
//   - SUMMARY 作为标题；CATEGORIES 或 SUMMARY 内的课程代码
//     作为科目上下文（与文本解析共用代码正则）
//   - 无法解析的事件直接跳过，不中断整个文件
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 5 * 1024 * 1024 // 5MB

// ParseAssignmentsICSFile 解析 ICS 数据流为作业预览行
func ParseAssignmentsICSFile(reader io.Reader) ([]ParsedAssignmentRow, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var rows []ParsedAssignmentRow
	for _, evt := range cal.Events() {
		row, ok := parseAssignmentVEvent(evt)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseAssignmentVEvent 解析单个 VEVENT 为作业行
func parseAssignmentVEvent(evt *ics.VEvent) (ParsedAssignmentRow, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return ParsedAssignmentRow{}, false
	}
	title := strings.TrimSpace(summary.Value)

	dueDate := parseICSDate(evt, ics.ComponentPropertyDue)
	if dueDate == "" {
		dueDate = parseICSDate(evt, ics.ComponentPropertyDtStart)
	}

	code, name := icsSubjectContext(evt, title)

	// 标题里带了科目段时剥离，保持标题干净
	if code != "" {
		title = stripSubjectFromTitle(title, code)
	}
	if title == "" {
		title = untitledAssignment
	}

	return ParsedAssignmentRow{
		Title:       title,
		SubjectCode: code,
		SubjectName: name,
		DueDate:     dueDate,
	}, true
}

// icsSubjectContext 提取科目上下文：CATEGORIES 优先，其次 SUMMARY 内的代码
func icsSubjectContext(evt *ics.VEvent, title string) (code, name string) {
	if prop := evt.GetProperty(ics.ComponentPropertyCategories); prop != nil {
		category := strings.TrimSpace(strings.SplitN(prop.Value, ",", 2)[0])
		if codes := findSubjectCodes(category); len(codes) > 0 {
			first := codes[0]
			rest := strings.TrimSpace(category[:first.start] + " " + category[first.end:])
			return baseCode(first.code), collapseSpaces(rest)
		}
		if category != "" {
			return "", category
		}
	}

	if codes := findSubjectCodes(title); len(codes) > 0 {
		return baseCode(codes[0].code), ""
	}
	return "", ""
}

// stripSubjectFromTitle 从标题中去掉代码及其实施批次后缀
func stripSubjectFromTitle(title, code string) string {
	for _, m := range findSubjectCodes(title) {
		if baseCode(m.code) == code {
			title = title[:m.start] + " " + title[m.end:]
			break
		}
	}
	return strings.Trim(collapseSpaces(title), "-:.,~ ")
}

// parseICSDate 解析日期属性，仅保留日期部分（作业只关心日历日）
func parseICSDate(evt *ics.VEvent, propName ics.ComponentProperty) string {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return ""
	}
	val := prop.Value

	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
