package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/model"
)

// 匹配原因（score 越小越优先）
const (
	MatchExactCode   = "exact_code"   // score 0：规范化代码完全一致
	MatchExactName   = "exact_name"   // score 1：规范化名称完全一致
	MatchSimilarCode = "similar_code" // score 2+编辑距离：代码近似（数字位差异）
)

var (
	nonAlnumSpaceRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	nonAlnumRegex      = regexp.MustCompile(`[^A-Z0-9]`)
	multiSpaceRegex    = regexp.MustCompile(`\s+`)
)

// NormalizeName 名称规范化：小写、去非字母数字、折叠空白
func NormalizeName(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = nonAlnumSpaceRegex.ReplaceAllString(v, " ")
	v = multiSpaceRegex.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

// NormalizeCode 代码规范化：大写、去非字母数字
func NormalizeCode(value string) string {
	return nonAlnumRegex.ReplaceAllString(strings.ToUpper(value), "")
}

// levenshteinDistance 双行滚动数组实现的编辑距离
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		copy(prev, curr)
	}
	return prev[len(b)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

// codeDigitDifference 代码近似判定：
// 编辑距离在 (0, 2] 且逐位差异中含 1~2 个数字位。
// 针对真实场景：实施批次会在同一基础代码前多挂一位数字
// （如 5G00DL96 与 15G00DL96）。
// 不满足条件时返回 (0, 0, false)。
func codeDigitDifference(inputCode, existingCode string) (distance, digitDiff int, ok bool) {
	left := NormalizeCode(inputCode)
	right := NormalizeCode(existingCode)
	if left == "" || right == "" {
		return 0, 0, false
	}

	distance = levenshteinDistance(left, right)
	if distance <= 0 || distance > 2 {
		return 0, 0, false
	}

	// 长度不同（前缀多挂数字）时左对齐会把整串错位，
	// 因此左右对齐各算一次取较小值
	digitDiff = alignedDigitDiff(left, right, false)
	if d := alignedDigitDiff(left, right, true); d < digitDiff {
		digitDiff = d
	}
	if digitDiff <= 0 || digitDiff > 2 {
		return 0, 0, false
	}
	return distance, digitDiff, true
}

// alignedDigitDiff 逐位比较两个代码，统计差异位中含数字的个数。
// fromRight 为 true 时按右端对齐（短串前面补空位）。
func alignedDigitDiff(left, right string, fromRight bool) int {
	maxLen := len(left)
	if len(right) > maxLen {
		maxLen = len(right)
	}
	diff := 0
	for i := 0; i < maxLen; i++ {
		li, ri := i, i
		if fromRight {
			li = len(left) - maxLen + i
			ri = len(right) - maxLen + i
		}
		var a, b byte
		if li >= 0 && li < len(left) {
			a = left[li]
		}
		if ri >= 0 && ri < len(right) {
			b = right[ri]
		}
		if a == b {
			continue
		}
		if isASCIIDigit(a) || isASCIIDigit(b) {
			diff++
		}
	}
	return diff
}

// FindReviewCandidates 科目冲突检测：
// 对每个已有科目评估三条独立规则，按科目保留最优（score 最小）原因，
// 最终按 score 升序返回。返回空切片表示该行是明确的新科目。
func FindReviewCandidates(name, code string, existing []model.Subject) []dto.ReviewCandidate {
	rowName := NormalizeName(name)
	rowCode := NormalizeCode(code)

	best := make(map[string]dto.ReviewCandidate)
	order := make([]string, 0)

	register := func(c dto.ReviewCandidate) {
		current, seen := best[c.SubjectID]
		if !seen {
			order = append(order, c.SubjectID)
			best[c.SubjectID] = c
			return
		}
		if c.Score < current.Score {
			best[c.SubjectID] = c
		}
	}

	for _, sub := range existing {
		existingName := NormalizeName(sub.Name)
		existingCode := NormalizeCode(sub.Code)

		if rowCode != "" && existingCode != "" && rowCode == existingCode {
			register(dto.ReviewCandidate{
				SubjectID: sub.SubjectID,
				Name:      sub.Name,
				Code:      sub.Code,
				Reason:    MatchExactCode,
				Score:     0,
				Note:      "Exact code match",
			})
		}

		if rowName != "" && existingName != "" && rowName == existingName {
			register(dto.ReviewCandidate{
				SubjectID: sub.SubjectID,
				Name:      sub.Name,
				Code:      sub.Code,
				Reason:    MatchExactName,
				Score:     1,
				Note:      "Exact subject name match",
			})
		}

		if distance, digitDiff, ok := codeDigitDifference(code, sub.Code); ok {
			register(dto.ReviewCandidate{
				SubjectID: sub.SubjectID,
				Name:      sub.Name,
				Code:      sub.Code,
				Reason:    MatchSimilarCode,
				Score:     2 + distance,
				Note:      fmt.Sprintf("Code is very close (%d digit difference)", digitDiff),
			})
		}
	}

	candidates := make([]dto.ReviewCandidate, 0, len(best))
	for _, id := range order {
		candidates = append(candidates, best[id])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score < candidates[j].Score
	})
	return candidates
}

// AllowCreateNew 仅当不存在 exact_code / exact_name 命中时允许"导入为新科目"；
// 只有 similar_code 候选时仍可新建（带警告）。
func AllowCreateNew(candidates []dto.ReviewCandidate) bool {
	for _, c := range candidates {
		if c.Reason == MatchExactCode || c.Reason == MatchExactName {
			return false
		}
	}
	return true
}

// SubjectPlaceholderName 由代码生成占位科目名
func SubjectPlaceholderName(code string) string {
	return fmt.Sprintf("Subject %s", NormalizeCode(code))
}
