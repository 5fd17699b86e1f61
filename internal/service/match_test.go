package service

import (
	"testing"

	"github.com/WarunaSLFI/study-planner-saas/internal/model"
)

// 两个科目的代码差异足够大，互不触发近似匹配
func existingSubjects() []model.Subject {
	return []model.Subject{
		{SubjectID: "sub-1", UserID: "u1", Name: "Programming Languages 1", Code: "5G00DL96"},
		{SubjectID: "sub-2", UserID: "u1", Name: "Operating Systems", Code: "NN00FC85"},
	}
}

func TestFindReviewCandidates_ExactCode(t *testing.T) {
	candidates := FindReviewCandidates("Whatever Name", "5g00dl96", existingSubjects())
	if len(candidates) != 1 {
		t.Fatalf("期望 1 个候选, 实际 %d 个", len(candidates))
	}
	if candidates[0].Reason != MatchExactCode || candidates[0].Score != 0 {
		t.Errorf("期望 exact_code/score=0, 实际 %s/%d", candidates[0].Reason, candidates[0].Score)
	}
	if AllowCreateNew(candidates) {
		t.Error("存在 exact_code 命中时不应允许新建")
	}
}

func TestFindReviewCandidates_ExactName(t *testing.T) {
	candidates := FindReviewCandidates("operating systems", "", existingSubjects())
	if len(candidates) != 1 {
		t.Fatalf("期望 1 个候选, 实际 %d 个", len(candidates))
	}
	if candidates[0].Reason != MatchExactName || candidates[0].Score != 1 {
		t.Errorf("期望 exact_name/score=1, 实际 %s/%d", candidates[0].Reason, candidates[0].Score)
	}
	if AllowCreateNew(candidates) {
		t.Error("存在 exact_name 命中时不应允许新建")
	}
}

func TestFindReviewCandidates_SimilarCodeDigitDiff(t *testing.T) {
	// 实施批次多挂一位前导数字：5G00DL96 vs 15G00DL96
	candidates := FindReviewCandidates("Programming Languages", "15G00DL96", existingSubjects())
	if len(candidates) != 1 {
		t.Fatalf("期望 1 个候选, 实际 %d 个: %+v", len(candidates), candidates)
	}
	c := candidates[0]
	if c.Reason != MatchSimilarCode {
		t.Errorf("期望 similar_code, 实际 %s", c.Reason)
	}
	if c.SubjectID != "sub-1" {
		t.Errorf("期望命中 sub-1, 实际 %s", c.SubjectID)
	}
	if !AllowCreateNew(candidates) {
		t.Error("仅 similar_code 候选时应允许新建")
	}
}

func TestFindReviewCandidates_BestReasonPerSubject(t *testing.T) {
	// 同一科目同时命中 exact_code 与 exact_name 时只保留最优原因
	candidates := FindReviewCandidates("Operating Systems", "NN00FC85", existingSubjects())
	if len(candidates) != 1 {
		t.Fatalf("期望每科目 1 个候选, 实际 %d 个", len(candidates))
	}
	if candidates[0].Reason != MatchExactCode {
		t.Errorf("应保留 score 最小的原因 exact_code, 实际 %s", candidates[0].Reason)
	}
}

func TestFindReviewCandidates_SiblingCodeAlsoFlagged(t *testing.T) {
	// 同一课程家族的兄弟代码只差一位数字：精确命中之外还应标记近似候选
	existing := []model.Subject{
		{SubjectID: "sub-1", UserID: "u1", Name: "Programming Languages 1", Code: "5G00DL96"},
		{SubjectID: "sub-2", UserID: "u1", Name: "Operating Systems", Code: "5G00DL86"},
	}
	candidates := FindReviewCandidates("Whatever Name", "5G00DL96", existing)
	if len(candidates) != 2 {
		t.Fatalf("期望 2 个候选, 实际 %d 个: %+v", len(candidates), candidates)
	}
	if candidates[0].Reason != MatchExactCode || candidates[0].SubjectID != "sub-1" {
		t.Errorf("首位应为 sub-1 的 exact_code, 实际 %s/%s", candidates[0].SubjectID, candidates[0].Reason)
	}
	if candidates[1].Reason != MatchSimilarCode || candidates[1].SubjectID != "sub-2" {
		t.Errorf("次位应为 sub-2 的 similar_code, 实际 %s/%s", candidates[1].SubjectID, candidates[1].Reason)
	}
	if AllowCreateNew(candidates) {
		t.Error("存在 exact_code 命中时不应允许新建")
	}
}

func TestFindReviewCandidates_SortedByScore(t *testing.T) {
	existing := []model.Subject{
		{SubjectID: "sub-a", Name: "Databases", Code: "15G00DL96"},
		{SubjectID: "sub-b", Name: "My Course", Code: "5G00DL96"},
	}
	candidates := FindReviewCandidates("Other", "5G00DL96", existing)
	if len(candidates) != 2 {
		t.Fatalf("期望 2 个候选, 实际 %d 个", len(candidates))
	}
	if candidates[0].SubjectID != "sub-b" {
		t.Errorf("exact_code 应排在 similar_code 之前, 首位实际 %s", candidates[0].SubjectID)
	}
	if candidates[0].Score > candidates[1].Score {
		t.Error("候选应按 score 升序排列")
	}
}

func TestFindReviewCandidates_NoMatch(t *testing.T) {
	candidates := FindReviewCandidates("Quantum Computing", "QC00XX99", existingSubjects())
	if len(candidates) != 0 {
		t.Errorf("无关科目期望 0 个候选, 实际 %d 个: %+v", len(candidates), candidates)
	}
}

func TestCodeDigitDifference_Bounds(t *testing.T) {
	// 距离 > 2 不算近似
	if _, _, ok := codeDigitDifference("5G00DL96", "XX99ZZ11"); ok {
		t.Error("完全不同的代码不应判为近似")
	}
	// 距离 0（相同代码）不算近似
	if _, _, ok := codeDigitDifference("5G00DL96", "5G00DL96"); ok {
		t.Error("相同代码不应判为近似")
	}
	// 纯字母差异（无数字位）不算近似
	if _, _, ok := codeDigitDifference("AB00CD11", "AX00CD11"); ok {
		t.Error("差异位均非数字时不应判为近似")
	}
	// 前导数字差一位：距离 1, 数字差 1
	distance, digitDiff, ok := codeDigitDifference("15G00DL96", "5G00DL96")
	if !ok || distance != 1 || digitDiff == 0 {
		t.Errorf("期望 ok/distance=1, 实际 ok=%v distance=%d digitDiff=%d", ok, distance, digitDiff)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"5G00DL96", "15G00DL96", 1},
	}
	for _, tc := range cases {
		if got := levenshteinDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) 期望 %d, 实际 %d", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestNormalizeHelpers(t *testing.T) {
	if got := NormalizeName("  Operating  Systems! "); got != "operating systems" {
		t.Errorf("NormalizeName 期望 'operating systems', 实际 %q", got)
	}
	if got := NormalizeCode(" 5g00-dl96 "); got != "5G00DL96" {
		t.Errorf("NormalizeCode 期望 '5G00DL96', 实际 %q", got)
	}
}
