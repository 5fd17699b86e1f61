package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/model"
	"github.com/WarunaSLFI/study-planner-saas/internal/repository"
)

func newSubjectFixture() (*subjectService, *mockSubjectRepo, *mockAssignmentRepo) {
	subjectRepo := newMockSubjectRepo()
	assignmentRepo := newMockAssignmentRepo()
	subjectRepo.assignments = assignmentRepo
	assignmentRepo.subjects = subjectRepo

	repo := &repository.Repository{
		Subject:     subjectRepo,
		Assignment:  assignmentRepo,
		ActivityLog: newMockActivityLogRepo(),
	}
	svc := NewSubjectService(repo, zap.NewNop()).(*subjectService)
	return svc, subjectRepo, assignmentRepo
}

func TestSubjectList_WithAssignmentCounts(t *testing.T) {
	svc, subjectRepo, assignmentRepo := newSubjectFixture()
	ctx := context.Background()

	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "Operating Systems", Code: "5G00DL86"})
	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-2", UserID: "u1", Name: "Datapipelines", Code: "NN00FC85"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-1", UserID: "u1", SubjectID: "sub-1", Title: "Lab 1"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-2", UserID: "u1", SubjectID: "sub-1", Title: "Lab 2"})

	out, err := svc.List(ctx, "u1", "")
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("期望 2 个科目, 实际 %d 个", len(out))
	}
	counts := map[string]int{}
	for _, s := range out {
		counts[s.SubjectID] = s.AssignmentCount
	}
	if counts["sub-1"] != 2 || counts["sub-2"] != 0 {
		t.Errorf("作业数统计错误: %+v", counts)
	}
}

func TestSubjectList_QueryFiltersByNameAndCode(t *testing.T) {
	svc, subjectRepo, _ := newSubjectFixture()
	ctx := context.Background()

	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "Operating Systems", Code: "5G00DL86"})
	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-2", UserID: "u1", Name: "Datapipelines", Code: "NN00FC85"})

	out, err := svc.List(ctx, "u1", "operating")
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(out) != 1 || out[0].SubjectID != "sub-1" {
		t.Errorf("按名称筛选期望仅 sub-1, 实际 %+v", out)
	}

	// 代码片段同样可命中（大小写不敏感）
	out, err = svc.List(ctx, "u1", "nn00fc")
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(out) != 1 || out[0].SubjectID != "sub-2" {
		t.Errorf("按代码筛选期望仅 sub-2, 实际 %+v", out)
	}
}

func TestSubjectCreate_NormalizesCode(t *testing.T) {
	svc, _, _ := newSubjectFixture()

	resp, err := svc.Create(context.Background(), "u1", &dto.CreateSubjectRequest{Name: "Operating Systems", Code: " 5g00-dl86 "})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if resp.Code != "5G00DL86" {
		t.Errorf("代码应规范化为 5G00DL86, 实际 %q", resp.Code)
	}
}

func TestSubjectCreate_DuplicateCode(t *testing.T) {
	svc, subjectRepo, _ := newSubjectFixture()
	ctx := context.Background()
	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "Old", Code: "5G00DL86"})

	if _, err := svc.Create(ctx, "u1", &dto.CreateSubjectRequest{Name: "New", Code: "5g00dl86"}); err != ErrSubjectDuplicateCode {
		t.Errorf("重复代码期望 ErrSubjectDuplicateCode, 实际 %v", err)
	}
}

func TestSubjectCreate_EmptyCodeNeverConflicts(t *testing.T) {
	svc, subjectRepo, _ := newSubjectFixture()
	ctx := context.Background()
	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "First", Code: ""})

	if _, err := svc.Create(ctx, "u1", &dto.CreateSubjectRequest{Name: "Second", Code: ""}); err != nil {
		t.Errorf("空代码不应参与查重, 实际错误 %v", err)
	}
}

func TestSubjectUpdate_PartialFields(t *testing.T) {
	svc, subjectRepo, _ := newSubjectFixture()
	ctx := context.Background()
	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "Old Name", Code: "5G00DL86"})

	newName := "New Name"
	resp, err := svc.Update(ctx, "u1", "sub-1", &dto.UpdateSubjectRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if resp.Name != "New Name" {
		t.Errorf("名称未更新: %q", resp.Name)
	}
	if resp.Code != "5G00DL86" {
		t.Errorf("未传字段不应改变, 代码实际 %q", resp.Code)
	}
}

func TestSubjectUpdate_CodeConflictExcludesSelf(t *testing.T) {
	svc, subjectRepo, _ := newSubjectFixture()
	ctx := context.Background()
	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "OS", Code: "5G00DL86"})

	// 把自己的代码改成自己的代码（大小写不同）不应报冲突
	same := "5g00dl86"
	if _, err := svc.Update(ctx, "u1", "sub-1", &dto.UpdateSubjectRequest{Code: &same}); err != nil {
		t.Errorf("自身代码不应判为冲突, 实际错误 %v", err)
	}
}

func TestSubjectUpdate_NotFound(t *testing.T) {
	svc, _, _ := newSubjectFixture()
	name := "X"
	if _, err := svc.Update(context.Background(), "u1", "missing", &dto.UpdateSubjectRequest{Name: &name}); err != ErrSubjectNotFound {
		t.Errorf("期望 ErrSubjectNotFound, 实际 %v", err)
	}
}

func TestSubjectDelete_CascadesAssignments(t *testing.T) {
	svc, subjectRepo, assignmentRepo := newSubjectFixture()
	ctx := context.Background()

	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "OS", Code: "5G00DL86"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-1", UserID: "u1", SubjectID: "sub-1", Title: "Lab 1"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-2", UserID: "u1", SubjectID: "sub-1", Title: "Lab 2"})

	resp, err := svc.Delete(ctx, "u1", "sub-1")
	if err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if resp.AssignmentsRemoved != 2 {
		t.Errorf("期望级联删除 2 条作业, 实际 %d 条", resp.AssignmentsRemoved)
	}
	if remaining, _ := assignmentRepo.ListByUser(ctx, "u1"); len(remaining) != 0 {
		t.Errorf("科目删除后作业应清空, 实际剩余 %d 条", len(remaining))
	}
	if _, err := subjectRepo.GetByID(ctx, "u1", "sub-1"); err == nil {
		t.Error("科目本身应已删除")
	}
}
