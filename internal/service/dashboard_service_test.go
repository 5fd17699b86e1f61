package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/WarunaSLFI/study-planner-saas/internal/model"
	"github.com/WarunaSLFI/study-planner-saas/internal/repository"
)

func newDashboardFixture() (*dashboardService, *mockSubjectRepo, *mockAssignmentRepo, *mockActivityLogRepo) {
	subjectRepo := newMockSubjectRepo()
	assignmentRepo := newMockAssignmentRepo()
	subjectRepo.assignments = assignmentRepo
	assignmentRepo.subjects = subjectRepo
	activityRepo := newMockActivityLogRepo()

	repo := &repository.Repository{
		Subject:     subjectRepo,
		Assignment:  assignmentRepo,
		ActivityLog: activityRepo,
	}
	cfg := testConfig()
	imports := NewImportService(cfg, repo, newMemorySessionStore(), zap.NewNop())
	svc := NewDashboardService(cfg, repo, imports, zap.NewNop()).(*dashboardService)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc, subjectRepo, assignmentRepo, activityRepo
}

func TestDashboardOverview(t *testing.T) {
	svc, subjectRepo, assignmentRepo, activityRepo := newDashboardFixture()
	ctx := context.Background()

	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-1", UserID: "u1", Name: "Operating Systems", Code: "5G00DL86"})
	subjectRepo.Create(ctx, &model.Subject{SubjectID: "sub-2", UserID: "u1", Name: "Datapipelines", Code: "NN00FC85"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-1", UserID: "u1", SubjectID: "sub-1", Title: "Late report", DueDate: "2026-02-20"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-2", UserID: "u1", SubjectID: "sub-1", Title: "Lab 2", DueDate: "2026-03-03"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-3", UserID: "u1", SubjectID: "sub-2", Title: "Final essay", DueDate: "2026-05-01"})
	assignmentRepo.Create(ctx, &model.Assignment{AssignmentID: "a-4", UserID: "u1", SubjectID: "sub-1", Title: "Quiz 1", DueDate: "2026-02-01", IsCompleted: true})
	activityRepo.Append(ctx, &model.ActivityLog{ActivityLogID: "log-1", UserID: "u1", Kind: model.ActivityImportSubjects, Summary: "Imported 2 subjects, skipped 0", AddedCount: 2}, 8)

	overview, err := svc.Overview(ctx, "u1")
	if err != nil {
		t.Fatalf("Overview 失败: %v", err)
	}

	if overview.TotalSubjects != 2 || overview.TotalAssignments != 4 {
		t.Errorf("总数错误: subjects=%d assignments=%d", overview.TotalSubjects, overview.TotalAssignments)
	}
	wantCounts := map[string]int{
		StatusUpcoming:  1,
		StatusDueSoon:   1,
		StatusOverdue:   1,
		StatusCompleted: 1,
	}
	for status, want := range wantCounts {
		if overview.StatusCounts[status] != want {
			t.Errorf("状态 %s 计数期望 %d, 实际 %d", status, want, overview.StatusCounts[status])
		}
	}
	if len(overview.DueSoon) != 1 || overview.DueSoon[0].AssignmentID != "a-2" {
		t.Errorf("DueSoon 列表错误: %+v", overview.DueSoon)
	}
	if len(overview.Overdue) != 1 || overview.Overdue[0].AssignmentID != "a-1" {
		t.Errorf("Overdue 列表错误: %+v", overview.Overdue)
	}
	if len(overview.RecentActivity) != 1 || overview.RecentActivity[0].AddedCount != 2 {
		t.Errorf("最近操作记录错误: %+v", overview.RecentActivity)
	}
}

func TestDashboardOverview_EmptyUser(t *testing.T) {
	svc, _, _, _ := newDashboardFixture()

	overview, err := svc.Overview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Overview 失败: %v", err)
	}
	if overview.TotalSubjects != 0 || overview.TotalAssignments != 0 {
		t.Errorf("空用户总数应为 0: %+v", overview)
	}
	// 四个状态键必须始终存在（前端图表依赖）
	for _, status := range []string{StatusUpcoming, StatusDueSoon, StatusOverdue, StatusCompleted} {
		if _, ok := overview.StatusCounts[status]; !ok {
			t.Errorf("状态键 %s 缺失", status)
		}
	}
}
