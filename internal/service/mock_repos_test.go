package service

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/WarunaSLFI/study-planner-saas/internal/model"
)

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
	// 供 CountAssignments 使用
	assignments *mockAssignmentRepo
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) ListByUser(_ context.Context, userID string) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, userID, subjectID string) (*model.Subject, error) {
	if s, ok := m.subjects[subjectID]; ok && s.UserID == userID {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) CreateMany(_ context.Context, subjects []model.Subject) error {
	for i := range subjects {
		s := subjects[i]
		m.subjects[s.SubjectID] = &s
	}
	return nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, userID, subjectID string) error {
	if s, ok := m.subjects[subjectID]; ok && s.UserID == userID {
		delete(m.subjects, subjectID)
	}
	return nil
}

func (m *mockSubjectRepo) CountAssignments(_ context.Context, userID string) (map[string]int, error) {
	counts := make(map[string]int)
	if m.assignments == nil {
		return counts, nil
	}
	for _, a := range m.assignments.assignments {
		if a.UserID == userID {
			counts[a.SubjectID]++
		}
	}
	return counts, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	subjects    *mockSubjectRepo
	failBulk    bool
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment)}
}

func (m *mockAssignmentRepo) ListByUser(_ context.Context, userID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DueDate != result[j].DueDate {
			return result[i].DueDate < result[j].DueDate
		}
		return strings.Compare(result[i].Title, result[j].Title) < 0
	})
	return result, nil
}

func (m *mockAssignmentRepo) ListBySubject(_ context.Context, userID, subjectID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.UserID == userID && a.SubjectID == subjectID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, userID, assignmentID string) (*model.Assignment, error) {
	if a, ok := m.assignments[assignmentID]; ok && a.UserID == userID {
		copied := *a
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, userID, assignmentID string) error {
	if a, ok := m.assignments[assignmentID]; ok && a.UserID == userID {
		delete(m.assignments, assignmentID)
	}
	return nil
}

func (m *mockAssignmentRepo) DeleteBySubject(_ context.Context, userID, subjectID string) (int64, error) {
	var removed int64
	for id, a := range m.assignments {
		if a.UserID == userID && a.SubjectID == subjectID {
			delete(m.assignments, id)
			removed++
		}
	}
	return removed, nil
}

func (m *mockAssignmentRepo) BulkImport(_ context.Context, subjects []model.Subject, assignments []model.Assignment) error {
	if m.failBulk {
		return gorm.ErrInvalidTransaction
	}
	if m.subjects != nil {
		for i := range subjects {
			s := subjects[i]
			m.subjects.subjects[s.SubjectID] = &s
		}
	}
	for i := range assignments {
		a := assignments[i]
		m.assignments[a.AssignmentID] = &a
	}
	return nil
}

// ── Mock ActivityLogRepository ──

type mockActivityLogRepo struct {
	logs []model.ActivityLog
}

func newMockActivityLogRepo() *mockActivityLogRepo {
	return &mockActivityLogRepo{}
}

func (m *mockActivityLogRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	var result []model.ActivityLog
	for i := len(m.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if m.logs[i].UserID == userID {
			result = append(result, m.logs[i])
		}
	}
	return result, nil
}

func (m *mockActivityLogRepo) Append(_ context.Context, entry *model.ActivityLog, cap int) error {
	m.logs = append(m.logs, *entry)
	var kept []model.ActivityLog
	count := 0
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].UserID == entry.UserID {
			if count >= cap {
				continue
			}
			count++
		}
		kept = append([]model.ActivityLog{m.logs[i]}, kept...)
	}
	m.logs = kept
	return nil
}
