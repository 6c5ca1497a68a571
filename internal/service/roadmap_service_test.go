package service

import (
	"errors"
	"testing"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/testutil"
	"eduai_backend/internal/util"

	"gorm.io/gorm"
)

func newRoadmapService(t *testing.T) (*gorm.DB, *RoadmapService) {
	t.Helper()
	db := testutil.DB(t)
	return db, NewRoadmapService(repository.NewRoadmapRepository(db))
}

func seedRoadmap(t *testing.T, svc *RoadmapService, userID uint, stepTitles ...string) *model.Roadmap {
	t.Helper()
	req := RoadmapRequest{Title: "成为后端工程师", Goal: "上线一个服务"}
	for _, title := range stepTitles {
		req.Steps = append(req.Steps, RoadmapStepRequest{Title: title})
	}
	roadmap, err := svc.CreateRoadmap(userID, req)
	if err != nil {
		t.Fatalf("create roadmap: %v", err)
	}
	return roadmap
}

func TestCreateRoadmap_AssignsStepOrder(t *testing.T) {
	db, svc := newRoadmapService(t)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)

	roadmap := seedRoadmap(t, svc, user.ID, "学 Go", "学 SQL", "做项目")
	if roadmap.Status != model.RoadmapActive {
		t.Errorf("status = %q, want active", roadmap.Status)
	}
	if len(roadmap.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(roadmap.Steps))
	}
	for i, step := range roadmap.Steps {
		if step.Order != i+1 {
			t.Errorf("step[%d] order = %d, want %d", i, step.Order, i+1)
		}
		if step.Status != model.StepNotStarted {
			t.Errorf("step[%d] status = %q, want not_started", i, step.Status)
		}
	}
}

func TestGetRoadmap_OwnershipAndProgress(t *testing.T) {
	db, svc := newRoadmapService(t)
	owner := testutil.SeedUser(t, db, "owner@test.dev", model.Student)
	other := testutil.SeedUser(t, db, "other@test.dev", model.Student)
	roadmap := seedRoadmap(t, svc, owner.ID, "学 Go", "学 SQL")

	view, err := svc.GetRoadmap(owner.ID, roadmap.ID)
	if err != nil {
		t.Fatalf("get roadmap: %v", err)
	}
	if view.TotalSteps != 2 || view.CompletedSteps != 0 || view.Progress != 0 {
		t.Errorf("view = %d/%d at %v%%, want 0/2 at 0%%", view.CompletedSteps, view.TotalSteps, view.Progress)
	}

	if _, err := svc.GetRoadmap(other.ID, roadmap.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("get by other: err = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.GetRoadmap(owner.ID, 99999); !errors.Is(err, util.ErrRoadmapNotFound) {
		t.Fatalf("get missing: err = %v, want ErrRoadmapNotFound", err)
	}
}

func TestUpdateStep_CompletesRoadmap(t *testing.T) {
	db, svc := newRoadmapService(t)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	roadmap := seedRoadmap(t, svc, user.ID, "学 Go", "学 SQL")

	if _, err := svc.UpdateStep(user.ID, roadmap.Steps[0].ID, StepUpdateRequest{Status: model.StepCompleted}); err != nil {
		t.Fatalf("complete step 1: %v", err)
	}
	view, err := svc.GetRoadmap(user.ID, roadmap.ID)
	if err != nil {
		t.Fatalf("get roadmap: %v", err)
	}
	if view.Progress != 50.00 {
		t.Errorf("progress = %v, want 50.00", view.Progress)
	}
	if view.Roadmap.Status != model.RoadmapActive {
		t.Errorf("status = %q, want active while steps remain", view.Roadmap.Status)
	}

	if _, err := svc.UpdateStep(user.ID, roadmap.Steps[1].ID, StepUpdateRequest{Status: model.StepCompleted}); err != nil {
		t.Fatalf("complete step 2: %v", err)
	}
	view, err = svc.GetRoadmap(user.ID, roadmap.ID)
	if err != nil {
		t.Fatalf("reload roadmap: %v", err)
	}
	if view.Roadmap.Status != model.RoadmapCompleted {
		t.Errorf("status = %q, want completed after all steps", view.Roadmap.Status)
	}
	if view.Progress != 100 {
		t.Errorf("progress = %v, want 100", view.Progress)
	}

	// 新增步骤后路线回到进行中
	if _, err := svc.AddStep(user.ID, roadmap.ID, RoadmapStepRequest{Title: "部署上线"}); err != nil {
		t.Fatalf("add step: %v", err)
	}
	view, err = svc.GetRoadmap(user.ID, roadmap.ID)
	if err != nil {
		t.Fatalf("reload roadmap: %v", err)
	}
	if view.Roadmap.Status != model.RoadmapActive {
		t.Errorf("status after new step = %q, want active", view.Roadmap.Status)
	}
	if view.TotalSteps != 3 || view.CompletedSteps != 2 {
		t.Errorf("view = %d/%d, want 2/3", view.CompletedSteps, view.TotalSteps)
	}
}

func TestDeleteStep_ReconcilesStatus(t *testing.T) {
	db, svc := newRoadmapService(t)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	roadmap := seedRoadmap(t, svc, user.ID, "学 Go", "学 SQL")

	if _, err := svc.UpdateStep(user.ID, roadmap.Steps[0].ID, StepUpdateRequest{Status: model.StepCompleted}); err != nil {
		t.Fatalf("complete step: %v", err)
	}
	// 删掉未完成的步骤后，剩余步骤全部完成，路线应结课
	if err := svc.DeleteStep(user.ID, roadmap.Steps[1].ID); err != nil {
		t.Fatalf("delete step: %v", err)
	}

	view, err := svc.GetRoadmap(user.ID, roadmap.ID)
	if err != nil {
		t.Fatalf("get roadmap: %v", err)
	}
	if view.Roadmap.Status != model.RoadmapCompleted {
		t.Errorf("status = %q, want completed", view.Roadmap.Status)
	}
}

func TestReorderSteps(t *testing.T) {
	db, svc := newRoadmapService(t)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	roadmap := seedRoadmap(t, svc, user.ID, "学 Go", "学 SQL", "做项目")
	s1, s2, s3 := roadmap.Steps[0], roadmap.Steps[1], roadmap.Steps[2]

	steps, err := svc.ReorderSteps(user.ID, roadmap.ID, []uint{s3.ID, s1.ID, s2.ID})
	if err != nil {
		t.Fatalf("reorder steps: %v", err)
	}
	wantIDs := []uint{s3.ID, s1.ID, s2.ID}
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	for i, step := range steps {
		if step.ID != wantIDs[i] {
			t.Errorf("steps[%d] = %d, want %d", i, step.ID, wantIDs[i])
		}
		if step.Order != i+1 {
			t.Errorf("steps[%d] order = %d, want %d", i, step.Order, i+1)
		}
	}

	if _, err := svc.ReorderSteps(user.ID, roadmap.ID, []uint{s1.ID, s2.ID}); err == nil {
		t.Fatal("expected error for incomplete step list")
	}
	if _, err := svc.ReorderSteps(user.ID, roadmap.ID, []uint{s1.ID, s2.ID, 99999}); !errors.Is(err, util.ErrStepNotFound) {
		t.Fatalf("reorder with foreign id: err = %v, want ErrStepNotFound", err)
	}
}
