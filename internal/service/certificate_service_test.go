package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/testutil"
	"eduai_backend/internal/util"

	"gorm.io/gorm"
)

func newCertificateService(t *testing.T) (*gorm.DB, *CertificateService) {
	t.Helper()
	db := testutil.DB(t)
	svc := NewCertificateService(
		repository.NewCertificateRepository(db),
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
	)
	return db, svc
}

func TestIssue_IdempotentSnapshot(t *testing.T) {
	db, svc := newCertificateService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)

	cert, err := svc.Issue(student.ID, course.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	wantPrefix := fmt.Sprintf("EDU-%d-", time.Now().Year())
	if !strings.HasPrefix(cert.Serial, wantPrefix) {
		t.Errorf("serial = %q, want prefix %q", cert.Serial, wantPrefix)
	}
	if cert.UserName != student.Name {
		t.Errorf("user name = %q, want %q", cert.UserName, student.Name)
	}
	if cert.CourseTitle != course.Title {
		t.Errorf("course title = %q, want %q", cert.CourseTitle, course.Title)
	}

	again, err := svc.Issue(student.ID, course.ID)
	if err != nil {
		t.Fatalf("re-issue: %v", err)
	}
	if again.ID != cert.ID || again.Serial != cert.Serial {
		t.Errorf("re-issue returned different certificate: %s vs %s", again.Serial, cert.Serial)
	}

	var count int64
	if err := db.Model(&model.Certificate{}).Where("user_id = ?", student.ID).Count(&count).Error; err != nil {
		t.Fatalf("count certificates: %v", err)
	}
	if count != 1 {
		t.Errorf("certificates = %d, want 1", count)
	}

	// 改名不影响已签发证书上的姓名快照
	if err := db.Model(&model.User{}).Where("id = ?", student.ID).Update("name", "新名字").Error; err != nil {
		t.Fatalf("rename user: %v", err)
	}
	reloaded, err := svc.Get(student.ID, cert.ID)
	if err != nil {
		t.Fatalf("get certificate: %v", err)
	}
	if reloaded.UserName != student.Name {
		t.Errorf("user name after rename = %q, want snapshot %q", reloaded.UserName, student.Name)
	}
}

func TestVerify_BySerial(t *testing.T) {
	db, svc := newCertificateService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)

	cert, err := svc.Issue(student.ID, course.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verification, err := svc.Verify(cert.Serial)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verification.Valid {
		t.Fatal("issued certificate verified as invalid")
	}
	if verification.UserName != cert.UserName || verification.CourseTitle != cert.CourseTitle {
		t.Errorf("verification = %+v, want snapshot fields", verification)
	}
	if verification.IssuedAt == nil {
		t.Error("issued at missing from verification")
	}

	// 未命中的编号不算错误
	unknown, err := svc.Verify("EDU-2026-DEADBEEF")
	if err != nil {
		t.Fatalf("verify unknown: %v", err)
	}
	if unknown.Valid {
		t.Error("unknown serial verified as valid")
	}
	if unknown.Serial != "EDU-2026-DEADBEEF" {
		t.Errorf("unknown serial echoed = %q", unknown.Serial)
	}
}

func TestGetCertificate_Ownership(t *testing.T) {
	db, svc := newCertificateService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	other := testutil.SeedUser(t, db, "other@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)

	cert, err := svc.Issue(student.ID, course.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Get(student.ID, cert.ID); err != nil {
		t.Fatalf("get by owner: %v", err)
	}
	if _, err := svc.Get(other.ID, cert.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("get by other: err = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.Get(student.ID, "missing-id"); !errors.Is(err, util.ErrCertificateNotFound) {
		t.Fatalf("get missing: err = %v, want ErrCertificateNotFound", err)
	}

	mine, err := svc.ListMine(student.ID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("certificates = %d, want 1", len(mine))
	}
}
