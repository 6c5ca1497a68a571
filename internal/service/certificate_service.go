package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/util"
	"eduai_backend/pkg/monitoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateService 负责结业证书的签发与验证
type CertificateService struct {
	CertificateRepo *repository.CertificateRepository
	UserRepo        *repository.UserRepository
	CourseRepo      *repository.CourseRepository
}

func NewCertificateService(
	certificateRepo *repository.CertificateRepository,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
) *CertificateService {
	return &CertificateService{
		CertificateRepo: certificateRepo,
		UserRepo:        userRepo,
		CourseRepo:      courseRepo,
	}
}

// Issue 为完成课程的用户签发证书，重复调用返回已有证书。
// 证书上保存姓名与课程名快照，后续改名不影响已签发内容。
func (s *CertificateService) Issue(userID, courseID uint) (*model.Certificate, error) {
	existing, err := s.CertificateRepo.FindByUserAndCourse(userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		UserID:      userID,
		CourseID:    courseID,
		Serial:      generateSerial(time.Now()),
		UserName:    user.Name,
		CourseTitle: course.Title,
		IssuedAt:    time.Now(),
	}
	if err := s.CertificateRepo.Create(cert); err != nil {
		return nil, err
	}
	monitoring.CertificatesIssued.Inc()
	return cert, nil
}

func (s *CertificateService) ListMine(userID uint) ([]model.Certificate, error) {
	return s.CertificateRepo.ListByUser(userID)
}

func (s *CertificateService) Get(userID uint, certificateID string) (*model.Certificate, error) {
	cert, err := s.CertificateRepo.FindByID(certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}
	if cert.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return cert, nil
}

type CertificateVerification struct {
	Valid       bool       `json:"valid"`
	Serial      string     `json:"serial"`
	UserName    string     `json:"userName,omitempty"`
	CourseTitle string     `json:"courseTitle,omitempty"`
	IssuedAt    *time.Time `json:"issuedAt,omitempty"`
}

// Verify 对外验证证书编号，未命中不算错误
func (s *CertificateService) Verify(serial string) (*CertificateVerification, error) {
	cert, err := s.CertificateRepo.FindBySerial(serial)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CertificateVerification{Valid: false, Serial: serial}, nil
		}
		return nil, err
	}
	return &CertificateVerification{
		Valid:       true,
		Serial:      cert.Serial,
		UserName:    cert.UserName,
		CourseTitle: cert.CourseTitle,
		IssuedAt:    &cert.IssuedAt,
	}, nil
}

// generateSerial 证书编号形如 EDU-2025-3F2A9C1B
func generateSerial(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("EDU-%d-%s", now.Year(), fragment)
}
