package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eduai_backend/internal/config"
	"eduai_backend/internal/util"
	"eduai_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaService 负责头像、课程封面与章节视频的上传处理
type MediaService struct {
	Storage *StorageService
	Cfg     *config.Config
}

func NewMediaService(storage *StorageService, cfg *config.Config) *MediaService {
	return &MediaService{Storage: storage, Cfg: cfg}
}

// UploadImage 上传图片类文件，folder 为存储目录，如 avatars、thumbnails
func (s *MediaService) UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !containsExt(util.AllowedImageExtensions, ext) {
		return "", fmt.Errorf("不支持的图片格式: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 深度验证 MIME 类型
	if _, err := util.ValidateMimeType(src, []string{util.MimeImage}); err != nil {
		return "", fmt.Errorf("非法的文件内容: %v", err)
	}
	// 重置读取指针
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	filename := folder + "/" + time.Now().Format("20060102150405") + "-" + randomFragment() + ext
	return s.Storage.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
}

type VideoUpload struct {
	URL             string  `json:"url"`
	ThumbnailURL    string  `json:"thumbnailUrl"`
	DurationMinutes int     `json:"durationMinutes"`
	DurationSeconds float64 `json:"durationSeconds"`
	Size            int64   `json:"size"`
	Format          string  `json:"format"`
}

// UploadLessonVideo 上传章节视频，探测时长并生成封面图
func (s *MediaService) UploadLessonVideo(ctx context.Context, file *multipart.FileHeader) (*VideoUpload, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !containsExt(util.AllowedVideoExtensions, ext) {
		return nil, fmt.Errorf("不支持的视频格式: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 深度验证 MIME 类型
	if _, err := util.ValidateMimeType(src, []string{util.MimeVideo}); err != nil {
		return nil, fmt.Errorf("非法的文件内容，仅允许视频格式: %v", err)
	}
	// 重置读取指针
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	// 临时落盘以便 ffmpeg 处理
	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, err
	}
	videoPath := filepath.Join(tempDir, fmt.Sprintf("lesson_%d%s", time.Now().UnixNano(), ext))
	defer os.Remove(videoPath)

	dst, err := os.Create(videoPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, err
	}
	dst.Close()

	videoFilename := "videos/" + time.Now().Format("20060102150405") + "-" + randomFragment() + ext
	videoURL, err := s.Storage.UploadFile(ctx, videoFilename, videoPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	upload := &VideoUpload{
		URL:    videoURL,
		Size:   file.Size,
		Format: strings.TrimPrefix(ext, "."),
	}

	thumbnailFilename := "thumbnails/" + time.Now().Format("20060102150405") + "-" + randomFragment() + ".jpg"
	thumbnailPath := filepath.Join(tempDir, filepath.Base(thumbnailFilename))
	if err := util.GenerateThumbnail(videoPath, thumbnailPath, "3"); err != nil {
		logger.Log.Warn("生成视频封面失败", zap.Error(err))
	} else {
		if url, err := s.Storage.UploadFile(ctx, thumbnailFilename, thumbnailPath, "image/jpeg"); err == nil {
			upload.ThumbnailURL = url
		}
		os.Remove(thumbnailPath)
	}

	if info, err := util.GetVideoInfo(videoPath); err != nil {
		logger.Log.Warn("读取视频时长失败", zap.Error(err))
	} else {
		upload.DurationSeconds = info.Duration
		upload.DurationMinutes = info.DurationMinutes()
	}

	return upload, nil
}

func containsExt(allowed []string, ext string) bool {
	for _, e := range allowed {
		if e == ext {
			return true
		}
	}
	return false
}

func randomFragment() string {
	return strings.Split(uuid.New().String(), "-")[0]
}
