package profilesrv

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/fsx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/google/uuid"
)

// BodyPhotoDir is the store directory holding uploaded body photos
const BodyPhotoDir = "uploads/bodies"

var allowedPhotoExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Service manages user profiles and their body photos
type Service struct {
	repo       profile.Repository
	files      fsx.FileSystem
	analyzer   profile.PhotoAnalyzer
	publicBase string
}

func NewService(repo profile.Repository, files fsx.FileSystem, analyzer profile.PhotoAnalyzer, publicBase string) *Service {
	return &Service{repo: repo, files: files, analyzer: analyzer, publicBase: publicBase}
}

// Get returns the caller's profile, creating an empty one when missing
func (s *Service) Get(ctx context.Context, userID kernel.UserID) (*profile.Profile, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errx.IsCode(err, profile.CodeProfileNotFound) {
		return nil, err
	}

	p = profile.NewEmpty(userID)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// EnsureProfile creates the empty profile of a new account
func (s *Service) EnsureProfile(ctx context.Context, userID kernel.UserID) error {
	_, err := s.Get(ctx, userID)
	return err
}

func (s *Service) Update(ctx context.Context, userID kernel.UserID, req profile.UpdateRequest) (*profile.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.Apply(req)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UploadBodyPhoto stores the photo and samples the skin tone from it.
// Analysis never fails the upload; it falls back to the default tone.
func (s *Service) UploadBodyPhoto(ctx context.Context, userID kernel.UserID, filename string, data []byte) (*profile.Profile, error) {
	if len(data) == 0 {
		return nil, profile.ErrInvalidPhoto().WithDetail("reason", "empty file")
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	if !allowedPhotoExt[ext] {
		return nil, profile.ErrInvalidPhoto().WithDetail("extension", ext)
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := path.Join(BodyPhotoDir, "body_"+userID.String()+"_"+uuid.NewString()+ext)
	if err := s.files.WriteFile(ctx, key, data); err != nil {
		return nil, err
	}

	tone := s.analyzer.SkinTone(bytes.NewReader(data))
	logx.WithFields(logx.Fields{
		"user_id":   userID,
		"path":      key,
		"skin_tone": tone,
	}).Info("body photo stored")

	p.BodyPhotoURL = ptrx.String(fsx.PublicURL(s.publicBase, key))
	p.SkinToneHex = ptrx.String(tone)
	p.Apply(profile.UpdateRequest{})

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteBodyPhoto clears the photo and face crop. The stored file is kept.
func (s *Service) DeleteBodyPhoto(ctx context.Context, userID kernel.UserID) (*profile.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.BodyPhotoURL = nil
	p.FaceCropURL = nil
	p.Apply(profile.UpdateRequest{})

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
