package services

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const classImageFolder = "linguistic_horizons_classes"

var ErrMediaNotConfigured = errors.New("image uploads are not configured")

type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	Folder    string `json:"folder"`
}

// MediaService signs browser-side uploads of class images so the API secret
// never leaves the server.
type MediaService struct {
	cloudinaryURL string
	now           func() time.Time
}

func NewMediaService(cloudinaryURL string) *MediaService {
	return &MediaService{cloudinaryURL: cloudinaryURL, now: time.Now}
}

func (s *MediaService) ClassImageSignature() (*UploadSignature, error) {
	if s.cloudinaryURL == "" {
		return nil, ErrMediaNotConfigured
	}

	cld, err := cloudinary.NewFromURL(s.cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}

	parsedURL, err := url.Parse(s.cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("parse cloudinary url: %w", err)
	}
	secret, _ := parsedURL.User.Password()

	paramsToSign, err := api.StructToParams(uploader.UploadParams{
		Folder: classImageFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare signature params: %w", err)
	}

	timestamp := s.now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		return nil, fmt.Errorf("sign upload params: %w", err)
	}

	return &UploadSignature{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    cld.Config.Cloud.APIKey,
		CloudName: cld.Config.Cloud.CloudName,
		Folder:    classImageFolder,
	}, nil
}
