package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/config"
	"github.com/notmine/community-server/internal/errs"
)

var (
	AvatarClient  *s3.Client
	AvatarBucket  string
	avatarBaseURL string
)

// InitAvatarStorage initializes the R2-compatible client that holds avatar
// images, using static credentials and a custom endpoint.
func InitAvatarStorage(cfg config.AvatarStorageConfig) error {
	if cfg.AccessKeyID == "" || cfg.BucketName == "" {
		log.Println("Avatar storage not configured, avatar uploads disabled")
		return nil
	}
	AvatarBucket = cfg.BucketName
	avatarBaseURL = strings.TrimSuffix(cfg.PublicBaseURL, "/")
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	AvatarClient = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Println("Successfully initialized avatar storage client")
	return nil
}

// AvatarKey is the object key for a profile's avatar image.
func AvatarKey(profileID uuid.UUID) string {
	return fmt.Sprintf("avatars/%s", profileID)
}

// AvatarPublicURL is the displayable URL stored on the profile record.
func AvatarPublicURL(profileID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", avatarBaseURL, AvatarKey(profileID))
}

// PresignAvatarUpload creates a presigned PUT URL for uploading an avatar.
func PresignAvatarUpload(ctx context.Context, profileID uuid.UUID, expires time.Duration) (string, error) {
	if AvatarClient == nil {
		return "", errs.Wrap(errs.ErrBackendUnavailable, "avatar storage not configured")
	}
	presigner := s3.NewPresignClient(AvatarClient)
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(AvatarBucket),
		Key:    aws.String(AvatarKey(profileID)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// VerifyAvatarExists checks whether an avatar object was actually uploaded
// before its URL is persisted on the profile.
func VerifyAvatarExists(ctx context.Context, profileID uuid.UUID) (bool, error) {
	if AvatarClient == nil {
		return false, errs.Wrap(errs.ErrBackendUnavailable, "avatar storage not configured")
	}
	_, err := AvatarClient.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(AvatarBucket),
		Key:    aws.String(AvatarKey(profileID)),
	})
	if err != nil {
		var nsk *s3types.NotFound
		if errors.As(err, &nsk) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
