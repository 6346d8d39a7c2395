package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/netx"
	sc "github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/textx"
)

const exportContentType = "text/markdown; charset=utf-8"

var loadDefaultAWSConfig = config.LoadDefaultConfig

// presigner is the part of *s3.PresignClient the export needs.
type presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ExportService writes all notes of a user into one markdown document in
// object storage and hands back a time-limited download link.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	httpClient  *http.Client
	now         func() time.Time

	newPresigner func(ctx context.Context) (presigner, error)
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ExportService {
	s := &ExportService{
		db:          db,
		repomanager: m,
		config:      cfg,
		httpClient:  &http.Client{Timeout: time.Minute},
		now:         time.Now,
	}
	s.newPresigner = s.getPresignClient
	return s
}

func (s *ExportService) getPresignClient(ctx context.Context) (presigner, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return s3.NewPresignClient(client), nil
}

func exportKey(userID string, d time.Time) string {
	return fmt.Sprintf("exports/%s/%d/%02d/%02d/%s.md", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

type frontMatter struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Pinned    bool      `yaml:"pinned"`
	Encrypted bool      `yaml:"encrypted"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// RenderExport turns notes into markdown documents with YAML front matter,
// one after another. Encrypted notes keep their metadata but no body.
func RenderExport(notes []models.Note) ([]byte, error) {
	var buf bytes.Buffer
	for i, n := range notes {
		if i > 0 {
			buf.WriteString("\n")
		}
		fm, err := yaml.Marshal(frontMatter{
			ID:        n.ID,
			Title:     n.Title,
			Pinned:    n.IsPinned,
			Encrypted: n.IsEncrypted,
			CreatedAt: n.CreatedAt.UTC(),
			UpdatedAt: n.UpdatedAt.UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("front matter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(fm)
		buf.WriteString("---\n\n")

		if !n.IsEncrypted {
			if body := html.UnescapeString(textx.PlainText(n.Content)); body != "" {
				buf.WriteString(body)
				buf.WriteString("\n")
			}
		}
	}
	return buf.Bytes(), nil
}

// Export uploads the user's notes and returns a presigned GET URL valid
// for the configured link expiry.
func (s *ExportService) Export(ctx context.Context, userID string) (string, error) {
	notes, err := s.repomanager.Notes(s.db).List(ctx, userID, models.NoteFilter{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	doc, err := RenderExport(redactAll(notes))
	if err != nil {
		return "", err
	}

	pc, err := s.newPresigner(ctx)
	if err != nil {
		return "", fmt.Errorf("object storage: %w", err)
	}

	bucket := s.config.S3Bucket
	key := exportKey(userID, s.now().UTC())
	contentType := exportContentType

	put, err := pc.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	if err := netx.UploadToPresignedURL(ctx, s.httpClient, put.URL, contentType, doc); err != nil {
		return "", err
	}

	get, err := pc.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ExportLinkExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return get.URL, nil
}
