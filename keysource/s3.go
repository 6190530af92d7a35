package keysource

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// loadFromS3 reads a hex key stored as an S3 object.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket/object/key?region=us-east-1&endpoint=custom.s3.com
// Without embedded credentials the default AWS credential chain is used.
func (f *KeySourceFactory) loadFromS3(ctx context.Context, u *url.URL) (*ecdsa.PrivateKey, error) {
	bucket := u.Host
	objectKey := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || objectKey == "" {
		return nil, fmt.Errorf("%w: S3 URI must name a bucket and an object", interfaces.ErrSigningConfiguration)
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}

	cfg := &aws.Config{
		Region: aws.String(region),
	}
	if endpoint := query.Get("endpoint"); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if u.User != nil {
		secretKey, _ := u.User.Password()
		cfg.Credentials = credentials.NewStaticCredentials(u.User.Username(), secretKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create AWS session: %v", interfaces.ErrSigningConfiguration, err)
	}

	f.log.Debug("Loading signing key from S3", slog.String("bucket", bucket), slog.String("key", objectKey))

	result, err := s3.New(sess).GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get key object from S3: %v", interfaces.ErrSigningConfiguration, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read key object: %v", interfaces.ErrSigningConfiguration, err)
	}

	return ParseHexKey(string(bytes.TrimSpace(data)))
}
