package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// UploadConfig holds the S3-compatible destination for `pack --upload`.
// All fields come from FUNCPACK_S3_* environment variables, with a .env file
// in the working directory honored for local use.
type UploadConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// LoadUploadConfig reads the upload destination from the environment.
// Missing variables leave Configured() false; that is not an error.
func LoadUploadConfig() UploadConfig {
	_ = godotenv.Load()

	return UploadConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("FUNCPACK_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("FUNCPACK_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("FUNCPACK_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("FUNCPACK_S3_SECRET_KEY")),
		Bucket:    strings.TrimSpace(os.Getenv("FUNCPACK_S3_BUCKET")),
		Prefix:    strings.Trim(strings.TrimSpace(os.Getenv("FUNCPACK_S3_PREFIX")), "/"),
		UseSSL:    resolveUseSSL(),
	}
}

// Configured reports whether enough is set to attempt an upload.
func (c UploadConfig) Configured() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

func resolveUseSSL() bool {
	raw := strings.TrimSpace(os.Getenv("FUNCPACK_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
