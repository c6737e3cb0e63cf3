package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendMinio    = "minio"
	BackendMemory   = "memory"
)

type (
	APP struct {
		Name         string
		Host         string
		Port         string
		Env          string
		JWTSecret    string
		TokenTTL     time.Duration
		ChunkSize    int
		ChunkTimeout time.Duration
	}
	Storage struct {
		MaxFilesPerUser int
		MaxPayloadBytes int64
		BlobBackend     string
		MetaBackend     string
		DefaultPageSize int
		MaxPageSize     int
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	S3 struct {
		Region          string
		Endpoint        string
		AccessKeyID     string
		SecretAccessKey string
		BucketUploads   string
	}
	Minio struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}
	MQ struct {
		Enabled      bool
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	CORS struct {
		AllowOrigins []string
	}

	Config struct {
		App     APP
		Storage Storage
		DB      DB
		S3      S3
		Minio   Minio
		MQ      MQ
		CORS    CORS
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n > 0 {
		return n
	}
	return def
}

func getBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return def
}

func getList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func Load() Config {
	app := APP{
		Name:         getEnv("SERVICE_NAME", "filestorageapi"),
		Host:         getEnv("SERVICE_HOST", ""),
		Port:         getEnv("SERVICE_PORT", "8080"),
		Env:          getEnv("SERVICE_ENV", ""),
		JWTSecret:    getEnv("SERVICE_JWT_SECRET", ""),
		TokenTTL:     getDuration("SERVICE_TOKEN_TTL", 24*time.Hour),
		ChunkSize:    getInt("STORAGE_CHUNK_SIZE", 8192),
		ChunkTimeout: getDuration("STORAGE_CHUNK_TIMEOUT", 30*time.Second),
	}
	storage := Storage{
		MaxFilesPerUser: getInt("STORAGE_MAX_FILES_PER_USER", 10),
		MaxPayloadBytes: int64(getInt("STORAGE_MAX_PAYLOAD_BYTES", 10<<20)),
		BlobBackend:     strings.ToLower(getEnv("STORAGE_BLOB_BACKEND", BackendPostgres)),
		MetaBackend:     strings.ToLower(getEnv("STORAGE_META_BACKEND", BackendPostgres)),
		DefaultPageSize: getInt("STORAGE_DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:     getInt("STORAGE_MAX_PAGE_SIZE", 100),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	s3 := S3{
		Region:          getEnv("S3_REGION", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		BucketUploads:   getEnv("S3_BUCKET_UPLOADS", ""),
	}
	minio := Minio{
		Endpoint:  getEnv("MINIO_ENDPOINT", ""),
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", "files"),
		UseSSL:    getBool("MINIO_USE_SSL", false),
	}
	mq := MQ{
		Enabled:      getBool("RABBITMQ_ENABLED", true),
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "file-storage"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "topic"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "file-storage-audit"),
	}
	cors := CORS{
		AllowOrigins: getList("CORS_ALLOW_ORIGINS", []string{"*"}),
	}

	return Config{
		App:     app,
		Storage: storage,
		DB:      db,
		S3:      s3,
		Minio:   minio,
		MQ:      mq,
		CORS:    cors,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	if c.App.JWTSecret == "" {
		return fmt.Errorf("SERVICE_JWT_SECRET is required")
	}
	switch c.Storage.BlobBackend {
	case BackendPostgres, BackendS3, BackendMinio, BackendMemory:
	default:
		return fmt.Errorf("unknown blob backend %q", c.Storage.BlobBackend)
	}
	switch c.Storage.MetaBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown metadata backend %q", c.Storage.MetaBackend)
	}
	if c.Storage.BlobBackend == BackendPostgres && c.Storage.MetaBackend != BackendPostgres {
		return fmt.Errorf("postgres blob backend requires postgres metadata backend")
	}
	if c.Storage.DefaultPageSize > c.Storage.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max %d", c.Storage.DefaultPageSize, c.Storage.MaxPageSize)
	}
	return nil
}
