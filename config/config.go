package config

import "time"

const (
	DefaultBaseUrl       = "http://localhost:3000/api"
	DefaultTimeoutMs     = 30000
	DefaultMaxRetries    = 3
	DefaultRetryDelayMs  = 1000
	DefaultApiPort       = "8080"
	DefaultGalleryDir    = "generated"
	DefaultThumbnailSize = 300
	DefaultGalleryQueue  = 16

	TransportHttp = "http"
	TransportGrpc = "grpc"
)

type Config struct {
	Api        ApiConfig        `yaml:"api"`
	Generation GenerationConfig `yaml:"generation"`
	Rpc        RpcConfig        `yaml:"rpc"`
	Queue      QueueConfig      `yaml:"queue"`
	Gallery    GalleryConfig    `yaml:"gallery"`
	Log        LogConfig        `yaml:"log"`
}

type ApiConfig struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowedOrigins"`
}

// GenerationConfig describes the remote generation service. BaseUrl is the
// API root (e.g. http://localhost:3000/api); image paths returned by the
// service are resolved against its origin.
type GenerationConfig struct {
	BaseUrl            string `yaml:"baseUrl"`
	Transport          string `yaml:"transport"`
	TimeoutMs          int    `yaml:"timeoutMs"`
	MaxRetries         int    `yaml:"maxRetries"`
	RetryDelayMs       int    `yaml:"retryDelayMs"`
	ExponentialBackoff bool   `yaml:"exponentialBackoff"`
}

func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutMs) * time.Millisecond
}

func (g GenerationConfig) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelayMs) * time.Millisecond
}

// RpcConfig is only read when Generation.Transport is "grpc".
type RpcConfig struct {
	Peer string `yaml:"peer"`
	Port string `yaml:"port"`
}

type QueueConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// GalleryConfig controls local copies of generated images. QueueSize bounds
// how many server-side save jobs may wait at once.
type GalleryConfig struct {
	Dir           string `yaml:"dir"`
	MaxConcurrent int    `yaml:"maxConcurrent"`
	QueueSize     int    `yaml:"queueSize"`
	Thumbnails    bool   `yaml:"thumbnails"`
	ThumbnailSize int    `yaml:"thumbnailSize"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WithDefaults returns a copy of c with every unset field filled in.
func (c Config) WithDefaults() Config {
	if c.Api.Port == "" {
		c.Api.Port = DefaultApiPort
	}
	if c.Api.AllowedOrigins == "" {
		c.Api.AllowedOrigins = "*"
	}

	if c.Generation.BaseUrl == "" {
		c.Generation.BaseUrl = DefaultBaseUrl
	}
	if c.Generation.Transport == "" {
		c.Generation.Transport = TransportHttp
	}
	if c.Generation.TimeoutMs <= 0 {
		c.Generation.TimeoutMs = DefaultTimeoutMs
	}
	if c.Generation.MaxRetries < 0 {
		c.Generation.MaxRetries = 0
	}
	if c.Generation.RetryDelayMs <= 0 {
		c.Generation.RetryDelayMs = DefaultRetryDelayMs
	}

	if c.Queue.Concurrency <= 0 {
		c.Queue.Concurrency = 1
	}

	if c.Gallery.Dir == "" {
		c.Gallery.Dir = DefaultGalleryDir
	}
	if c.Gallery.MaxConcurrent <= 0 {
		c.Gallery.MaxConcurrent = 4
	}
	if c.Gallery.QueueSize <= 0 {
		c.Gallery.QueueSize = DefaultGalleryQueue
	}
	if c.Gallery.ThumbnailSize <= 0 {
		c.Gallery.ThumbnailSize = DefaultThumbnailSize
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	return c
}

// Default is the configuration used when no config file is available.
func Default() Config {
	return Config{
		Generation: GenerationConfig{MaxRetries: DefaultMaxRetries},
	}.WithDefaults()
}
