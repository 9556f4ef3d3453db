package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	// MusicDir receives downloaded audio files.
	MusicDir string `yaml:"music_dir"`

	// ThumbnailDir receives cropped album art.
	ThumbnailDir string `yaml:"thumbnail_dir"`

	// WorkDir holds the stage hand-off files.
	WorkDir string `yaml:"work_dir"`

	ThumbnailSize int `yaml:"thumbnail_size"`

	Downloader DownloaderConfig `yaml:"downloader"`
	Enricher   EnricherConfig   `yaml:"enricher"`
	Storage    StorageConfig    `yaml:"storage"`
}

type DownloaderConfig struct {
	CookiesFile      string `yaml:"cookies_file"`
	MusicCookiesFile string `yaml:"music_cookies_file"`
}

type EnricherConfig struct {
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	CredentialsFile string `yaml:"credentials_file"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	OutputDir string `yaml:"output_dir"`

	// GCS options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.MusicDir == "" {
		config.MusicDir = "music"
	}

	if config.ThumbnailDir == "" {
		config.ThumbnailDir = filepath.Join("assets", "bin", "thumbnails")
	}

	if config.WorkDir == "" {
		config.WorkDir = "."
	}

	if config.ThumbnailSize == 0 {
		config.ThumbnailSize = 544
	}

	if config.Downloader.CookiesFile == "" {
		config.Downloader.CookiesFile = filepath.Join("scripts", "cookies.txt")
	}

	if config.Downloader.MusicCookiesFile == "" {
		config.Downloader.MusicCookiesFile = filepath.Join("scripts", "cookies_youtubemusic.txt")
	}

	if config.Enricher.Model == "" {
		config.Enricher.Model = "gpt-4o"
	}

	if config.Enricher.CredentialsFile == "" {
		config.Enricher.CredentialsFile = "config.json"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}

	if config.Storage.OutputDir == "" {
		config.Storage.OutputDir = "output"
	}

	return config, nil
}

// Credentials holds the completion backend's API credentials, loaded once at
// process start.
type Credentials struct {
	APIKey       string `json:"api_key"`
	Organization string `json:"organization"`
	ProjectID    string `json:"project_id"`
}

type credentialsFile struct {
	OpenAICredentials Credentials `json:"openai_credentials"`
}

// LoadCredentials reads the JSON credentials file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var file credentialsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	if file.OpenAICredentials.APIKey == "" {
		return nil, fmt.Errorf("credentials file %s has no api_key", path)
	}
	return &file.OpenAICredentials, nil
}
