package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Dataset files. DataFile is canonical; CompatFile receives a copy on
	// every write so older pages keep working.
	DataFile   string
	CompatFile string
	BackupDir  string
	ImageDir   string
	ExportDir  string

	ExportInterval time.Duration

	// SharedSpaceID marks the single always-shared space. Its display label
	// overrides whatever status the record carries.
	SharedSpaceID int

	JWTSecret         string
	AdminPasswordHash string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		DataFile:   getenv("DATA_FILE", "spaces_new.json"),
		CompatFile: getenv("COMPAT_FILE", "spaces.json"),
		BackupDir:  getenv("BACKUP_DIR", "backups"),
		ImageDir:   getenv("IMG_DIR", "img"),
		ExportDir:  getenv("EXPORT_DIR", "."),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.ExportInterval = getenvDuration("EXPORT_INTERVAL", 2*time.Second)
	cfg.SharedSpaceID = getenvInt("SHARED_SPACE_ID", 140)

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	cfg.AdminPasswordHash = mustGetenv("ADMIN_PASSWORD_HASH")
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
