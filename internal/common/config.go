package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/nfse-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Paths  PathsConfig
	PDF    PDFConfig
	Report ReportConfig
	Log    LogConfig
}

// PathsConfig holds the directories and files a run reads from and writes to
type PathsConfig struct {
	InputDir     string
	OutputDir    string
	LogDir       string
	PatternsFile string // empty -> embedded default catalog
	Recursive    bool
	SkipHidden   bool
	Dedupe       bool // skip PDFs whose content was already seen in the run
}

// PDFConfig holds text-layer extraction configuration
type PDFConfig struct {
	Backend   string // constants.BackendNative | constants.BackendPdftotext
	Pdftotext string
	MaxPages  int
}

// ReportConfig holds report output configuration
type ReportConfig struct {
	Format      string // constants.FormatXLSX | FormatCSV | FormatSQLite
	PreviewRows int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level    slog.Level
	FileName string
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
	return &Config{
		Paths: PathsConfig{
			InputDir:     getEnv("NFSE_INPUT_DIR", "entrada/notas_pdf"),
			OutputDir:    getEnv("NFSE_OUTPUT_DIR", "saida/relatorios_gerados"),
			LogDir:       getEnv("NFSE_LOG_DIR", "logs"),
			PatternsFile: getEnv("NFSE_PATTERNS_FILE", ""),
			Recursive:    getEnvAsBool("NFSE_RECURSIVE", false),
			SkipHidden:   getEnvAsBool("NFSE_SKIP_HIDDEN", false),
			Dedupe:       getEnvAsBool("NFSE_DEDUPE", false),
		},
		PDF: PDFConfig{
			Backend:   getEnv("NFSE_PDF_BACKEND", constants.BackendNative),
			Pdftotext: getEnv("NFSE_PDFTOTEXT", "pdftotext"),
			MaxPages:  getEnvAsInt("NFSE_MAX_PAGES", 0),
		},
		Report: ReportConfig{
			Format:      getEnv("NFSE_REPORT_FORMAT", constants.FormatXLSX),
			PreviewRows: getEnvAsInt("NFSE_PREVIEW_ROWS", 5),
		},
		Log: LogConfig{
			Level:    getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
			FileName: getEnv("NFSE_LOG_FILE", "extrator.log"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(value))); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("input_dir", c.Paths.InputDir, Required).
		Field("output_dir", c.Paths.OutputDir, Required).
		Field("log_dir", c.Paths.LogDir, Required).
		Field("report_format", c.Report.Format, OneOf(constants.FormatXLSX, constants.FormatCSV, constants.FormatSQLite)).
		Field("pdf_backend", c.PDF.Backend, OneOf(constants.BackendNative, constants.BackendPdftotext)).
		Field("max_pages", c.PDF.MaxPages, NonNegative).
		Field("preview_rows", c.Report.PreviewRows, NonNegative)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidConfig)
	}
	return nil
}
