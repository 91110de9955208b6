package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yumyai/orthogroup/logger"
)

// Env is the process environment the pipeline depends on.
type Env struct {
	DBPath    string
	FastaPath string
	Mafft     string
	MafftArgs []string
	CDHit     string
	CDHitArgs []string
	Samtools  string
	LogLevel  string
}

// LoadEnv reads an optional dotenv file, then the environment. Variables
// already set in the environment win over the file.
func LoadEnv(files ...string) Env {
	if err := godotenv.Load(files...); err != nil {
		logger.Warn("No .env found, using local environment")
	}

	env := Env{
		DBPath:    os.Getenv("ORTHOGROUP_DB"),
		FastaPath: os.Getenv("ORTHOGROUP_FASTA"),
		Mafft:     getenvDefault("MAFFT_EXECUTABLE", "mafft"),
		MafftArgs: strings.Fields(os.Getenv("MAFFT_ADDITIONAL_ARGUMENTS")),
		CDHit:     getenvDefault("CD_HIT_EXECUTABLE", "cd-hit"),
		CDHitArgs: strings.Fields(os.Getenv("CD_HIT_ADDITIONAL_ARGUMENTS")),
		Samtools:  getenvDefault("SAMTOOLS_EXECUTABLE", "samtools"),
		LogLevel:  getenvDefault("ORTHOGROUP_LOG_LEVEL", "info"),
	}
	if env.DBPath == "" {
		logger.Warn("No local environment (ORTHOGROUP_DB), using default value (./data/orthodb.sqlite)")
		env.DBPath = "./data/orthodb.sqlite"
	}
	return env
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
