package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	DataDir         string `json:"data_dir"`
	Operator        string `json:"operator"`
	ExitBond        uint64 `json:"exit_bond"`
	ChallengePeriod uint64 `json:"challenge_period_seconds"`
	TreeHeight      int    `json:"tree_height"`
	LogLevel        string `json:"log_level"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".plasma"
	}
	return filepath.Join(home, ".plasma")
}

func DefaultConfig() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		Operator:        "",
		ExitBond:        123456789,
		ChallengePeriod: 7 * 24 * 60 * 60,
		TreeHeight:      10,
		LogLevel:        "info",
	}
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	if !common.IsHexAddress(cfg.Operator) {
		return fmt.Errorf("invalid operator address %q", cfg.Operator)
	}
	if cfg.ExitBond == 0 {
		return errors.New("exit_bond must be > 0")
	}
	if cfg.ChallengePeriod == 0 {
		return errors.New("challenge_period_seconds must be > 0")
	}
	if cfg.TreeHeight <= 0 || cfg.TreeHeight > 32 {
		return errors.New("tree_height must be in 1..32")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	return nil
}

func (cfg Config) OperatorAddress() common.Address {
	return common.HexToAddress(cfg.Operator)
}
