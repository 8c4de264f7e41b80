package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the defaults a config file may supply.  Command line flags take precedence.
type Config struct {
	CapacityHint int    `yaml:"capacity_hint"`
	Catalog      string `yaml:"catalog"`
	Workers      int    `yaml:"workers"`
	Verbosity    int    `yaml:"verbosity"`
	Sort         bool   `yaml:"sort"`
	Unique       bool   `yaml:"unique"`
	Script       string `yaml:"script"`
}

func DefaultConfig() Config {
	return Config{
		CapacityHint: 32,
		Workers:      4,
		Verbosity:    0,
	}
}

// LoadConfig reads a YAML config file over the defaults.  Unknown keys are an error.
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(pathname)
	if err != nil {
		return cfg, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err = decoder.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", pathname)
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// permList collects repeated -perm flags, each a comma separated permutation such as "1,0,3,2".
type permList [][]int

func (perms *permList) String() string {
	strs := make([]string, len(*perms))
	for i, perm := range *perms {
		strs[i] = formatPerm(perm)
	}
	return strings.Join(strs, " ")
}

func (perms *permList) Set(str string) error {
	perm, err := parsePerm(str)
	if err != nil {
		return err
	}
	*perms = append(*perms, perm)
	return nil
}

func parsePerm(str string) ([]int, error) {
	fields := strings.Split(str, ",")
	perm := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, errors.Wrapf(gomol.ErrInvalidPermutation, "%q", str)
		}
		perm[i] = v
	}
	return perm, nil
}

func formatPerm(perm []int) string {
	strs := make([]string, len(perm))
	for i, v := range perm {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, ",")
}
