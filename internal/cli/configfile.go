package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ConfigPathEnv overrides the config file location.
const ConfigPathEnv = "VSEARCH_CONFIG_PATH"

// configPaths lists the candidate config files, most specific first.
func configPaths() []string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return []string{p}
	}
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "vsearch", "config"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".vsearch"))
	}
	return paths
}

// LoadConfigArgs returns the default arguments stored in the first config
// file found: $VSEARCH_CONFIG_PATH, then <user config dir>/vsearch/config,
// then ~/.vsearch. One argument per line; blank lines and # comments are
// skipped. Returns nil when there is no config file.
func LoadConfigArgs() []string {
	for _, path := range configPaths() {
		if args, ok := readArgs(path); ok {
			return args
		}
	}
	return nil
}

func readArgs(path string) ([]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var args []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		args = append(args, line)
	}
	return args, true
}
