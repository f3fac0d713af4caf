// Package register adds a davsearch-mcp entry to an MCP client configuration file.
package register

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

const (
	ScopeProject = "project"
	ScopeUser    = "user"
)

type mcpServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options describes one registration.
type Options struct {
	ServerName string
	Scope      string   // ScopeProject or ScopeUser
	Directory  string   // Project scope only; defaults to "."
	ServerArgs []string // Forwarded to the server, e.g. ["serve", "--log-level", "debug"]
	Env        []string // KEY=VALUE pairs, e.g. DAVSEARCH_WEBDAV_URL=https://...
	BinaryPath string   // Defaults to the running executable
}

// Run writes the entry and returns the config file it was written to.
func Run(opts Options) (string, error) {
	if opts.Scope != ScopeProject && opts.Scope != ScopeUser {
		return "", fmt.Errorf("unknown scope %q (must be %q or %q)", opts.Scope, ScopeProject, ScopeUser)
	}
	env, err := parseEnv(opts.Env)
	if err != nil {
		return "", err
	}

	binaryPath := opts.BinaryPath
	if binaryPath == "" {
		if binaryPath, err = detectBinaryPath(); err != nil {
			return "", err
		}
	}

	configPath, err := resolveConfigPath(opts.Scope, opts.Directory)
	if err != nil {
		return "", err
	}

	entry := buildEntry(binaryPath, opts.ServerArgs, env)
	if err := writeConfig(configPath, opts.ServerName, entry); err != nil {
		return "", err
	}
	return configPath, nil
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

// SplitArgs separates positional arguments from those after "--".
// dash is the index reported by cobra's ArgsLenAtDash, or -1 when there was no "--".
func SplitArgs(args []string, dash int) (positional []string, serverArgs []string) {
	if dash < 0 || dash > len(args) {
		return args, nil
	}
	return args[:dash], args[dash:]
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid env entry %q (expected KEY=VALUE)", pair)
		}
		env[key] = value
	}
	return env, nil
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return "", fmt.Errorf("resolving executable: %w", err)
	}
	return exe, nil
}

// resolveConfigPath returns <directory>/.mcp.json for project scope and ~/.claude.json for user scope.
func resolveConfigPath(scope string, directory string) (string, error) {
	if scope == ScopeUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		return filepath.Join(home, ".claude.json"), nil
	}
	if directory == "" {
		directory = "."
	}
	dir, err := filepath.Abs(directory)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", directory, err)
	}
	return filepath.Join(dir, ".mcp.json"), nil
}

// buildEntry wraps the binary in "cmd /C" on Windows so clients can spawn it.
func buildEntry(binaryPath string, serverArgs []string, env map[string]string) mcpServerEntry {
	entry := mcpServerEntry{Command: binaryPath, Args: slices.Clone(serverArgs), Env: env}
	if runtime.GOOS == "windows" {
		entry.Command = "cmd"
		entry.Args = append([]string{"/C", binaryPath}, serverArgs...)
	}
	return entry
}

// writeConfig sets mcpServers[serverName] in configPath. Every other key in the
// file is carried over untouched.
func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	doc := map[string]json.RawMessage{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := doc["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil || servers == nil {
			return fmt.Errorf("mcpServers in %s is not an object", configPath)
		}
	}

	encodedEntry, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding %s entry: %w", serverName, err)
	}
	servers[serverName] = encodedEntry
	if doc["mcpServers"], err = json.Marshal(servers); err != nil {
		return fmt.Errorf("encoding mcpServers: %w", err)
	}

	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", configPath, err)
	}
	return writeFileAtomic(configPath, append(output, '\n'))
}

// writeFileAtomic replaces path via a sibling temp file so readers never see a partial config.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
