package config

import (
	"io"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/ini.v1"
)

const DefaultURI = "v1"

type RootConfig struct {
	Hosts []Host
	Path  string
}

type Host struct {
	Name     string
	Host     string
	URI      string
	Username string
	Password string
	Token    string
}

// Load reads the root configuration from 'path', or from '~/.sugarrc' when
// 'path' is empty. A missing file yields an empty configuration.
func Load(path string) (*RootConfig, error) {
	if path == "" {
		rootPath, err := GetRootPath()
		if err != nil {
			return nil, err
		}
		path = rootPath
	}
	return loadRootConfigFromPath(path)
}

func loadRootConfigFromPath(path string) (*RootConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &RootConfig{Path: path}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rootCfg, err := loadRootConfigFromBytes(data)
	if err != nil {
		return nil, err
	}
	rootCfg.Path = path
	return rootCfg, nil
}

func loadRootConfigFromBytes(data []byte) (*RootConfig, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, err
	}

	var result RootConfig

	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		host := Host{
			Name:     section.Name(),
			Host:     section.Key("host").String(),
			URI:      section.Key("uri").MustString(DefaultURI),
			Username: section.Key("username").String(),
			Password: section.Key("password").String(),
			Token:    section.Key("token").String(),
		}
		result.Hosts = append(result.Hosts, host)
	}

	result.sortHosts()

	return &result, nil
}

func (rootCfg *RootConfig) sortHosts() {
	sort.Slice(rootCfg.Hosts, func(i, j int) bool {
		left := rootCfg.Hosts[i].Name
		right := rootCfg.Hosts[j].Name
		return strings.Compare(left, right) == -1
	})
}

// Save writes the configuration back to its Path. The file holds
// credentials, so it is only readable by its owner.
func (rootCfg *RootConfig) Save() error {
	file, err := os.OpenFile(rootCfg.Path,
		os.O_RDWR|os.O_CREATE|os.O_TRUNC,
		0600)
	if err != nil {
		return err
	}
	defer file.Close()
	return rootCfg.saveToWriter(file)
}

func (rootCfg *RootConfig) saveToWriter(file io.Writer) error {
	cfg := ini.Empty(ini.LoadOptions{})

	for _, host := range rootCfg.Hosts {
		section, err := cfg.NewSection(host.Name)
		if err != nil {
			return err
		}

		keys := []struct{ name, value string }{
			{"host", host.Host},
			{"uri", host.URI},
			{"username", host.Username},
			{"password", host.Password},
			{"token", host.Token},
		}
		for _, key := range keys {
			if key.value == "" {
				continue
			}
			if _, err := section.NewKey(key.name, key.value); err != nil {
				return err
			}
		}
	}

	_, err := cfg.WriteTo(file)
	return err
}

// SectionName is the name under which a backend is stored
func SectionName(host string) string {
	return slug.Make(host)
}

/*
FindHost
Return the host whose section name or 'host' value matches. Trailing slashes
are ignored.
*/
func (rootCfg *RootConfig) FindHost(name string) *Host {
	if rootCfg == nil {
		return nil
	}
	name = strings.TrimRight(name, "/")
	for i := range rootCfg.Hosts {
		host := &rootCfg.Hosts[i]
		if host.Name == name ||
			strings.TrimRight(host.Host, "/") == name ||
			host.Name == SectionName(name) {
			return host
		}
	}
	return nil
}

// SetHost adds a host, or replaces the one with the same section name
func (rootCfg *RootConfig) SetHost(host Host) {
	host.Host = strings.TrimRight(host.Host, "/")
	if host.Name == "" {
		host.Name = SectionName(host.Host)
	}
	for i := range rootCfg.Hosts {
		if rootCfg.Hosts[i].Name == host.Name {
			rootCfg.Hosts[i] = host
			return
		}
	}
	rootCfg.Hosts = append(rootCfg.Hosts, host)
	rootCfg.sortHosts()
}

func GetRootPath() (string, error) {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		usr, err := user.Current()
		if err != nil {
			return "", err
		}
		homeDir = usr.HomeDir
	}
	return filepath.Join(homeDir, ".sugarrc"), nil
}
