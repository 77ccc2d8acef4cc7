package config

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Configuration error.
var (
	ErrVirtualServerDuplicated        = errors.New("Virtual Server Duplicated")
	ErrVirtualServerAddressDuplicated = errors.New("Virtual Server Address Duplicated")
	ErrPoolMemberDuplicated           = errors.New("Pool Member Duplicated")
	ErrVirtualServerNameEmpty         = errors.New("Virtual Server Name is not specified")
	ErrVirtualServerAddressEmpty      = errors.New("Virtual Server Address is not specified")
	ErrPoolMemberWeightNegative       = errors.New("Pool Member Weight is negative")
)

// Server configuration.
type Server struct {
	Address string `json:"address" yaml:"address"`
	Weight  int    `json:"weight" yaml:"weight"`
}

// VirtualServer configuration.
type VirtualServer struct {
	Name       string   `json:"name" yaml:"name"`
	Address    string   `json:"address" yaml:"address"`
	ServerName string   `json:"server_name" yaml:"server_name"`
	Protocol   string   `json:"protocol" yaml:"protocol"`
	CertFile   string   `json:"cert_file" yaml:"cert_file"`
	KeyFile    string   `json:"key_file" yaml:"key_file"`
	SortPool   bool     `json:"sort_pool" yaml:"sort_pool"`
	Pool       []Server `json:"pool" yaml:"pool"`
}

// Authentication configuration.
type Authentication struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Controller configuration.
type Controller struct {
	Address string         `json:"address" yaml:"address"`
	Auth    Authentication `json:"auth" yaml:"auth"`
}

// ServiceDiscovery configuration.
type ServiceDiscovery struct {
	Type          string `json:"type" yaml:"type"`
	Cluster       string `json:"cluster" yaml:"cluster"`
	Prefix        string `json:"prefix" yaml:"prefix"`
	CertFile      string `json:"cert_file" yaml:"cert_file"`
	KeyFile       string `json:"key_file" yaml:"key_file"`
	TrustedCAFile string `json:"trusted_ca_file" yaml:"trusted_ca_file"`
}

// Configuration is the whole configuration, loaded from a json or
// yaml file depending on the file extension.
type Configuration struct {
	ServiceDiscovery ServiceDiscovery `json:"service_discovery" yaml:"service_discovery"`
	Controller       Controller       `json:"controller" yaml:"controller"`
	VServers         []VirtualServer  `json:"virtual_server" yaml:"virtual_server"`
}

// Load reads the configFile and returns a Configuration object.
func Load(configFile string) (*Configuration, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, err
	}

	c := &Configuration{}
	switch filepath.Ext(configFile) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return nil, err
	}
	if err = c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromString returns a Configuration object from a json string.
func LoadFromString(config string) (*Configuration, error) {
	var err error
	c := &Configuration{}
	decoder := json.NewDecoder(strings.NewReader(config))
	if err = decoder.Decode(c); err != nil {
		return nil, err
	}
	if err = c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) check() error {
	set := make(map[string]bool)
	addrSet := make(map[string]bool)
	for _, vs := range c.VServers {
		if vs.Name == "" {
			return ErrVirtualServerNameEmpty
		}

		if vs.Address == "" {
			return ErrVirtualServerAddressEmpty
		}

		if _, ok := set[vs.Name]; ok {
			return ErrVirtualServerDuplicated
		}
		set[vs.Name] = true

		// two listeners can not share one address
		if _, ok := addrSet[vs.Address]; ok {
			return ErrVirtualServerAddressDuplicated
		}
		addrSet[vs.Address] = true

		pset := make(map[string]bool)
		for _, p := range vs.Pool {
			if p.Weight < 0 {
				return ErrPoolMemberWeightNegative
			}
			if _, ok := pset[p.Address]; ok {
				return ErrPoolMemberDuplicated
			}
			pset[p.Address] = true
		}
	}
	return nil
}
