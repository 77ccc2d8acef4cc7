package config

import (
	"io/ioutil"
	"syscall"
	"testing"
)

func load(t *testing.T, body, ext string) (*Configuration, error) {
	f, err := ioutil.TempFile("", "testconf-*"+ext)
	if err != nil {
		t.Fatalf("TempFile error: %v", err)
	}
	defer syscall.Unlink(f.Name())

	ioutil.WriteFile(f.Name(), []byte(body), 0644)

	return Load(f.Name())
}

func TestLoad(t *testing.T) {
	jsonBody := `{"virtual_server":[{"name":"web","address":"127.0.0.1:8081","server_name":"localhost","pool":[{"address":"127.0.0.1:10001","weight":1},{"address":"127.0.0.1:10002","weight":2}]}]}`

	c, err := load(t, jsonBody, ".json")
	if err != nil {
		t.Errorf("Load error: %v", err)
		return
	}
	if len(c.VServers) != 1 {
		t.Errorf("The number of virtual_server should be 1")
	}

	vs := c.VServers[0]
	if vs.Address != "127.0.0.1:8081" || vs.Protocol != "" || vs.ServerName != "localhost" || len(vs.Pool) != 2 {
		t.Errorf("Load configuration error, got %v", c)
	}

	s := vs.Pool[1]
	if s.Address != "127.0.0.1:10002" || s.Weight != 2 {
		t.Errorf("Parse server error, got %v", s)
	}
}

func TestLoadYAML(t *testing.T) {
	yamlBody := `
virtual_server:
  - name: web
    address: 127.0.0.1:8081
    sort_pool: true
    pool:
      - address: 127.0.0.1:10001
        weight: 1
      - address: 127.0.0.1:10002
        weight: 2
controller:
  address: 127.0.0.1:6587
  auth:
    username: admin
    password: admin
`
	c, err := load(t, yamlBody, ".yaml")
	if err != nil {
		t.Errorf("Load error: %v", err)
		return
	}
	if len(c.VServers) != 1 {
		t.Errorf("The number of virtual_server should be 1")
	}

	vs := c.VServers[0]
	if vs.Name != "web" || !vs.SortPool || len(vs.Pool) != 2 {
		t.Errorf("Load configuration error, got %v", c)
	}
	if vs.Pool[1].Weight != 2 {
		t.Errorf("Parse server error, got %v", vs.Pool[1])
	}
	if c.Controller.Auth.Username != "admin" {
		t.Errorf("Parse controller error, got %v", c.Controller)
	}
}

func TestLoadEmpty(t *testing.T) {
	c, err := load(t, "{}", ".json")
	if err != nil {
		t.Errorf("Load error: %v", err)
		return
	}
	t.Logf("%v", c)
}

func TestLoadFromString(t *testing.T) {
	c, err := LoadFromString(`{"virtual_server":[{"name":"web","address":"127.0.0.1:8081"}]}`)
	if err != nil {
		t.Errorf("LoadFromString error: %v", err)
		return
	}
	if len(c.VServers) != 1 {
		t.Errorf("The number of virtual_server should be 1")
	}
}

func TestCheckVirtualServerDuplicated(t *testing.T) {
	jsonBody := `{"virtual_server":[{"name":"web","address":"127.0.0.1:8081"},{"name":"web","address":"127.0.0.1:8082"}]}`
	_, err := load(t, jsonBody, ".json")
	if err != ErrVirtualServerDuplicated {
		t.Errorf("expect error %v, but got %v", ErrVirtualServerDuplicated, err)
	}
}

func TestCheckVirtualServerAddressDuplicated(t *testing.T) {
	jsonBody := `{"virtual_server":[{"name":"web","address":"127.0.0.1:8081"},{"name":"api","address":"127.0.0.1:8081"}]}`
	_, err := load(t, jsonBody, ".json")
	if err != ErrVirtualServerAddressDuplicated {
		t.Errorf("expect error %v, but got %v", ErrVirtualServerAddressDuplicated, err)
	}
}

func TestCheckPoolMemberDuplicated(t *testing.T) {
	jsonBody := `{"virtual_server":[{"name":"web","address":"127.0.0.1:8081","pool":[{"address":"127.0.0.1:10001"},{"address":"127.0.0.1:10001"}]}]}`
	_, err := load(t, jsonBody, ".json")
	if err != ErrPoolMemberDuplicated {
		t.Errorf("expect error %v, but got %v", ErrPoolMemberDuplicated, err)
	}
}

func TestCheckNameEmpty(t *testing.T) {
	jsonBody := `{"virtual_server":[{"address":"127.0.0.1:8081"}]}`
	_, err := load(t, jsonBody, ".json")
	if err != ErrVirtualServerNameEmpty {
		t.Errorf("expect error %v, but got %v", ErrVirtualServerNameEmpty, err)
	}
}

func TestCheckAddressEmpty(t *testing.T) {
	jsonBody := `{"virtual_server":[{"name":"web"}]}`
	_, err := load(t, jsonBody, ".json")
	if err != ErrVirtualServerAddressEmpty {
		t.Errorf("expect error %v, but got %v", ErrVirtualServerAddressEmpty, err)
	}
}

func TestCheckWeightNegative(t *testing.T) {
	jsonBody := `{"virtual_server":[{"name":"web","address":"127.0.0.1:8081","pool":[{"address":"127.0.0.1:10001","weight":-1}]}]}`
	_, err := load(t, jsonBody, ".json")
	if err != ErrPoolMemberWeightNegative {
		t.Errorf("expect error %v, but got %v", ErrPoolMemberWeightNegative, err)
	}
}
