package controller

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlb/wrrlb/balancer"
	"github.com/openlb/wrrlb/config"
)

func mockBalancer(t *testing.T) *balancer.Balancer {
	jsonBody := `{"virtual_server":[{"name":"web","address":"127.0.0.1:8089","pool":[{"address":"127.0.0.1:10001","weight":2},{"address":"127.0.0.1:10002","weight":1}]}]}`
	c, err := config.LoadFromString(jsonBody)
	require.NoError(t, err)

	b, err := balancer.New(c.VServers)
	require.NoError(t, err)
	return b
}

func doRequest(h http.Handler, req *http.Request) *http.Response {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Result()
}

func body(t *testing.T, resp *http.Response) string {
	data, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()
	return string(data)
}

func TestStatsHandler(t *testing.T) {
	b := mockBalancer(t)
	req := httptest.NewRequest("GET", "/stats", nil)
	resp := doRequest(statsHandler(b), req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body(t, resp), "Pool-web"))
}

func TestListAllVirtualServer(t *testing.T) {
	b := mockBalancer(t)
	req := httptest.NewRequest("GET", "/vs", nil)
	resp := doRequest(listAllVirtualServer(b), req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body(t, resp)
	assert.Contains(t, data, "Name:web")
	assert.Contains(t, data, "Status:stopped")
}

func TestListVirtualServer(t *testing.T) {
	b := mockBalancer(t)
	req := httptest.NewRequest("GET", "/vs/web", nil)
	req = mux.SetURLVars(req, map[string]string{
		"name": "web",
	})
	resp := doRequest(listVirtualServer(b), req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body(t, resp)
	assert.Contains(t, data, "127.0.0.1:10001: (w=2)")
	assert.Contains(t, data, "127.0.0.1:10002: (w=1)")
}

func TestListVirtualServerNotFound(t *testing.T) {
	b := mockBalancer(t)
	req := httptest.NewRequest("GET", "/vs/api", nil)
	req = mux.SetURLVars(req, map[string]string{
		"name": "api",
	})
	resp := doRequest(listVirtualServer(b), req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func modifyRequest(name, action string) *http.Request {
	req := httptest.NewRequest("POST", "/vs/"+name,
		bytes.NewBufferString(`{"action":"`+action+`"}`))
	return mux.SetURLVars(req, map[string]string{
		"name": name,
	})
}

func TestModifyVirtualServerStatus(t *testing.T) {
	b := mockBalancer(t)

	resp := doRequest(modifyVirtualServerStatus(b), modifyRequest("web", "enable"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body(t, resp))

	vs, err := b.FindVirtualServer("web")
	require.NoError(t, err)
	assert.Equal(t, balancer.STATUS_ENABLED, vs.Status())

	resp = doRequest(modifyVirtualServerStatus(b), modifyRequest("web", "enable"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, balancer.ErrVirtualServerAlreadyEnabled.Error(), body(t, resp))

	resp = doRequest(modifyVirtualServerStatus(b), modifyRequest("web", "disable"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body(t, resp))
	assert.Equal(t, balancer.STATUS_DISABLED, vs.Status())
}

func TestModifyVirtualServerUnknownAction(t *testing.T) {
	b := mockBalancer(t)
	resp := doRequest(modifyVirtualServerStatus(b), modifyRequest("web", "restart"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestModifyVirtualServerNotFound(t *testing.T) {
	b := mockBalancer(t)
	resp := doRequest(modifyVirtualServerStatus(b), modifyRequest("api", "enable"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
