package balancer

import (
	"errors"
	"net/http"
)

// Known errors.
var (
	ErrNotSupportedProto            = errors.New("not supported protocol")
	ErrVirtualServerNameEmpty       = errors.New("virtual server name is not specified")
	ErrVirtualServerAddressEmpty    = errors.New("virtual server address is not specified")
	ErrVirtualServerNotFound        = errors.New("virtual server not found")
	ErrVirtualServerAlreadyEnabled  = errors.New("virtual server is already enabled")
	ErrVirtualServerAlreadyDisabled = errors.New("virtual server is already disabled")
)

type balancerError struct {
	StatusCode int
	ErrMsg     string
}

func (e *balancerError) Error() string {
	return e.ErrMsg
}

// Known balancerError.
var (
	ErrHostNotMatch     = &balancerError{http.StatusBadRequest, "Host Not Match"}
	ErrNoBackendReady   = &balancerError{http.StatusBadGateway, "No Backend Ready"}
	ErrInternalBalancer = &balancerError{http.StatusInternalServerError, "Balancer Internal Error"}
)

// WriteError writes balancerError to http.ResponseWriter.
func WriteError(w http.ResponseWriter, err *balancerError) {
	w.WriteHeader(err.StatusCode)
	w.Write([]byte(err.ErrMsg))
}
