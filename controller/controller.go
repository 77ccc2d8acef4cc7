// Package controller provides REST API to inspect and operate the balancer
//
// controller API
//
// - Authentication
// 	Basic HTTP Auth
//
// - Stats
//	GET http://{controller_address}/stats
//
// - List All LB instance
//	GET http://{controller_address}/vs
//
// - List pool member of LB instance
//	GET http://{controller_address}/vs/{name}
//
// - Enable LB instance
//	POST http://{controller_address}/vs/{name}
//	Body {"action":"enable"}
//
// - Disable LB instance
//	POST http://{controller_address}/vs/{name}
//	Body {"action":"disable"}
//
// The pool of a virtual server is fixed at startup, so there are no
// member add/remove endpoints.
package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/openlb/wrrlb/balancer"
	"github.com/openlb/wrrlb/config"
)

// Controller provides interface to operate balancer.
type Controller struct {
	Address string
	Auth    *Authentication
}

// New returns a Controller object.
func New(ctlCfg *config.Controller) *Controller {
	return &Controller{
		Address: ctlCfg.Address,
		Auth:    &Authentication{ctlCfg.Auth.Username, ctlCfg.Auth.Password},
	}
}

// Run starts the controller.
func (c *Controller) Run(balancer *balancer.Balancer) {
	r := mux.NewRouter()
	r.Handle("/stats", statsHandler(balancer)).Methods("GET")
	r.Handle("/vs", listAllVirtualServer(balancer)).Methods("GET")
	r.Handle("/vs/{name}", listVirtualServer(balancer)).Methods("GET")
	r.Handle("/vs/{name}", modifyVirtualServerStatus(balancer)).Methods("POST")
	go func() {
		if err := http.ListenAndServe(c.Address, BasicAuth(c.Auth)(r)); err != nil {
			panic(err)
		}
	}()
}

func statsHandler(b *balancer.Balancer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := []string{}
		for _, vs := range b.VServers {
			s := vs.Stats()
			log.Infof(s)
			result = append(result, s)
		}
		io.WriteString(w, strings.Join(result, "\n"))
	})
}

func listAllVirtualServer(b *balancer.Balancer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, vs := range b.VServers {
			data := fmt.Sprintf("Name:%s, Address:%s, Status:%s, Pool:\n%s\n\n",
				vs.Name, vs.Address, vs.Status(), vs.Pool)
			io.WriteString(w, data)
		}
	})
}

func listVirtualServer(b *balancer.Balancer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		name := vars["name"]
		vs, err := b.FindVirtualServer(name)
		if err != nil {
			log.Errorf("FindVirtualServer err=%v", err)
			WriteBadRequest(w, err)
			return
		}
		msg := vs.Pool.String()
		io.WriteString(w, msg)
	})
}

type modifyVirtualServer struct {
	Action string `json:"action"`
}

func modifyVirtualServerStatus(b *balancer.Balancer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		name := vars["name"]
		var req modifyVirtualServer
		decoder := json.NewDecoder(r.Body)
		if err := decoder.Decode(&req); err != nil {
			log.Errorf("Decode request err=%v", err)
			WriteBadRequest(w, err)
			return
		}
		action := req.Action
		log.Infof("virtual server name %s, action %s", name, action)
		msg := "success"

		vs, err := b.FindVirtualServer(name)
		if err != nil {
			log.Errorf("FindVirtualServer err=%v", err)
			WriteBadRequest(w, err)
			return
		}

		if action == "enable" {
			if err := vs.Run(); err != nil {
				msg = err.Error()
			}
		} else if action == "disable" {
			if err := vs.Stop(); err != nil {
				msg = err.Error()
			}
		} else {
			log.Errorf("%v", ErrUnknownAction)
			WriteError(w, ErrUnknownAction)
			return
		}

		io.WriteString(w, msg)
	})
}
