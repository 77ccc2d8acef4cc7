// Package retry re-runs a proxied request when the backend answers
// with a retryable status code. Every run goes through the balancer
// again, so each try may land on a different pool member.
package retry

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// MaxTry is the total number of tries per request.
var MaxTry = 3

var retryCode = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

func shouldRetry(code int) bool {
	return retryCode[code]
}

// bufferWriter holds the response until the last try so an earlier
// failed answer never reaches the client.
type bufferWriter struct {
	http.ResponseWriter
	buffer *bytes.Buffer
	code   int
}

func newBufferWriter(w http.ResponseWriter) *bufferWriter {
	return &bufferWriter{
		ResponseWriter: w,
		buffer:         bytes.NewBuffer([]byte("")),
		code:           http.StatusOK,
	}
}

func (w *bufferWriter) WriteHeader(statusCode int) {
	for k := range w.ResponseWriter.Header() {
		delete(w.ResponseWriter.Header(), k)
	}
	w.code = statusCode
}

func (w *bufferWriter) Write(data []byte) (int, error) {
	log.Debugf("Write %v, buffer %v", string(data), w.buffer)
	return w.buffer.Write(data)
}

func requestBody(r *http.Request) ([]byte, error) {
	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read request error:%v", err)
	}

	r.Body.Close()
	return bodyBytes, nil
}

// Retry wraps next with the retry loop.
func Retry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := requestBody(r)
		if err != nil {
			log.Errorf("buffer request body err=%v", err)
		}
		bw := newBufferWriter(w)

		var count = 1
		for {
			r.Body = ioutil.NopCloser(bytes.NewBuffer(body))
			next.ServeHTTP(bw, r)
			log.Debugf("[Retry] %dth try, response code %d", count, bw.code)
			if !shouldRetry(bw.code) || count >= MaxTry {
				break
			}
			count++
			// a failed try may have buffered a partial body
			bw.buffer.Reset()
			// If WriteHeader has not yet been called, Write calls
			// WriteHeader(http.StatusOK) before writing the data.
			// So set default http.StatusOK before retry
			bw.code = http.StatusOK
		}

		bw.ResponseWriter.WriteHeader(bw.code)
		io.Copy(w, bw.buffer)
	})
}
