/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package info

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/beamlit/appinfo/internal/config"
)

// Info is the document returned by /get_info.
type Info struct {
	AppVersion string `json:"APP_VERSION"`
	AppTitle   string `json:"APP_TITLE"`
}

// Handler answers application metadata queries and counts them.
type Handler struct {
	info     Info
	hostname string
	requests RequestRecorder
}

// NewHandler builds a Handler from cfg. Empty fields fall back to the
// documented defaults.
func NewHandler(cfg config.AppConfig, requests RequestRecorder) *Handler {
	cfg = cfg.WithDefaults()
	return &Handler{
		info: Info{
			AppVersion: cfg.Version,
			AppTitle:   cfg.Title,
		},
		hostname: cfg.Hostname,
		requests: requests,
	}
}

// GetInfo records the request and returns the application metadata. The
// count is taken before anything is written so it survives a failed response.
func (h *Handler) GetInfo(ctx context.Context) Info {
	h.requests.Inc()
	log.FromContext(ctx).Info("Request served by pod", "pod", h.hostname)
	return h.info
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	info := h.GetInfo(r.Context())

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(info); err != nil {
		log.FromContext(r.Context()).Error(err, "Error encoding info response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.FromContext(r.Context()).Error(err, "Error writing the response")
	}
}
