package main

import (
	"encoding/json"
	"io"

	"github.com/vyrodovalexey/linkrouter/internal/router"
	"github.com/vyrodovalexey/linkrouter/internal/server"
)

// resolveLine is one line of resolve mode output.
type resolveLine struct {
	URL string `json:"url"`
	*server.ResolveResponse
}

// resolveURLs resolves every URL and writes one JSON object per line.
func resolveURLs(rt *router.Router, urls []string, domain string, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, rawURL := range urls {
		res := rt.Resolve(rawURL, domain)
		if err := enc.Encode(resolveLine{URL: rawURL, ResolveResponse: server.NewResolveResponse(rt, res)}); err != nil {
			return err
		}
	}
	return nil
}
