package jsonld

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/cachecontrol"
)

// HTTPDocumentLoader fetches remote documents and contexts over HTTP(S),
// honoring Cache-Control/Expires the way a well-behaved JSON-LD processor's
// remote-document cache should.
// It is the one place in this package that performs network I/O — the core
// algorithms only ever see the resulting *RemoteDocument.
type HTTPDocumentLoader struct {
	Client *http.Client

	cache map[string]cachedDocument
}

type cachedDocument struct {
	doc     *RemoteDocument
	expires time.Time
}

// NewHTTPDocumentLoader creates a loader using http.DefaultClient.
func NewHTTPDocumentLoader() *HTTPDocumentLoader {
	return &HTTPDocumentLoader{Client: http.DefaultClient, cache: map[string]cachedDocument{}}
}

// LoadDocument implements DocumentLoader. A Link header with
// rel="http://www.w3.org/ns/json-ld#context" populates RemoteDocument's
// ContextURL; more than
// one such header is a multiple-context-link-headers error.
func (l *HTTPDocumentLoader) LoadDocument(ctx context.Context, url string) (*RemoteDocument, error) {
	if cached, ok := l.cache[url]; ok && time.Now().Before(cached.expires) {
		return cached.doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newError(ErrLoadingDocumentFailed, url, err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json;q=0.9")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, newError(ErrLoadingDocumentFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(ErrLoadingDocumentFailed, fmt.Sprintf("%s: HTTP %d", url, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrLoadingDocumentFailed, url, err)
	}

	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, newError(ErrLoadingDocumentFailed, url, err)
	}

	contextURL, err := contextLinkHeader(resp.Header)
	if err != nil {
		return nil, err
	}

	rd := &RemoteDocument{
		DocumentURL: url,
		Document:    document,
		ContentType: resp.Header.Get("Content-Type"),
		ContextURL:  contextURL,
	}

	if expires, cacheable := l.cacheLifetime(req, resp); cacheable {
		l.cache[url] = cachedDocument{doc: rd, expires: expires}
	}

	return rd, nil
}

// cacheLifetime reports how long resp may be cached, per RFC 7234, using
// cachecontrol to interpret Cache-Control/Expires/Age the way an HTTP cache
// would rather than hand-rolling header parsing.
func (l *HTTPDocumentLoader) cacheLifetime(req *http.Request, resp *http.Response) (time.Time, bool) {
	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{})
	if err != nil || len(reasons) > 0 || expires.IsZero() {
		return time.Time{}, false
	}
	return expires, true
}

// contextLinkHeader extracts the single JSON-LD context Link header, if
// present, rejecting a document that carries more than one.
func contextLinkHeader(header http.Header) (string, error) {
	var urls []string
	for _, link := range header.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			part = strings.TrimSpace(part)
			if !strings.Contains(part, `rel="http://www.w3.org/ns/json-ld#context"`) {
				continue
			}
			start := strings.IndexByte(part, '<')
			end := strings.IndexByte(part, '>')
			if start < 0 || end < 0 || end < start {
				continue
			}
			urls = append(urls, part[start+1:end])
		}
	}
	if len(urls) > 1 {
		return "", newError(ErrMultipleContextLinkHeaders, strings.Join(urls, ", "), nil)
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	return "", nil
}
