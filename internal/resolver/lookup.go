package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// lookupClient queries the resolution proxies used by remote-lookup
// providers: GET {proxy}?id={id} returning {success: bool, <field>: string}.
type lookupClient struct {
	client *retryablehttp.Client
	log    *logrus.Entry
}

func newLookupClient() *lookupClient {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = 10 * time.Second
	c.Logger = nil
	return &lookupClient{
		client: c,
		log:    logrus.WithField("component", "resolver"),
	}
}

// fetch returns the named response field, or "" on any failure or
// when the proxy reports success=false.
func (l *lookupClient) fetch(ctx context.Context, proxyBase, id, field string) string {
	reqURL := proxyBase + "?id=" + url.QueryEscape(id)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return ""
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.log.WithError(err).WithField("id", id).Debug("lookup request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		l.log.WithError(err).WithField("id", id).Debug("lookup response malformed")
		return ""
	}

	success, _ := body["success"].(bool)
	if !success {
		return ""
	}
	result, _ := body[field].(string)
	return result
}
