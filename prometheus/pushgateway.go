package prometheus

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Pushgateway is a conn.Transport that POSTs rendered exposition text to a
// Prometheus Pushgateway, grouped by job and instance. The instance segment
// is base64-encoded so arbitrary instance strings survive the URL path.
//
// Combine it with a Renderer and a push.Emitter for scheduled delivery:
//
//	t := prometheus.NewPushgateway("http://gw:9091", "myjob", hostname, nil)
//	e := push.NewEmitter(reg, prometheus.NewRenderer(logger), t, 15*time.Second, logger)
//	go e.Run(ctx)
type Pushgateway struct {
	url    string
	client *http.Client
}

// NewPushgateway returns a Pushgateway transport. A nil client uses
// http.DefaultClient.
func NewPushgateway(endpoint, job, instance string, client *http.Client) *Pushgateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Pushgateway{
		url: fmt.Sprintf("%s/metrics/job/%s/instance@base64/%s",
			strings.TrimRight(endpoint, "/"),
			url.PathEscape(job),
			base64.URLEncoding.EncodeToString([]byte(instance)),
		),
		client: client,
	}
}

// Send implements conn.Transport.
func (p *Pushgateway) Send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pushgateway responded %s", resp.Status)
	}
	return nil
}
