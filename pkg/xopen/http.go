package xopen

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	log "github.com/sirupsen/logrus"
)

// httpBackoff is the exponential backoff between two http requests for the
// same source.
var httpBackoff = backoff.Backoff{
	Min:    500 * time.Millisecond,
	Max:    10 * time.Second,
	Factor: 2,
	Jitter: true,
}

func (o *Opener) httpGet(source string) (io.ReadCloser, error) {
	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	bo := httpBackoff
	for attempt := 0; ; attempt++ {
		resp, err := client.Get(source)
		switch {
		case err == nil && resp.StatusCode/100 == 2:
			return resp.Body, nil
		case err == nil:
			resp.Body.Close()
			err = fmt.Errorf("xopen: error opening %q: %s", source, resp.Status)
			if resp.StatusCode < 500 {
				return nil, err
			}
		default:
			err = fmt.Errorf("xopen: %w", err)
		}

		if attempt >= o.HTTPRetries {
			return nil, err
		}

		d := bo.Duration()
		log.WithError(err).WithFields(log.Fields{"f": "xopen.httpGet", "src": source, "retry_in": d}).Warn("retrying")
		time.Sleep(d)
	}
}
