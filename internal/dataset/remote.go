package dataset

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"campscore/internal/schema"
)

// Client fetches labeled records from a dataset service over HTTP.
type Client struct {
	base string
	rest *resty.Client
}

// NewClient builds a dataset client against the service base URL.
func NewClient(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second)
	}
	return &Client{base: base, rest: r}
}

type labeledRecord struct {
	Record map[string]any `json:"record"`
	Label  int            `json:"label"`
}

type datasetResp struct {
	Records []labeledRecord `json:"records"`
	Error   string          `json:"error,omitempty"`
}

// Fetch downloads the labeled dataset. Rows that fail normalization or carry
// a non-binary label are rejected with an error rather than dropped: a
// remote service returning malformed data is a contract violation.
func (c *Client) Fetch() ([]schema.Record, []int, error) {
	resp := &datasetResp{}
	httpResp, err := c.rest.R().
		SetResult(resp).
		Get(c.base + "/v1/training-data")
	if err != nil {
		return nil, nil, fmt.Errorf("fetch dataset: %w", err)
	}
	if httpResp.IsError() {
		return nil, nil, fmt.Errorf("fetch dataset: %s", httpResp.Status())
	}
	if resp.Error != "" {
		return nil, nil, fmt.Errorf("dataset service: %s", resp.Error)
	}

	records := make([]schema.Record, 0, len(resp.Records))
	labels := make([]int, 0, len(resp.Records))
	for i, lr := range resp.Records {
		rec, err := schema.Normalize(lr.Record)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		if lr.Label != 0 && lr.Label != 1 {
			return nil, nil, fmt.Errorf("record %d: label %d is not binary", i, lr.Label)
		}
		records = append(records, rec)
		labels = append(labels, lr.Label)
	}
	return records, labels, nil
}
