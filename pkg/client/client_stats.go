package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/adrianliechti/ingester/server/api"
)

type Stats = api.StatsResult

type StatsService struct {
	Options []RequestOption
}

func NewStatsService(opts ...RequestOption) StatsService {
	return StatsService{
		Options: opts,
	}
}

func (r *StatsService) Get(ctx context.Context, opts ...RequestOption) (*Stats, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, _ := http.NewRequestWithContext(ctx, "GET", c.URL+"/v1/stats", nil)
	c.authorize(req)

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var result Stats

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
