package api

import (
	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/ingester"
)

type ExtractResult struct {
	Name string `json:"name,omitempty"`

	Pages []element.Page `json:"pages"`
}

type StatsResult struct {
	ingester.Stats `json:",inline"`

	Pool *async.Stats `json:"pool,omitempty"`
}

type ErrorResult struct {
	Error string `json:"error"`
}
