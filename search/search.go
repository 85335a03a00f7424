// Package search holds the payloads exchanged with the search API and the
// bookkeeping of a paginated search session. It does not talk to the network;
// callers send the requests it builds and feed back the responses they get.
package search

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"asdb_search/query"
)

// Defaults used by new sessions.
const (
	DefaultSearch     = "cluster"
	DefaultReturnType = "json"
	DefaultPaginate   = 50
)

// ReturnTypes lists the result formats the search API can produce.
var ReturnTypes = []string{"json", "csv", "fasta", "fastas"}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// Query is the query part of a search request.
type Query struct {
	Search     string      `json:"search" validate:"required"`
	Terms      *query.Term `json:"terms" validate:"required"`
	ReturnType string      `json:"return_type" validate:"oneof=json csv fasta fastas"`
}

// Request is the body of a search call.
type Request struct {
	Query    Query `json:"query"`
	Paginate int   `json:"paginate" validate:"gt=0"`
	Offset   int   `json:"offset" validate:"gte=0"`
}

// Validate checks the request before it is sent.
func (r *Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("invalid %s: failed %q check (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// Response is a page of search results.
type Response struct {
	Clusters []json.RawMessage `json:"clusters"`
	Offset   int               `json:"offset"`
	Paginate int               `json:"paginate"`
	Total    int               `json:"total"`
}

// DecodeResponse parses a response body.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &resp, nil
}

// Example returns a small query that finds NRPS regions in Streptomyces.
func Example() *query.Term {
	return query.NewOp("AND",
		query.NewExpr("type", query.Text("nrps")),
		query.NewExpr("genus", query.Text("Streptomyces")),
	)
}
