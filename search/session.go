package search

import (
	"encoding/json"
	"errors"
	"fmt"

	"asdb_search/query"
)

// State is the phase a session is in.
type State string

const (
	StateInput   State = "input"
	StateRunning State = "running"
	StateDone    State = "done"
	StateError   State = "error"
)

var (
	// ErrBusy is returned when a request is built while another is in flight.
	ErrBusy = errors.New("search already running")
	// ErrNoMore is returned by More when every result has been fetched.
	ErrNoMore = errors.New("no more results")
)

// Session tracks one search: the query being edited, pagination and results.
// Begin and More hand out requests; Complete and Fail record how they ended.
type Session struct {
	Term       *query.Term
	Search     string
	ReturnType string
	Paginate   int
	Offset     int
	Total      int
	State      State
	Err        error
	Results    []json.RawMessage

	loadingMore bool
}

// NewSession creates a session with a blank query and default settings.
func NewSession() *Session {
	term, _ := query.NewTerm(query.TermExpr)
	return &Session{
		Term:       term,
		Search:     DefaultSearch,
		ReturnType: DefaultReturnType,
		Paginate:   DefaultPaginate,
		State:      StateInput,
	}
}

// Request builds the request for the current query and position.
func (s *Session) Request() *Request {
	return &Request{
		Query: Query{
			Search:     s.Search,
			Terms:      s.Term,
			ReturnType: s.ReturnType,
		},
		Paginate: s.Paginate,
		Offset:   s.Offset,
	}
}

// Begin starts a search and returns the request to send.
func (s *Session) Begin() (*Request, error) {
	if s.busy() {
		return nil, ErrBusy
	}
	req := s.Request()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.State = StateRunning
	s.Err = nil
	return req, nil
}

// More returns the request for the next page of a finished search.
// Its results are appended to the ones already held.
func (s *Session) More() (*Request, error) {
	if s.busy() {
		return nil, ErrBusy
	}
	if s.State != StateDone || !s.HasMore() {
		return nil, ErrNoMore
	}
	req := s.Request()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.loadingMore = true
	return req, nil
}

// LoadingMore reports whether a More request is in flight.
func (s *Session) LoadingMore() bool {
	return s.loadingMore
}

func (s *Session) busy() bool {
	return s.State == StateRunning || s.loadingMore
}

// Complete records a successful response. The next page starts one page past
// the offset the server reported.
func (s *Session) Complete(resp *Response) {
	if s.loadingMore {
		s.Results = append(s.Results, resp.Clusters...)
		s.loadingMore = false
	} else {
		s.Results = resp.Clusters
		s.State = StateDone
	}
	s.Offset = resp.Offset + s.Paginate
	s.Paginate = resp.Paginate
	s.Total = resp.Total
}

// CompleteJSON decodes a response body and records it, failing the session
// if the body cannot be decoded.
func (s *Session) CompleteJSON(data []byte) error {
	resp, err := DecodeResponse(data)
	if err != nil {
		s.Fail(err)
		return err
	}
	s.Complete(resp)
	return nil
}

// Fail records a failed request.
func (s *Session) Fail(err error) {
	s.State = StateError
	s.Err = err
	s.loadingMore = false
}

// Error returns the failure message, or "" when there is none.
func (s *Session) Error() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// HasMore reports whether results past the current offset remain.
func (s *Session) HasMore() bool {
	return s.Offset < s.Total
}

// Clear blanks the query and returns the session to input. Pagination
// rewinds to the first page and held results are dropped.
func (s *Session) Clear() {
	s.Term.Reset()
	s.State = StateInput
	s.Err = nil
	s.Offset = 0
	s.Total = 0
	s.Results = nil
	s.loadingMore = false
}

// LoadExample replaces the query with Example.
func (s *Session) LoadExample() error {
	data, err := json.Marshal(Example())
	if err != nil {
		return err
	}
	return s.Term.Load(data)
}

// LoadString replaces the query with one parsed from its string form. A
// string that does not parse fails the session and leaves the query as it was.
func (s *Session) LoadString(input string) error {
	result := query.Convert(input)
	if !result.Valid {
		err := fmt.Errorf("failed to convert search: %w", result.Error)
		s.Fail(err)
		return err
	}
	data, err := json.Marshal(result.Terms)
	if err == nil {
		err = s.Term.Load(data)
	}
	if err != nil {
		err = fmt.Errorf("failed to convert search: %w", err)
		s.Fail(err)
		return err
	}
	return nil
}
