package transport

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Call is one request seen by a Recorder
type Call struct {
	Method  string
	Path    string
	Body    []byte
	Timeout time.Duration
}

// Reply is a scripted outcome for a Recorder route. Exactly one of
// Response and Err should be set.
type Reply struct {
	Response *Response
	Err      error
}

// Recorder is an in-memory Executor that returns scripted replies and
// records every call. Routes are keyed by "METHOD /path". A route with
// several replies yields them in order and then repeats the last one.
type Recorder struct {
	mu     sync.Mutex
	routes map[string][]Reply
	served map[string]int
	calls  []Call
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{
		routes: make(map[string][]Reply),
		served: make(map[string]int),
	}
}

// Respond scripts a response with the given status and JSON body
func (r *Recorder) Respond(method, path string, status int, body string) *Recorder {
	return r.add(method, path, Reply{Response: &Response{StatusCode: status, Body: []byte(body)}})
}

// Fail scripts a transport failure of the given kind
func (r *Recorder) Fail(method, path string, kind ErrorKind) *Recorder {
	return r.add(method, path, Reply{Err: &Error{Kind: kind, Method: method, Path: path, Detail: "scripted failure"}})
}

func (r *Recorder) add(method, path string, reply Reply) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := method + " " + path
	r.routes[key] = append(r.routes[key], reply)
	return r
}

// Execute implements Executor
func (r *Recorder) Execute(ctx context.Context, method, path string, body []byte, timeout time.Duration) (*Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Method: method, Path: path, Body: append([]byte(nil), body...), Timeout: timeout})

	if err := ctx.Err(); err != nil {
		return nil, classify(method, path, err, err)
	}

	key := method + " " + path
	replies := r.routes[key]
	if len(replies) == 0 {
		return nil, &Error{Kind: KindOther, Method: method, Path: path, Detail: fmt.Sprintf("no scripted reply for %s", key)}
	}

	i := r.served[key]
	if i >= len(replies) {
		i = len(replies) - 1
	}
	r.served[key]++

	reply := replies[i]
	if reply.Err != nil {
		return nil, reply.Err
	}
	resp := *reply.Response
	return &resp, nil
}

// Calls returns a copy of all recorded calls in order
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallCount returns how many times the route was requested
func (r *Recorder) CallCount(method, path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}
