package upstream

import "net/http"

// Transport is the capability this client needs from an HTTP stack: just
// enough to inject a scriptable fake in tests without dragging in a real
// socket, per spec.md §9's "abstract behind a fetch(url, deadline)
// capability" note.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}
