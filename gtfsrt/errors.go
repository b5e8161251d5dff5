package gtfsrt

import (
	"errors"
	"fmt"
)

// Kind classifies why a feed could not be produced
type Kind int

const (
	// KindTransport covers network errors and non-success HTTP statuses
	KindTransport Kind = iota + 1
	// KindDecode covers bytes that do not match the GTFS-Realtime schema
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Sentinels for errors.Is matching
var (
	ErrTransport = errors.New("gtfsrt: transport failure")
	ErrDecode    = errors.New("gtfsrt: decode failure")
)

// FeedError describes a failed fetch or decode
type FeedError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *FeedError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d from %s", e.Kind, e.StatusCode, e.URL)
	case e.URL != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }

// Is matches ErrTransport or ErrDecode according to Kind
func (e *FeedError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}
